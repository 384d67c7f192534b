package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/config"
	"github.com/georgemunganga/printpress-backend/internal/db"
	"github.com/georgemunganga/printpress-backend/internal/modules/user"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := db.Migrate(ctx, pg); err != nil {
		logger.Error("migration failed", "err", err)
		os.Exit(1)
	}
	logger.Info("schema applied")

	if err := seedAdmin(ctx, user.NewPostgresRepository(pg), os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD"), logger); err != nil {
		logger.Error("admin seed failed", "err", err)
		os.Exit(1)
	}
}

// seedAdmin creates the first admin account when ADMIN_EMAIL is not taken.
func seedAdmin(ctx context.Context, repo user.Repository, email, password string, logger *slog.Logger) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		logger.Info("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}
	_, err := repo.GetUserByLogin(ctx, email)
	if err == nil {
		logger.Info("admin already exists", "email", email)
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &user.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Administrator",
		PasswordHash: string(hash),
		Role:         authctx.RoleAdmin,
		IsActive:     true,
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		return err
	}
	logger.Info("admin account created", "email", email)
	return nil
}
