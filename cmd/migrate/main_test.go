package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
	"github.com/georgemunganga/printpress-backend/internal/store/memory"
)

func TestSeedAdmin(t *testing.T) {
	t.Parallel()

	store := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	if err := seedAdmin(ctx, store, "", "", logger); err != nil {
		t.Fatalf("seedAdmin(blank) error = %v", err)
	}
	if users, _ := store.ListUsers(ctx); len(users) != 0 {
		t.Fatalf("users after blank seed = %d, want 0", len(users))
	}

	for i := 0; i < 2; i++ {
		if err := seedAdmin(ctx, store, " Admin@PrintPress.com", "s3cret-pass", logger); err != nil {
			t.Fatalf("seedAdmin() error = %v", err)
		}
	}
	users, _ := store.ListUsers(ctx)
	if len(users) != 1 {
		t.Fatalf("users = %d, want 1", len(users))
	}
	admin := users[0]
	if admin.Email != "admin@printpress.com" || admin.Role != authctx.RoleAdmin || !admin.IsActive {
		t.Errorf("admin = %+v", admin)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("s3cret-pass")) != nil {
		t.Error("stored hash does not match ADMIN_PASSWORD")
	}
}
