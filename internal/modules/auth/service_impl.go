package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/modules/user"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

type claims struct {
	Role  authctx.Role `json:"role"`
	Name  string       `json:"name"`
	Email string       `json:"email"`
	jwt.RegisteredClaims
}

type service struct {
	userRepo user.Repository
	secret   []byte
	ttl      time.Duration
	cost     int
	now      func() time.Time
}

// NewService creates a new auth service signing HS256 tokens with secret.
func NewService(userRepo user.Repository, secret string, ttl time.Duration, cost int) Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &service{userRepo: userRepo, secret: []byte(secret), ttl: ttl, cost: cost, now: time.Now}
}

func (s *service) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, apperr.Validation("Login and password are required")
	}

	u, err := s.userRepo.GetUserByLogin(ctx, login)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role:  u.Role,
		Name:  u.Name,
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{Token: signed, User: u}, nil
}

func (s *service) Authenticate(ctx context.Context, token string) (*authctx.Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	u, err := s.subject(ctx, c.Subject)
	if err != nil {
		return nil, err
	}
	id := u.Identity()
	return &id, nil
}

func (s *service) Me(ctx context.Context, actor authctx.Identity) (*user.User, error) {
	return s.userRepo.GetUserByID(ctx, actor.UserID)
}

func (s *service) ChangePassword(ctx context.Context, actor authctx.Identity, current, next string) error {
	if len(next) < minPasswordLength {
		return apperr.Validation("New password must be at least %d characters", minPasswordLength)
	}
	u, err := s.userRepo.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return apperr.Validation("Current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, u.ID, string(hash))
}

func (s *service) UpdateProfile(ctx context.Context, actor authctx.Identity, req UpdateProfileRequest) (*user.User, error) {
	u, err := s.userRepo.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		u.Name = name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			return nil, apperr.Validation("invalid email address")
		}
		u.Email = email
	}
	if req.Phone != nil {
		u.Phone = optional(*req.Phone)
	}
	if req.Address != nil {
		u.Address = optional(*req.Address)
	}
	if req.UserName != nil {
		u.UserName = optional(*req.UserName)
	}
	if err := s.userRepo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// subject loads the token's user, rejecting unknown or deactivated accounts.
func (s *service) subject(ctx context.Context, sub string) (*user.User, error) {
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	u, err := s.userRepo.GetUserByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) || (err == nil && !u.IsActive) {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	return u, err
}
