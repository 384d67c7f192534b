package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/modules/notification"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

type service struct {
	repo   Repository
	events notification.Publisher
	cost   int
}

// NewService creates a new user service. cost is the bcrypt work factor;
// zero means bcrypt.DefaultCost.
func NewService(repo Repository, events notification.Publisher, cost int) Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &service{repo: repo, events: events, cost: cost}
}

func (s *service) CreateUser(ctx context.Context, actor authctx.Identity, req CreateUserRequest) (*CreateUserResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	role := req.Role
	if role == "" {
		role = authctx.RoleWorker
	}
	switch {
	case email == "" || name == "":
		return nil, apperr.Validation("Email and name are required")
	case !validEmail(email):
		return nil, apperr.Validation("invalid email address")
	case !role.Valid():
		return nil, apperr.Validation("invalid role")
	}
	joined, err := parseDate(req.DateJoined)
	if err != nil {
		return nil, err
	}

	temp, hash, err := s.temporaryPassword()
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:            uuid.New(),
		Email:         email,
		Name:          name,
		UserName:      optional(req.UserName),
		PasswordHash:  hash,
		Role:          role,
		IsActive:      true,
		HourlyRate:    req.HourlyRate,
		MonthlySalary: req.MonthlySalary,
		PaymentMethod: optional(req.PaymentMethod),
		BankName:      optional(req.BankName),
		AccountNumber: optional(req.AccountNumber),
		AccountName:   optional(req.AccountName),
		Phone:         optional(req.Phone),
		Address:       optional(req.Address),
		DateJoined:    joined,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, notification.UserCreated(u.ID, u.Name, u.Email, string(u.Role), temp, actor.Name, actor.Email))
	return &CreateUserResult{User: u, TemporaryPassword: temp}, nil
}

func (s *service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *service) GetUser(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid user id")
	}
	return s.repo.GetUserByID(ctx, uid)
}

func (s *service) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(u, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeactivateUser soft-deletes the account. Admins cannot lock themselves out.
func (s *service) DeactivateUser(ctx context.Context, actor authctx.Identity, id string) error {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if u.ID == actor.UserID {
		return apperr.Validation("You cannot deactivate your own account")
	}
	u.IsActive = false
	return s.repo.UpdateUser(ctx, u)
}

func (s *service) ResetPassword(ctx context.Context, id string) (string, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return "", err
	}
	temp, hash, err := s.temporaryPassword()
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return "", err
	}
	return temp, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// temporaryPassword returns 16 hex characters and their bcrypt hash.
func (s *service) temporaryPassword() (string, string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate password: %w", err)
	}
	temp := hex.EncodeToString(b)
	hash, err := bcrypt.GenerateFromPassword([]byte(temp), s.cost)
	if err != nil {
		return "", "", fmt.Errorf("hash password: %w", err)
	}
	return temp, string(hash), nil
}

func apply(u *User, req UpdateUserRequest) error {
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !validEmail(email) {
			return apperr.Validation("invalid email address")
		}
		u.Email = email
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return apperr.Validation("name cannot be empty")
		}
		u.Name = name
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return apperr.Validation("invalid role")
		}
		u.Role = *req.Role
	}
	if req.DateJoined != nil {
		joined, err := parseDate(*req.DateJoined)
		if err != nil {
			return err
		}
		u.DateJoined = joined
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.HourlyRate != nil {
		u.HourlyRate = *req.HourlyRate
	}
	if req.MonthlySalary != nil {
		u.MonthlySalary = *req.MonthlySalary
	}
	for dst, src := range map[**string]*string{
		&u.UserName:      req.UserName,
		&u.Phone:         req.Phone,
		&u.Address:       req.Address,
		&u.PaymentMethod: req.PaymentMethod,
		&u.BankName:      req.BankName,
		&u.AccountNumber: req.AccountNumber,
		&u.AccountName:   req.AccountName,
	} {
		if src != nil {
			*dst = optional(*src)
		}
	}
	return nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, apperr.Validation("date_joined must be YYYY-MM-DD")
	}
	return &t, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
