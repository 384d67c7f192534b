package user

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

// Service defines the admin-facing account management logic.
type Service interface {
	CreateUser(ctx context.Context, actor authctx.Identity, req CreateUserRequest) (*CreateUserResult, error)
	ListUsers(ctx context.Context) ([]*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error)
	DeactivateUser(ctx context.Context, actor authctx.Identity, id string) error
	ResetPassword(ctx context.Context, id string) (string, error)
}

type CreateUserRequest struct {
	Email         string              `json:"email"`
	Name          string              `json:"name"`
	UserName      string              `json:"user_name"`
	Role          authctx.Role        `json:"role"`
	Phone         string              `json:"phone"`
	Address       string              `json:"address"`
	DateJoined    string              `json:"date_joined"`
	HourlyRate    decimal.NullDecimal `json:"hourly_rate"`
	MonthlySalary decimal.NullDecimal `json:"monthly_salary"`
	PaymentMethod string              `json:"payment_method"`
	BankName      string              `json:"bank_name"`
	AccountNumber string              `json:"account_number"`
	AccountName   string              `json:"account_name"`
}

// UpdateUserRequest changes only the fields that are set.
type UpdateUserRequest struct {
	Email         *string              `json:"email"`
	Name          *string              `json:"name"`
	UserName      *string              `json:"user_name"`
	Role          *authctx.Role        `json:"role"`
	IsActive      *bool                `json:"is_active"`
	Phone         *string              `json:"phone"`
	Address       *string              `json:"address"`
	DateJoined    *string              `json:"date_joined"`
	HourlyRate    *decimal.NullDecimal `json:"hourly_rate"`
	MonthlySalary *decimal.NullDecimal `json:"monthly_salary"`
	PaymentMethod *string              `json:"payment_method"`
	BankName      *string              `json:"bank_name"`
	AccountNumber *string              `json:"account_number"`
	AccountName   *string              `json:"account_name"`
}

// CreateUserResult carries the one-time temporary password back to the admin.
type CreateUserResult struct {
	User              *User  `json:"user"`
	TemporaryPassword string `json:"temporary_password"`
}
