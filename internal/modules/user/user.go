package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

// User is a staff account. Pay fields feed the labour estimate in reports.
type User struct {
	ID            uuid.UUID           `json:"id"`
	Email         string              `json:"email"`
	Name          string              `json:"name"`
	UserName      *string             `json:"user_name,omitempty"`
	PasswordHash  string              `json:"-"`
	Role          authctx.Role        `json:"role"`
	IsActive      bool                `json:"is_active"`
	HourlyRate    decimal.NullDecimal `json:"hourly_rate"`
	MonthlySalary decimal.NullDecimal `json:"monthly_salary"`
	PaymentMethod *string             `json:"payment_method,omitempty"`
	BankName      *string             `json:"bank_name,omitempty"`
	AccountNumber *string             `json:"account_number,omitempty"`
	AccountName   *string             `json:"account_name,omitempty"`
	Phone         *string             `json:"phone,omitempty"`
	Address       *string             `json:"address,omitempty"`
	DateJoined    *time.Time          `json:"date_joined,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Identity is the verified caller view of u.
func (u *User) Identity() authctx.Identity {
	return authctx.Identity{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
