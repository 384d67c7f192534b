package user

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/db"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL user repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const userColumns = `id, email, name, user_name, password_hash, role, is_active, hourly_rate,
	monthly_salary, payment_method, bank_name, account_number, account_name, phone, address,
	date_joined, created_at, updated_at`

func (r *postgresRepository) CreateUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, email, name, user_name, password_hash, role, is_active, hourly_rate,
			monthly_salary, payment_method, bank_name, account_number, account_name, phone, address, date_joined)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, u.ID, u.Email, u.Name, u.UserName, u.PasswordHash, u.Role,
		u.IsActive, u.HourlyRate, u.MonthlySalary, u.PaymentMethod, u.BankName, u.AccountNumber,
		u.AccountName, u.Phone, u.Address, u.DateJoined).Scan(&u.CreatedAt, &u.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("User with this email or username already exists")
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *postgresRepository) GetUserByLogin(ctx context.Context, login string) (*User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 OR user_name = $2`,
		strings.ToLower(login), login)
}

func (r *postgresRepository) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *postgresRepository) UpdateUser(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET email = $1, name = $2, user_name = $3, role = $4, is_active = $5, hourly_rate = $6,
		    monthly_salary = $7, payment_method = $8, bank_name = $9, account_number = $10,
		    account_name = $11, phone = $12, address = $13, date_joined = $14, updated_at = now()
		WHERE id = $15
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, u.Email, u.Name, u.UserName, u.Role, u.IsActive, u.HourlyRate,
		u.MonthlySalary, u.PaymentMethod, u.BankName, u.AccountNumber, u.AccountName, u.Phone,
		u.Address, u.DateJoined, u.ID).Scan(&u.UpdatedAt)
	switch {
	case db.IsNoRows(err):
		return apperr.NotFound("User not found")
	case db.IsUniqueViolation(err):
		return apperr.Conflict("User with this email or username already exists")
	case err != nil:
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (r *postgresRepository) get(ctx context.Context, query string, args ...interface{}) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*User, error) {
	u := &User{}
	var userName, method, bank, accNumber, accName, phone, address sql.NullString
	var joined sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.Name, &userName, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.HourlyRate, &u.MonthlySalary, &method, &bank, &accNumber, &accName, &phone, &address,
		&joined, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.UserName, u.PaymentMethod, u.BankName = ptr(userName), ptr(method), ptr(bank)
	u.AccountNumber, u.AccountName = ptr(accNumber), ptr(accName)
	u.Phone, u.Address = ptr(phone), ptr(address)
	if joined.Valid {
		u.DateJoined = &joined.Time
	}
	return u, nil
}

func ptr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
