package customer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/db"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const customerColumns = `id, name, phone, email, total_jobs_count, total_amount_spent,
	first_interaction_date, last_interaction_date, created_at, updated_at`

func (r *postgresRepo) ListCustomers(ctx context.Context, f ListFilter) ([]*Customer, int, error) {
	where := ``
	args := []interface{}{}
	if f.Search != "" {
		where = ` WHERE name ILIKE $1 OR phone ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+f.Search+"%")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	args = append(args, f.Limit, f.Offset())
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM customers%s
		ORDER BY last_interaction_date DESC
		LIMIT $%d OFFSET $%d`, customerColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	customers, err := scanCustomers(rows)
	return customers, total, err
}

func (r *postgresRepo) GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	c, err := scanCustomer(row)
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("customer not found")
	}
	return c, err
}

func (r *postgresRepo) ListCustomerJobs(ctx context.Context, id uuid.UUID) ([]*JobSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ticket_id, description, status, total_cost, amount_paid, balance,
		       payment_status, date_requested, created_at
		FROM jobs WHERE customer_id = $1
		ORDER BY created_at DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("list customer jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*JobSummary{}
	for rows.Next() {
		j := &JobSummary{}
		if err := rows.Scan(&j.ID, &j.TicketID, &j.Description, &j.Status, &j.TotalCost, &j.AmountPaid,
			&j.Balance, &j.PaymentStatus, &j.DateRequested, &j.CreatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *postgresRepo) SearchCustomers(ctx context.Context, query string, limit int) ([]*Customer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+customerColumns+` FROM customers
		WHERE name ILIKE $1 OR phone ILIKE $1 OR email ILIKE $1
		ORDER BY last_interaction_date DESC
		LIMIT $2`, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	defer rows.Close()
	return scanCustomers(rows)
}

func (r *postgresRepo) UpdateCustomer(ctx context.Context, c *Customer) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE customers SET name = $1, phone = $2, email = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at`,
		c.Name, c.Phone, c.Email, c.ID).Scan(&c.UpdatedAt)
	switch {
	case db.IsNoRows(err):
		return apperr.NotFound("customer not found")
	case db.IsUniqueViolation(err):
		return apperr.Conflict("phone or email already belongs to another customer")
	case err != nil:
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

func (r *postgresRepo) CustomerStats(ctx context.Context) (*Stats, error) {
	s := &Stats{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE total_jobs_count > 0),
		       COUNT(*) FILTER (WHERE total_jobs_count > $1),
		       COALESCE(ROUND(AVG(total_jobs_count), 2), 0),
		       COALESCE(ROUND(AVG(total_amount_spent), 2), 0),
		       COALESCE(MAX(total_amount_spent), 0)
		FROM customers`, RepeatThreshold).
		Scan(&s.TotalCustomers, &s.ActiveCustomers, &s.RepeatCustomers,
			&s.AvgJobsPerCustomer, &s.AvgSpentPerCustomer, &s.HighestSpending)
	if err != nil {
		return nil, fmt.Errorf("customer stats: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+customerColumns+` FROM customers
		ORDER BY total_amount_spent DESC LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}
	defer rows.Close()
	if s.TopCustomers, err = scanCustomers(rows); err != nil {
		return nil, err
	}
	return s, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCustomer(row scanner) (*Customer, error) {
	c := &Customer{}
	var email sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &email, &c.TotalJobsCount, &c.TotalAmountSpent,
		&c.FirstInteractionDate, &c.LastInteractionDate, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if email.Valid {
		c.Email = &email.String
	}
	return c, nil
}

func scanCustomers(rows *sql.Rows) ([]*Customer, error) {
	out := []*Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
