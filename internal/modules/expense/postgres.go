package expense

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

const expenseSelect = `
	SELECT oe.id, oe.description, oe.category, oe.amount, oe.expense_date, oe.recorded_by,
	       u.name, oe.receipt_number, oe.notes, oe.created_at, oe.updated_at
	FROM operational_expenses oe
	LEFT JOIN users u ON u.id = oe.recorded_by`

func (r *postgresRepo) ListExpenses(ctx context.Context, f ListFilter) ([]*Expense, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if f.Category != "" {
		args = append(args, f.Category)
		where += fmt.Sprintf(` AND oe.category = $%d`, len(args))
	}
	if f.Month > 0 {
		args = append(args, f.Month)
		where += fmt.Sprintf(` AND EXTRACT(MONTH FROM oe.expense_date) = $%d`, len(args))
	}
	if f.Year > 0 {
		args = append(args, f.Year)
		where += fmt.Sprintf(` AND EXTRACT(YEAR FROM oe.expense_date) = $%d`, len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM operational_expenses oe`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	args = append(args, f.Limit, f.Offset())
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`%s%s ORDER BY oe.expense_date DESC, oe.created_at DESC LIMIT $%d OFFSET $%d`,
		expenseSelect, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	out := []*Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (r *postgresRepo) GetExpense(ctx context.Context, id uuid.UUID) (*Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx, expenseSelect+` WHERE oe.id = $1`, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("Operational expense not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *postgresRepo) CreateExpense(ctx context.Context, e *Expense) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO operational_expenses (id, description, category, amount, expense_date, recorded_by, receipt_number, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		e.ID, e.Description, e.Category, e.Amount, e.ExpenseDate, e.RecordedBy, e.ReceiptNumber, e.Notes).
		Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (r *postgresRepo) UpdateExpense(ctx context.Context, e *Expense) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE operational_expenses
		SET description = $1, category = $2, amount = $3, expense_date = $4, receipt_number = $5,
		    notes = $6, updated_at = now()
		WHERE id = $7
		RETURNING updated_at`,
		e.Description, e.Category, e.Amount, e.ExpenseDate, e.ReceiptNumber, e.Notes, e.ID).Scan(&e.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("Operational expense not found")
	}
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return nil
}

func (r *postgresRepo) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM operational_expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Operational expense not found")
	}
	return nil
}

func (r *postgresRepo) ListExpenseCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM operational_expenses ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list expense categories: %w", err)
	}
	defer rows.Close()

	cats := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *postgresRepo) MonthlyExpenseTotals(ctx context.Context, year int) ([]MonthlyTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT EXTRACT(MONTH FROM expense_date)::int AS month, category,
		       SUM(amount) AS total_amount, COUNT(*) AS expense_count
		FROM operational_expenses
		WHERE EXTRACT(YEAR FROM expense_date) = $1
		GROUP BY 1, category
		ORDER BY month, total_amount DESC`, year)
	if err != nil {
		return nil, fmt.Errorf("monthly expense totals: %w", err)
	}
	defer rows.Close()

	out := []MonthlyTotal{}
	for rows.Next() {
		var t MonthlyTotal
		if err := rows.Scan(&t.Month, &t.Category, &t.TotalAmount, &t.ExpenseCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(s scanner) (*Expense, error) {
	e := &Expense{}
	var recordedBy uuid.NullUUID
	var name, receipt, notes sql.NullString
	if err := s.Scan(&e.ID, &e.Description, &e.Category, &e.Amount, &e.ExpenseDate, &recordedBy,
		&name, &receipt, &notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if recordedBy.Valid {
		e.RecordedBy = &recordedBy.UUID
	}
	e.RecordedByName = name.String
	if receipt.Valid {
		e.ReceiptNumber = &receipt.String
	}
	if notes.Valid {
		e.Notes = &notes.String
	}
	return e, nil
}
