package payment

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/db"
	"github.com/georgemunganga/printpress-backend/internal/modules/job"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const paymentSelect = `
	SELECT p.id, p.job_id, p.amount, p.payment_type, p.payment_method, p.receipt_number,
	       p.recorded_by, p.recorded_by_id, p.notes, p.date, p.created_at,
	       j.ticket_id, c.name
	FROM payments p
	LEFT JOIN jobs j ON j.id = p.job_id
	LEFT JOIN customers c ON c.id = j.customer_id`

func (r *postgresRepo) RecordPayment(ctx context.Context, p *Payment) (*job.Job, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin record payment: %w", err)
	}
	defer tx.Rollback()

	j, err := job.LockJob(ctx, tx, p.JobID)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO payments (id, job_id, amount, payment_type, payment_method, receipt_number,
			recorded_by, recorded_by_id, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING date, created_at`,
		p.ID, p.JobID, p.Amount, p.PaymentType, p.PaymentMethod, p.ReceiptNumber,
		p.RecordedBy, p.RecordedByID, p.Notes).Scan(&p.Date, &p.CreatedAt)
	if db.IsUniqueViolation(err) {
		return nil, apperr.Conflict("receipt number %s already exists", p.ReceiptNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	j.ApplyPayment(p.Amount)
	if err := job.SaveJob(ctx, tx, j); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE customers
		SET total_amount_spent = total_amount_spent + $1,
		    last_interaction_date = now(), updated_at = now()
		WHERE id = $2`, p.Amount, j.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("bump customer spend: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit record payment: %w", err)
	}
	p.TicketID, p.CustomerName = j.TicketID, j.CustomerName
	return j, nil
}

func (r *postgresRepo) ListPaymentsByJob(ctx context.Context, jobID uuid.UUID) ([]*Payment, error) {
	rows, err := r.db.QueryContext(ctx, paymentSelect+` WHERE p.job_id = $1 ORDER BY p.date DESC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list job payments: %w", err)
	}
	defer rows.Close()
	return scanPayments(rows)
}

func (r *postgresRepo) ListPayments(ctx context.Context, f ListFilter) ([]*Payment, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if f.From != nil {
		args = append(args, *f.From)
		where += fmt.Sprintf(` AND p.date >= $%d`, len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where += fmt.Sprintf(` AND p.date < $%d`, len(args))
	}
	if f.Method != "" {
		args = append(args, f.Method)
		where += fmt.Sprintf(` AND p.payment_method = $%d`, len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments p`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	args = append(args, f.Limit, f.Offset())
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`%s%s ORDER BY p.date DESC LIMIT $%d OFFSET $%d`,
		paymentSelect, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	payments, err := scanPayments(rows)
	return payments, total, err
}

func (r *postgresRepo) GetReceipt(ctx context.Context, paymentID uuid.UUID) (*Receipt, error) {
	rc := &Receipt{}
	var jobID uuid.UUID
	var recordedBy sql.NullString
	var notes, email sql.NullString
	var deadline sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT p.receipt_number, p.date, p.amount, p.payment_method, p.payment_type,
		       COALESCE(u.name, p.recorded_by), p.notes, p.job_id,
		       j.ticket_id, j.description, j.date_requested, j.delivery_deadline, j.total_cost,
		       j.amount_paid, j.balance, c.name, c.phone, c.email
		FROM payments p
		JOIN jobs j ON j.id = p.job_id
		JOIN customers c ON c.id = j.customer_id
		LEFT JOIN users u ON u.id = p.recorded_by_id
		WHERE p.id = $1`, paymentID).
		Scan(&rc.ReceiptNumber, &rc.Date, &rc.Payment.Amount, &rc.Payment.Method, &rc.Payment.Type,
			&recordedBy, &notes, &jobID,
			&rc.Job.TicketID, &rc.Job.Description, &rc.Job.DateRequested, &deadline, &rc.Job.TotalCost,
			&rc.Payment.AmountPaid, &rc.Payment.Balance, &rc.Customer.Name, &rc.Customer.Phone, &email)
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("payment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	rc.Payment.RecordedBy = recordedBy.String
	rc.Payment.Notes = nullable(notes)
	rc.Customer.Email = nullable(email)
	if deadline.Valid {
		rc.Job.DeliveryDeadline = &deadline.Time
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT amount, payment_type, payment_method, receipt_number, date, notes
		FROM payments WHERE job_id = $1 ORDER BY date ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("receipt history: %w", err)
	}
	defer rows.Close()

	rc.History = []*HistoryEntry{}
	for rows.Next() {
		h := &HistoryEntry{}
		var n sql.NullString
		if err := rows.Scan(&h.Amount, &h.PaymentType, &h.PaymentMethod, &h.ReceiptNumber, &h.Date, &n); err != nil {
			return nil, err
		}
		h.Notes = nullable(n)
		rc.History = append(rc.History, h)
	}
	return rc, rows.Err()
}

// ── helpers ──────────────────────────────────────────────────────────────────

func scanPayments(rows *sql.Rows) ([]*Payment, error) {
	out := []*Payment{}
	for rows.Next() {
		p := &Payment{}
		var recordedByID uuid.NullUUID
		var notes, ticket, customer sql.NullString
		if err := rows.Scan(&p.ID, &p.JobID, &p.Amount, &p.PaymentType, &p.PaymentMethod, &p.ReceiptNumber,
			&p.RecordedBy, &recordedByID, &notes, &p.Date, &p.CreatedAt, &ticket, &customer); err != nil {
			return nil, err
		}
		if recordedByID.Valid {
			p.RecordedByID = &recordedByID.UUID
		}
		p.Notes = nullable(notes)
		p.TicketID, p.CustomerName = ticket.String, customer.String
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
