package job

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/db"
	"github.com/georgemunganga/printpress-backend/internal/modules/inventory"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const jobSelect = `
	SELECT j.id, j.ticket_id, j.customer_id, j.worker_id, j.description, j.status,
	       j.total_cost, j.amount_paid, j.balance, j.payment_status, j.mode_of_payment,
	       j.materials_cost, j.waste_cost, j.operational_cost, j.labor_cost, j.profit,
	       j.date_requested, j.delivery_deadline, j.created_at, j.updated_at,
	       c.name, c.phone, c.email, u.name
	FROM jobs j
	LEFT JOIN customers c ON c.id = j.customer_id
	LEFT JOIN users u ON u.id = j.worker_id`

// queryRower is satisfied by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (r *postgresRepo) CreateJob(ctx context.Context, j *Job, c NewCustomer) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create job: %w", err)
	}
	defer tx.Rollback()

	// Phone is the natural key. An existing customer keeps its name and email.
	var custEmail sql.NullString
	err = tx.QueryRowContext(ctx, `
		INSERT INTO customers (name, phone, email) VALUES ($1, $2, $3)
		ON CONFLICT (phone) DO UPDATE SET last_interaction_date = now(), updated_at = now()
		RETURNING id, name, email`, c.Name, c.Phone, c.Email).Scan(&j.CustomerID, &j.CustomerName, &custEmail)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("a customer with this email already exists")
	}
	if err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}
	j.CustomerEmail = stringPtr(custEmail)

	err = tx.QueryRowContext(ctx, `
		INSERT INTO jobs (id, ticket_id, customer_id, worker_id, description, status, total_cost,
			amount_paid, balance, payment_status, mode_of_payment, profit, date_requested, delivery_deadline)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at, updated_at`,
		j.ID, j.TicketID, j.CustomerID, j.WorkerID, j.Description, j.Status, j.TotalCost,
		j.AmountPaid, j.Balance, j.PaymentStatus, j.ModeOfPayment, j.Profit, j.DateRequested, j.DeliveryDeadline).
		Scan(&j.CreatedAt, &j.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("ticket id %s already exists", j.TicketID)
	}
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE customers
		SET total_jobs_count = total_jobs_count + 1,
		    total_amount_spent = total_amount_spent + $1,
		    last_interaction_date = now(), updated_at = now()
		WHERE id = $2`, j.TotalCost, j.CustomerID)
	if err != nil {
		return fmt.Errorf("bump customer counters: %w", err)
	}
	return tx.Commit()
}

func (r *postgresRepo) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	return getJob(ctx, r.db, jobSelect+` WHERE j.id = $1`, id)
}

func (r *postgresRepo) GetJobByTicket(ctx context.Context, ticket string) (*Job, error) {
	return getJob(ctx, r.db, jobSelect+` WHERE j.ticket_id = $1`, ticket)
}

func (r *postgresRepo) ListJobs(ctx context.Context, f ListFilter) ([]*Job, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(` AND j.status = $%d`, len(args))
	}
	if f.WorkerID != nil {
		args = append(args, *f.WorkerID)
		where += fmt.Sprintf(` AND j.worker_id = $%d`, len(args))
	}
	if f.CustomerID != nil {
		args = append(args, *f.CustomerID)
		where += fmt.Sprintf(` AND j.customer_id = $%d`, len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs j`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	args = append(args, f.Limit, f.Offset())
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`%s%s ORDER BY j.created_at DESC LIMIT $%d OFFSET $%d`,
		jobSelect, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, j)
	}
	return jobs, total, rows.Err()
}

func (r *postgresRepo) ListMaterials(ctx context.Context, jobID uuid.UUID) ([]*MaterialUsed, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, job_id, material_id, material_name, paper_size, paper_type, grammage,
		       quantity, unit_cost, total_cost, created_at
		FROM materials_used WHERE job_id = $1 ORDER BY created_at`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	out := []*MaterialUsed{}
	for rows.Next() {
		m := &MaterialUsed{}
		var materialID uuid.NullUUID
		var size, ptype sql.NullString
		var grammage sql.NullInt64
		if err := rows.Scan(&m.ID, &m.JobID, &materialID, &m.MaterialName, &size, &ptype, &grammage,
			&m.Quantity, &m.UnitCost, &m.TotalCost, &m.CreatedAt); err != nil {
			return nil, err
		}
		if materialID.Valid {
			m.MaterialID = &materialID.UUID
		}
		m.PaperSize, m.PaperType = stringPtr(size), stringPtr(ptype)
		m.Grammage = intPtr(grammage)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *postgresRepo) ListWaste(ctx context.Context, jobID uuid.UUID) ([]*WasteExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, job_id, type, description, quantity, unit_cost, total_cost, waste_reason, created_at
		FROM waste_expenses WHERE job_id = $1 ORDER BY created_at`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list waste: %w", err)
	}
	defer rows.Close()

	out := []*WasteExpense{}
	for rows.Next() {
		w := &WasteExpense{}
		var jid uuid.NullUUID
		var qty sql.NullInt64
		var reason sql.NullString
		if err := rows.Scan(&w.ID, &jid, &w.Type, &w.Description, &qty, &w.UnitCost, &w.TotalCost,
			&reason, &w.CreatedAt); err != nil {
			return nil, err
		}
		if jid.Valid {
			w.JobID = &jid.UUID
		}
		w.Quantity = intPtr(qty)
		w.WasteReason = stringPtr(reason)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *postgresRepo) ListJobPayments(ctx context.Context, jobID uuid.UUID) ([]*PaymentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount, payment_type, payment_method, receipt_number, recorded_by, date, notes
		FROM payments WHERE job_id = $1 ORDER BY date DESC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list job payments: %w", err)
	}
	defer rows.Close()

	out := []*PaymentRecord{}
	for rows.Next() {
		p := &PaymentRecord{}
		var notes sql.NullString
		if err := rows.Scan(&p.ID, &p.Amount, &p.PaymentType, &p.PaymentMethod, &p.ReceiptNumber,
			&p.RecordedBy, &p.Date, &notes); err != nil {
			return nil, err
		}
		p.Notes = stringPtr(notes)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresRepo) ApplyStatusUpdate(ctx context.Context, u StatusUpdate) (*Job, Status, []inventory.StockChange, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", nil, fmt.Errorf("begin status update: %w", err)
	}
	defer tx.Rollback()

	j, err := LockJob(ctx, tx, u.JobID)
	if err != nil {
		return nil, "", nil, err
	}
	previous := j.Status
	j.Status = u.Status

	var changes []inventory.StockChange
	materials := decimal.Zero
	for _, m := range u.Materials {
		if m.UpdateInventory {
			change, ok, err := consume(ctx, tx, m.MaterialName, m.Quantity)
			if err != nil {
				return nil, "", nil, err
			}
			if ok {
				changes = append(changes, change)
				if m.MaterialID == nil {
					id := change.ItemID
					m.MaterialID = &id
				}
			}
		}
		err := tx.QueryRowContext(ctx, `
			INSERT INTO materials_used (id, job_id, material_id, material_name, paper_size, paper_type,
				grammage, quantity, unit_cost, total_cost)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING created_at`,
			m.ID, j.ID, m.MaterialID, m.MaterialName, m.PaperSize, m.PaperType, m.Grammage,
			m.Quantity, m.UnitCost, m.TotalCost).Scan(&m.CreatedAt)
		if err != nil {
			return nil, "", nil, fmt.Errorf("insert material used: %w", err)
		}
		materials = materials.Add(m.TotalCost)
	}

	waste := decimal.Zero
	for _, w := range u.Waste {
		w.JobID = &j.ID
		if err := insertWaste(ctx, tx, w); err != nil {
			return nil, "", nil, err
		}
		waste = waste.Add(w.TotalCost)
	}

	j.AddCosts(materials, waste)
	if err := SaveJob(ctx, tx, j); err != nil {
		return nil, "", nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, "", nil, fmt.Errorf("commit status update: %w", err)
	}
	return j, previous, changes, nil
}

func (r *postgresRepo) UpdateJob(ctx context.Context, id uuid.UUID, apply func(*Job) error) (*Job, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update job: %w", err)
	}
	defer tx.Rollback()

	j, err := LockJob(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(j); err != nil {
		return nil, err
	}
	j.Recompute()
	if err := SaveJob(ctx, tx, j); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update job: %w", err)
	}
	return j, nil
}

func (r *postgresRepo) RecordWaste(ctx context.Context, w *WasteExpense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record waste: %w", err)
	}
	defer tx.Rollback()

	if w.JobID != nil {
		j, err := LockJob(ctx, tx, *w.JobID)
		if err != nil {
			return err
		}
		j.AddCosts(decimal.Zero, w.TotalCost)
		if err := SaveJob(ctx, tx, j); err != nil {
			return err
		}
	}
	if err := insertWaste(ctx, tx, w); err != nil {
		return err
	}
	return tx.Commit()
}

// ── transaction helpers ──────────────────────────────────────────────────────

// LockJob reads a job with a row lock held until tx ends. Concurrent writers
// of the same job queue behind it.
func LockJob(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*Job, error) {
	return getJob(ctx, tx, jobSelect+` WHERE j.id = $1 FOR UPDATE OF j`, id)
}

// SaveJob writes back every mutable column of j.
func SaveJob(ctx context.Context, tx *sql.Tx, j *Job) error {
	err := tx.QueryRowContext(ctx, `
		UPDATE jobs
		SET worker_id = $1, description = $2, status = $3, total_cost = $4, amount_paid = $5,
		    balance = $6, payment_status = $7, mode_of_payment = $8, materials_cost = $9,
		    waste_cost = $10, operational_cost = $11, labor_cost = $12, profit = $13,
		    delivery_deadline = $14, updated_at = now()
		WHERE id = $15
		RETURNING updated_at`,
		j.WorkerID, j.Description, j.Status, j.TotalCost, j.AmountPaid,
		j.Balance, j.PaymentStatus, j.ModeOfPayment, j.MaterialsCost,
		j.WasteCost, j.OperationalCost, j.LaborCost, j.Profit,
		j.DeliveryDeadline, j.ID).Scan(&j.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("job not found")
	}
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

// consume decrements the oldest active item with the given name. No match is
// not an error; stock may go negative.
func consume(ctx context.Context, tx *sql.Tx, name string, qty int) (inventory.StockChange, bool, error) {
	var c inventory.StockChange
	err := tx.QueryRowContext(ctx, `
		UPDATE inventory SET current_stock = current_stock - $1, updated_at = now()
		WHERE id = (
			SELECT id FROM inventory
			WHERE material_name = $2 AND is_active = true
			ORDER BY created_at LIMIT 1
		)
		RETURNING id, material_name, current_stock, threshold, unit_of_measure`, qty, name).
		Scan(&c.ItemID, &c.MaterialName, &c.CurrentStock, &c.Threshold, &c.UnitOfMeasure)
	if db.IsNoRows(err) {
		return c, false, nil
	}
	if err != nil {
		return c, false, fmt.Errorf("decrement inventory %q: %w", name, err)
	}
	return c, true, nil
}

func insertWaste(ctx context.Context, tx *sql.Tx, w *WasteExpense) error {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO waste_expenses (id, job_id, type, description, quantity, unit_cost, total_cost, waste_reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at`,
		w.ID, w.JobID, w.Type, w.Description, w.Quantity, w.UnitCost, w.TotalCost, w.WasteReason).
		Scan(&w.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert waste expense: %w", err)
	}
	return nil
}

func getJob(ctx context.Context, q queryRower, query string, arg interface{}) (*Job, error) {
	j, err := scanJob(q.QueryRowContext(ctx, query, arg))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(s scanner) (*Job, error) {
	j := &Job{}
	var customerID, workerID uuid.NullUUID
	var mode, custName, custPhone, custEmail, workerName sql.NullString
	var deadline sql.NullTime
	err := s.Scan(&j.ID, &j.TicketID, &customerID, &workerID, &j.Description, &j.Status,
		&j.TotalCost, &j.AmountPaid, &j.Balance, &j.PaymentStatus, &mode,
		&j.MaterialsCost, &j.WasteCost, &j.OperationalCost, &j.LaborCost, &j.Profit,
		&j.DateRequested, &deadline, &j.CreatedAt, &j.UpdatedAt,
		&custName, &custPhone, &custEmail, &workerName)
	if err != nil {
		return nil, err
	}
	if customerID.Valid {
		j.CustomerID = customerID.UUID
	}
	if workerID.Valid {
		j.WorkerID = &workerID.UUID
	}
	if mode.Valid {
		m := PaymentMode(mode.String)
		j.ModeOfPayment = &m
	}
	if deadline.Valid {
		j.DeliveryDeadline = &deadline.Time
	}
	j.CustomerName, j.CustomerPhone, j.WorkerName = custName.String, custPhone.String, workerName.String
	j.CustomerEmail = stringPtr(custEmail)
	return j, nil
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
