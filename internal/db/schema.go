package db

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		user_name VARCHAR(100) UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(50) CHECK (role IN ('admin', 'worker')) NOT NULL DEFAULT 'worker',
		is_active BOOLEAN NOT NULL DEFAULT true,
		hourly_rate DECIMAL(10,2),
		monthly_salary DECIMAL(10,2),
		payment_method VARCHAR(50),
		bank_name VARCHAR(100),
		account_number VARCHAR(50),
		account_name VARCHAR(250),
		phone VARCHAR(50),
		address TEXT,
		date_joined DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS customers (
		id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(50) NOT NULL,
		email VARCHAR(255),
		total_jobs_count INTEGER NOT NULL DEFAULT 0,
		total_amount_spent DECIMAL(15,2) NOT NULL DEFAULT 0,
		first_interaction_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_interaction_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_phone ON customers(phone)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_email ON customers(email) WHERE email IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS jobs (
		id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
		ticket_id VARCHAR(100) UNIQUE NOT NULL,
		customer_id UUID REFERENCES customers(id) ON DELETE CASCADE,
		worker_id UUID REFERENCES users(id) ON DELETE SET NULL,
		description TEXT NOT NULL,
		status VARCHAR(50) CHECK (status IN ('not_started', 'in_progress', 'completed', 'delivered')) NOT NULL DEFAULT 'not_started',
		total_cost DECIMAL(15,2) NOT NULL,
		amount_paid DECIMAL(15,2) NOT NULL DEFAULT 0,
		balance DECIMAL(15,2) NOT NULL DEFAULT 0,
		payment_status VARCHAR(50) CHECK (payment_status IN ('pending', 'partially_paid', 'fully_paid')) NOT NULL DEFAULT 'pending',
		mode_of_payment VARCHAR(50) CHECK (mode_of_payment IN ('cash', 'transfer', 'pos')),
		materials_cost DECIMAL(15,2) NOT NULL DEFAULT 0,
		waste_cost DECIMAL(15,2) NOT NULL DEFAULT 0,
		operational_cost DECIMAL(15,2) NOT NULL DEFAULT 0,
		labor_cost DECIMAL(15,2) NOT NULL DEFAULT 0,
		profit DECIMAL(15,2) NOT NULL DEFAULT 0,
		date_requested DATE NOT NULL,
		delivery_deadline DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_worker_id ON jobs(worker_id)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_customer_id ON jobs(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_date_requested ON jobs(date_requested)`,

	`CREATE TABLE IF NOT EXISTS payments (
		id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
		job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		amount DECIMAL(15,2) NOT NULL CHECK (amount > 0),
		payment_type VARCHAR(50) CHECK (payment_type IN ('deposit', 'installment', 'full_payment', 'balance')) NOT NULL,
		payment_method VARCHAR(50) CHECK (payment_method IN ('cash', 'transfer', 'pos')) NOT NULL,
		receipt_number VARCHAR(100) UNIQUE NOT NULL,
		recorded_by VARCHAR(255) NOT NULL,
		recorded_by_id UUID REFERENCES users(id) ON DELETE SET NULL,
		notes TEXT,
		date TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_job_id ON payments(job_id)`,

	`CREATE TABLE IF NOT EXISTS inventory (
		id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
		material_name VARCHAR(255) NOT NULL,
		category VARCHAR(100) NOT NULL,
		paper_size VARCHAR(50),
		paper_type VARCHAR(100),
		grammage INTEGER,
		supplier VARCHAR(255),
		current_stock DECIMAL(15,2) NOT NULL,
		unit_of_measure VARCHAR(50) NOT NULL,
		unit_cost DECIMAL(15,2) NOT NULL,
		selling_price DECIMAL(15,2),
		threshold DECIMAL(15,2) NOT NULL,
		reorder_quantity DECIMAL(15,2),
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_material_name ON inventory(material_name)`,

	`CREATE TABLE IF NOT EXISTS materials_used (
		id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
		job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		material_id UUID REFERENCES inventory(id) ON DELETE SET NULL,
		material_name VARCHAR(255) NOT NULL,
		paper_size VARCHAR(50),
		paper_type VARCHAR(100),
		grammage INTEGER,
		quantity INTEGER NOT NULL,
		unit_cost DECIMAL(15,2) NOT NULL,
		total_cost DECIMAL(15,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS waste_expenses (
		id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
		job_id UUID REFERENCES jobs(id) ON DELETE CASCADE,
		type VARCHAR(50) CHECK (type IN ('paper_waste', 'material_waste', 'labor', 'operational', 'other')) NOT NULL,
		description TEXT NOT NULL,
		quantity INTEGER,
		unit_cost DECIMAL(15,2),
		total_cost DECIMAL(15,2) NOT NULL,
		waste_reason VARCHAR(100),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS operational_expenses (
		id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
		description TEXT NOT NULL,
		category VARCHAR(100) NOT NULL,
		amount DECIMAL(15,2) NOT NULL,
		expense_date DATE NOT NULL,
		recorded_by UUID REFERENCES users(id) ON DELETE SET NULL,
		receipt_number VARCHAR(100),
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		message TEXT NOT NULL,
		type VARCHAR(50) CHECK (type IN ('new_job', 'payment_update', 'status_change', 'low_stock', 'system', 'alert')) NOT NULL,
		related_entity_type VARCHAR(50) CHECK (related_entity_type IN ('job', 'payment', 'inventory', 'customer', 'user')),
		related_entity_id UUID,
		is_read BOOLEAN NOT NULL DEFAULT false,
		priority VARCHAR(20) CHECK (priority IN ('low', 'medium', 'high', 'urgent')) NOT NULL DEFAULT 'medium',
		action_url VARCHAR(500),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		expires_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_is_read ON notifications(is_read)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at)`,
}

// Migrate applies the schema inside a single transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}
