package inventory

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

const itemColumns = `id, material_name, category, paper_size, paper_type, grammage, supplier,
	current_stock, unit_of_measure, unit_cost, selling_price, threshold, reorder_quantity,
	is_active, created_at, updated_at`

func (r *postgresRepo) ListItems(ctx context.Context, f ListFilter) ([]*Item, int, error) {
	where := ` WHERE is_active = true`
	args := []interface{}{}
	if f.Category != "" {
		args = append(args, f.Category)
		where += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if f.LowStock {
		where += ` AND current_stock <= threshold`
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inventory: %w", err)
	}

	args = append(args, f.Limit, f.Offset())
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM inventory%s
		ORDER BY material_name LIMIT $%d OFFSET $%d`, itemColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()
	items, err := scanItems(rows)
	return items, total, err
}

func (r *postgresRepo) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM inventory WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("inventory item not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

func (r *postgresRepo) CreateItem(ctx context.Context, i *Item) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO inventory (id, material_name, category, paper_size, paper_type, grammage, supplier,
			current_stock, unit_of_measure, unit_cost, selling_price, threshold, reorder_quantity, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at, updated_at`,
		i.ID, i.MaterialName, i.Category, i.PaperSize, i.PaperType, i.Grammage, i.Supplier,
		i.CurrentStock, i.UnitOfMeasure, i.UnitCost, i.SellingPrice, i.Threshold, i.ReorderQuantity, i.IsActive).
		Scan(&i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert inventory item: %w", err)
	}
	return nil
}

func (r *postgresRepo) UpdateItem(ctx context.Context, i *Item) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE inventory
		SET material_name = $1, category = $2, paper_size = $3, paper_type = $4, grammage = $5,
		    supplier = $6, current_stock = $7, unit_of_measure = $8, unit_cost = $9, selling_price = $10,
		    threshold = $11, reorder_quantity = $12, is_active = $13, updated_at = now()
		WHERE id = $14
		RETURNING updated_at`,
		i.MaterialName, i.Category, i.PaperSize, i.PaperType, i.Grammage, i.Supplier,
		i.CurrentStock, i.UnitOfMeasure, i.UnitCost, i.SellingPrice, i.Threshold, i.ReorderQuantity,
		i.IsActive, i.ID).Scan(&i.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("inventory item not found")
	}
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}
	return nil
}

func (r *postgresRepo) DeactivateItem(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE inventory SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate inventory item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("inventory item not found")
	}
	return nil
}

func (r *postgresRepo) ListLowStock(ctx context.Context) ([]*Item, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM inventory
		WHERE is_active = true AND current_stock <= threshold
		ORDER BY current_stock ASC`)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *postgresRepo) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM inventory WHERE is_active = true ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ── helpers ──────────────────────────────────────────────────────────────────

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row scanner) (*Item, error) {
	i := &Item{}
	var paperSize, paperType, supplier sql.NullString
	var grammage sql.NullInt64
	if err := row.Scan(&i.ID, &i.MaterialName, &i.Category, &paperSize, &paperType, &grammage, &supplier,
		&i.CurrentStock, &i.UnitOfMeasure, &i.UnitCost, &i.SellingPrice, &i.Threshold, &i.ReorderQuantity,
		&i.IsActive, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	i.PaperSize = nullString(paperSize)
	i.PaperType = nullString(paperType)
	i.Supplier = nullString(supplier)
	if grammage.Valid {
		g := int(grammage.Int64)
		i.Grammage = &g
	}
	i.Evaluate()
	return i, nil
}

func scanItems(rows *sql.Rows) ([]*Item, error) {
	items := []*Item{}
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
