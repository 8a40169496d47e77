package db

import (
	"context"
	"time"

	"github.com/meddispatch/backend/internal/model"
)

// GenerateInvoice bills all delivered, not-yet-invoiced loads for a shipper
// in the period. The selection and the invoice insert run in one transaction
// with the loads row-locked, so two concurrent generations cannot bill the
// same load twice. Returns nil when no billable loads exist.
func (db *Postgres) GenerateInvoice(ctx context.Context, shipperID int64, number string, periodStart, periodEnd time.Time) (*model.InvoiceDetail, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := tx.Query(ctx, `
		SELECT `+loadColumns+`
		FROM loads
		WHERE shipper_id = $1
		  AND status = 'DELIVERED'
		  AND invoice_id IS NULL
		  AND delivered_at >= $2
		  AND delivered_at < $3
		FOR UPDATE
	`, shipperID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	var loads []model.Load
	for rows.Next() {
		load, err := scanLoad(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		loads = append(loads, *load)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(loads) == 0 {
		return nil, nil
	}

	var total int64
	ids := make([]int64, 0, len(loads))
	for _, l := range loads {
		total += l.PriceCents
		ids = append(ids, l.ID)
	}

	var inv model.Invoice
	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (number, shipper_id, period_start, period_end, total_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, number, shipper_id, period_start, period_end, total_cents, status, created_at
	`, number, shipperID, periodStart, periodEnd, total).Scan(
		&inv.ID, &inv.Number, &inv.ShipperID, &inv.PeriodStart, &inv.PeriodEnd, &inv.TotalCents, &inv.Status, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE loads SET invoice_id = $1, updated_at = NOW() WHERE id = ANY($2)
	`, inv.ID, ids); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	for i := range loads {
		loads[i].InvoiceID = &inv.ID
	}
	return &model.InvoiceDetail{Invoice: inv, Loads: loads}, nil
}

func (db *Postgres) GetInvoice(ctx context.Context, invoiceID int64) (*model.Invoice, error) {
	query := `
		SELECT id, number, shipper_id, period_start, period_end, total_cents, status, created_at
		FROM invoices
		WHERE id = $1
	`
	var inv model.Invoice
	err := db.Pool.QueryRow(ctx, query, invoiceID).Scan(
		&inv.ID, &inv.Number, &inv.ShipperID, &inv.PeriodStart, &inv.PeriodEnd, &inv.TotalCents, &inv.Status, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (db *Postgres) GetInvoiceLoads(ctx context.Context, invoiceID int64) ([]model.Load, error) {
	query := `SELECT ` + loadColumns + ` FROM loads WHERE invoice_id = $1 ORDER BY delivered_at`
	return db.queryLoads(ctx, query, invoiceID)
}

// ListInvoices returns all invoices, or one shipper's when shipperID is
// non-zero.
func (db *Postgres) ListInvoices(ctx context.Context, shipperID int64) ([]model.Invoice, error) {
	query := `
		SELECT id, number, shipper_id, period_start, period_end, total_cents, status, created_at
		FROM invoices
	`
	var args []interface{}
	if shipperID != 0 {
		query += ` WHERE shipper_id = $1`
		args = append(args, shipperID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Invoice{}
	for rows.Next() {
		var inv model.Invoice
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.ShipperID, &inv.PeriodStart, &inv.PeriodEnd, &inv.TotalCents, &inv.Status, &inv.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func (db *Postgres) UpdateInvoiceStatus(ctx context.Context, invoiceID int64, status model.InvoiceStatus) (bool, error) {
	query := `UPDATE invoices SET status = $2 WHERE id = $1`
	tag, err := db.Pool.Exec(ctx, query, invoiceID, status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
