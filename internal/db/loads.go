package db

import (
	"context"

	"github.com/meddispatch/backend/internal/model"
)

const loadColumns = `
	id, reference, shipper_id, driver_id, pickup_facility_id, dropoff_facility_id,
	status, price_cents, notes, invoice_id, delivered_at, created_at, updated_at
`

func (db *Postgres) CreateLoad(ctx context.Context, shipperID int64, reference string, req model.CreateLoadRequest) (*model.Load, error) {
	query := `
		INSERT INTO loads (reference, shipper_id, pickup_facility_id, dropoff_facility_id, price_cents, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + loadColumns
	row := db.Pool.QueryRow(ctx, query,
		reference, shipperID, req.PickupFacilityID, req.DropoffFacilityID, req.PriceCents, req.Notes,
	)
	return scanLoad(row)
}

func (db *Postgres) GetLoad(ctx context.Context, loadID int64) (*model.Load, error) {
	query := `SELECT ` + loadColumns + ` FROM loads WHERE id = $1`
	row := db.Pool.QueryRow(ctx, query, loadID)
	return scanLoad(row)
}

func (db *Postgres) ListLoadsByShipper(ctx context.Context, shipperID int64) ([]model.Load, error) {
	query := `SELECT ` + loadColumns + ` FROM loads WHERE shipper_id = $1 ORDER BY created_at DESC`
	return db.queryLoads(ctx, query, shipperID)
}

func (db *Postgres) ListLoadsByDriver(ctx context.Context, driverID int64) ([]model.Load, error) {
	query := `SELECT ` + loadColumns + ` FROM loads WHERE driver_id = $1 ORDER BY created_at DESC`
	return db.queryLoads(ctx, query, driverID)
}

func (db *Postgres) ListAvailableLoads(ctx context.Context) ([]model.Load, error) {
	query := `SELECT ` + loadColumns + ` FROM loads WHERE status = 'PENDING' AND driver_id IS NULL ORDER BY created_at`
	return db.queryLoads(ctx, query)
}

func (db *Postgres) ListAllLoads(ctx context.Context) ([]model.Load, error) {
	query := `SELECT ` + loadColumns + ` FROM loads ORDER BY created_at DESC`
	return db.queryLoads(ctx, query)
}

// AssignLoad claims a pending load for a driver. The status guard in the
// WHERE clause makes concurrent claims lose cleanly: only one update matches.
func (db *Postgres) AssignLoad(ctx context.Context, loadID, driverID int64) (bool, error) {
	query := `
		UPDATE loads
		SET driver_id = $2, status = 'ASSIGNED', updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING' AND driver_id IS NULL
	`
	tag, err := db.Pool.Exec(ctx, query, loadID, driverID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// AdvanceLoadStatus performs one guarded forward transition for the assigned
// driver. delivered_at is stamped on the DELIVERED step.
func (db *Postgres) AdvanceLoadStatus(ctx context.Context, loadID, driverID int64, from, to model.LoadStatus) (bool, error) {
	query := `
		UPDATE loads
		SET status = $4,
		    delivered_at = CASE WHEN $4 = 'DELIVERED' THEN NOW() ELSE delivered_at END,
		    updated_at = NOW()
		WHERE id = $1 AND driver_id = $2 AND status = $3
	`
	tag, err := db.Pool.Exec(ctx, query, loadID, driverID, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// CancelLoad cancels a shipper's own load while it is still pending.
func (db *Postgres) CancelLoad(ctx context.Context, loadID, shipperID int64) (bool, error) {
	query := `
		UPDATE loads
		SET status = 'CANCELLED', updated_at = NOW()
		WHERE id = $1 AND shipper_id = $2 AND status = 'PENDING'
	`
	tag, err := db.Pool.Exec(ctx, query, loadID, shipperID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (db *Postgres) queryLoads(ctx context.Context, query string, args ...interface{}) ([]model.Load, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Load{}
	for rows.Next() {
		load, err := scanLoad(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *load)
	}
	return list, rows.Err()
}

func scanLoad(row rowScanner) (*model.Load, error) {
	var l model.Load
	err := row.Scan(
		&l.ID,
		&l.Reference,
		&l.ShipperID,
		&l.DriverID,
		&l.PickupFacilityID,
		&l.DropoffFacilityID,
		&l.Status,
		&l.PriceCents,
		&l.Notes,
		&l.InvoiceID,
		&l.DeliveredAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
