package db

import (
	"context"
	"time"

	"github.com/meddispatch/backend/internal/model"
)

const driverColumns = `
	u.id, u.email, u.name,
	d.phone, COALESCE(d.fleet_id, ''), d.fleet_role,
	d.vehicle_make, d.vehicle_plate, d.registration_expires_at,
	COALESCE((SELECT AVG(r.stars) FROM driver_ratings r WHERE r.driver_id = u.id), 0),
	u.created_at
`

// GetDriverScoped fetches a driver only when the fleet scope admits it. The
// scope is part of the WHERE clause, so callers cannot skip the check.
func (db *Postgres) GetDriverScoped(ctx context.Context, driverID int64, scope model.FleetScope) (*model.Driver, error) {
	query := `
		SELECT ` + driverColumns + `
		FROM users u
		JOIN drivers d ON d.user_id = u.id
		WHERE u.id = $1
	`
	args := []interface{}{driverID}
	switch {
	case scope.All:
	case scope.FleetID != "":
		query += ` AND d.fleet_id = $2`
		args = append(args, scope.FleetID)
	default:
		query += ` AND u.id = $2`
		args = append(args, scope.DriverID)
	}

	row := db.Pool.QueryRow(ctx, query, args...)
	return scanDriver(row)
}

// ListDrivers returns drivers visible under the fleet scope.
func (db *Postgres) ListDrivers(ctx context.Context, scope model.FleetScope) ([]model.Driver, error) {
	query := `
		SELECT ` + driverColumns + `
		FROM users u
		JOIN drivers d ON d.user_id = u.id
	`
	var args []interface{}
	switch {
	case scope.All:
	case scope.FleetID != "":
		query += ` WHERE d.fleet_id = $1`
		args = append(args, scope.FleetID)
	default:
		query += ` WHERE u.id = $1`
		args = append(args, scope.DriverID)
	}
	query += ` ORDER BY u.id`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Driver{}
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *driver)
	}
	return list, rows.Err()
}

func (db *Postgres) UpdateDriver(ctx context.Context, driverID int64, req model.UpdateDriverRequest) error {
	if req.Name != nil {
		query := `UPDATE users SET name = $2, updated_at = NOW() WHERE id = $1`
		if _, err := db.Pool.Exec(ctx, query, driverID, *req.Name); err != nil {
			return err
		}
	}

	query := `
		UPDATE drivers
		SET phone = COALESCE($2, phone),
		    fleet_id = COALESCE($3, fleet_id),
		    fleet_role = COALESCE($4, fleet_role),
		    vehicle_make = COALESCE($5, vehicle_make),
		    vehicle_plate = COALESCE($6, vehicle_plate),
		    registration_expires_at = COALESCE($7, registration_expires_at)
		WHERE user_id = $1
	`
	_, err := db.Pool.Exec(ctx, query,
		driverID,
		req.Phone,
		req.FleetID,
		req.FleetRole,
		req.VehicleMake,
		req.VehiclePlate,
		req.RegistrationExpiresAt,
	)
	return err
}

func (db *Postgres) ListDriverRatings(ctx context.Context, driverID int64) ([]model.DriverRating, error) {
	query := `
		SELECT id, driver_id, shipper_id, load_id, stars, comment, created_at
		FROM driver_ratings
		WHERE driver_id = $1
		ORDER BY created_at DESC
	`
	rows, err := db.Pool.Query(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.DriverRating{}
	for rows.Next() {
		var r model.DriverRating
		if err := rows.Scan(&r.ID, &r.DriverID, &r.ShipperID, &r.LoadID, &r.Stars, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

func (db *Postgres) InsertDriverRating(ctx context.Context, driverID, shipperID, loadID int64, stars int, comment string) (*model.DriverRating, error) {
	query := `
		INSERT INTO driver_ratings (driver_id, shipper_id, load_id, stars, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, driver_id, shipper_id, load_id, stars, comment, created_at
	`
	var r model.DriverRating
	err := db.Pool.QueryRow(ctx, query, driverID, shipperID, loadID, stars, comment).Scan(
		&r.ID, &r.DriverID, &r.ShipperID, &r.LoadID, &r.Stars, &r.Comment, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListExpiringRegistrations returns drivers whose vehicle registration lapses
// before the deadline, for the compliance scan.
func (db *Postgres) ListExpiringRegistrations(ctx context.Context, deadline time.Time) ([]model.Driver, error) {
	query := `
		SELECT ` + driverColumns + `
		FROM users u
		JOIN drivers d ON d.user_id = u.id
		WHERE d.registration_expires_at IS NOT NULL
		  AND d.registration_expires_at <= $1
		ORDER BY d.registration_expires_at
	`
	rows, err := db.Pool.Query(ctx, query, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Driver{}
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *driver)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDriver(row rowScanner) (*model.Driver, error) {
	var d model.Driver
	err := row.Scan(
		&d.UserID,
		&d.Email,
		&d.Name,
		&d.Phone,
		&d.FleetID,
		&d.FleetRole,
		&d.VehicleMake,
		&d.VehiclePlate,
		&d.RegistrationExpiresAt,
		&d.Rating,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
