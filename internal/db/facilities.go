package db

import (
	"context"

	"github.com/meddispatch/backend/internal/model"
)

func (db *Postgres) CreateFacility(ctx context.Context, req model.CreateFacilityRequest, lat, lon *float64) (*model.Facility, error) {
	query := `
		INSERT INTO facilities (name, address, city, state, zip, lat, lon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, name, address, city, state, zip, lat, lon, created_at
	`
	row := db.Pool.QueryRow(ctx, query, req.Name, req.Address, req.City, req.State, req.Zip, lat, lon)
	return scanFacility(row)
}

func (db *Postgres) GetFacility(ctx context.Context, facilityID int64) (*model.Facility, error) {
	query := `
		SELECT id, name, address, city, state, zip, lat, lon, created_at
		FROM facilities
		WHERE id = $1
	`
	row := db.Pool.QueryRow(ctx, query, facilityID)
	return scanFacility(row)
}

func (db *Postgres) ListFacilities(ctx context.Context) ([]model.Facility, error) {
	query := `
		SELECT id, name, address, city, state, zip, lat, lon, created_at
		FROM facilities
		ORDER BY name
	`
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Facility{}
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *f)
	}
	return list, rows.Err()
}

func (db *Postgres) UpdateFacility(ctx context.Context, facilityID int64, req model.UpdateFacilityRequest) (bool, error) {
	query := `
		UPDATE facilities
		SET name = COALESCE($2, name),
		    address = COALESCE($3, address),
		    city = COALESCE($4, city),
		    state = COALESCE($5, state),
		    zip = COALESCE($6, zip)
		WHERE id = $1
	`
	tag, err := db.Pool.Exec(ctx, query, facilityID, req.Name, req.Address, req.City, req.State, req.Zip)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (db *Postgres) SetFacilityCoordinates(ctx context.Context, facilityID int64, lat, lon float64) error {
	query := `UPDATE facilities SET lat = $2, lon = $3 WHERE id = $1`
	_, err := db.Pool.Exec(ctx, query, facilityID, lat, lon)
	return err
}

func (db *Postgres) DeleteFacility(ctx context.Context, facilityID int64) (bool, error) {
	query := `DELETE FROM facilities WHERE id = $1`
	tag, err := db.Pool.Exec(ctx, query, facilityID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanFacility(row rowScanner) (*model.Facility, error) {
	var f model.Facility
	err := row.Scan(&f.ID, &f.Name, &f.Address, &f.City, &f.State, &f.Zip, &f.Lat, &f.Lon, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
