package db

import (
	"context"

	"github.com/meddispatch/backend/internal/model"
)

func (db *Postgres) GetShipper(ctx context.Context, userID int64) (*model.Shipper, error) {
	query := `
		SELECT u.id, u.email, u.name, s.company_name, s.phone, u.created_at
		FROM users u
		JOIN shippers s ON s.user_id = u.id
		WHERE u.id = $1
	`
	var sh model.Shipper
	err := db.Pool.QueryRow(ctx, query, userID).Scan(
		&sh.UserID,
		&sh.Email,
		&sh.Name,
		&sh.CompanyName,
		&sh.Phone,
		&sh.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

func (db *Postgres) UpdateShipper(ctx context.Context, userID int64, req model.UpdateShipperRequest) error {
	if req.Name != nil {
		query := `UPDATE users SET name = $2, updated_at = NOW() WHERE id = $1`
		if _, err := db.Pool.Exec(ctx, query, userID, *req.Name); err != nil {
			return err
		}
	}

	query := `
		UPDATE shippers
		SET company_name = COALESCE($2, company_name),
		    phone = COALESCE($3, phone)
		WHERE user_id = $1
	`
	_, err := db.Pool.Exec(ctx, query, userID, req.CompanyName, req.Phone)
	return err
}
