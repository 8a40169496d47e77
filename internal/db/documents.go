package db

import (
	"context"

	"github.com/meddispatch/backend/internal/model"
)

func (db *Postgres) InsertDocument(ctx context.Context, driverID int64, req model.CreateDocumentRequest) (*model.Document, error) {
	query := `
		INSERT INTO documents (driver_id, kind, url, expires_at, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, driver_id, kind, url, expires_at, created_at
	`
	var doc model.Document
	err := db.Pool.QueryRow(ctx, query, driverID, req.Kind, req.URL, req.ExpiresAt).Scan(
		&doc.ID, &doc.DriverID, &doc.Kind, &doc.URL, &doc.ExpiresAt, &doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDriverDocuments lists a driver's compliance documents subject to the
// fleet scope, applied in the query itself.
func (db *Postgres) ListDriverDocuments(ctx context.Context, driverID int64, scope model.FleetScope) ([]model.Document, error) {
	query := `
		SELECT doc.id, doc.driver_id, doc.kind, doc.url, doc.expires_at, doc.created_at
		FROM documents doc
		JOIN drivers d ON d.user_id = doc.driver_id
		WHERE doc.driver_id = $1
	`
	args := []interface{}{driverID}
	switch {
	case scope.All:
	case scope.FleetID != "":
		query += ` AND d.fleet_id = $2`
		args = append(args, scope.FleetID)
	default:
		query += ` AND doc.driver_id = $2`
		args = append(args, scope.DriverID)
	}
	query += ` ORDER BY doc.created_at DESC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Document{}
	for rows.Next() {
		var doc model.Document
		if err := rows.Scan(&doc.ID, &doc.DriverID, &doc.Kind, &doc.URL, &doc.ExpiresAt, &doc.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, doc)
	}
	return list, rows.Err()
}

// DeleteDocument removes a document. ownerID restricts deletion to the
// owning driver; pass 0 for an admin delete.
func (db *Postgres) DeleteDocument(ctx context.Context, documentID, ownerID int64) (bool, error) {
	query := `DELETE FROM documents WHERE id = $1`
	args := []interface{}{documentID}
	if ownerID != 0 {
		query += ` AND driver_id = $2`
		args = append(args, ownerID)
	}
	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
