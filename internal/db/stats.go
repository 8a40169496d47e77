package db

import (
	"context"

	"github.com/meddispatch/backend/internal/model"
)

// GetDashboardStats aggregates the counts shown on the admin dashboard.
func (db *Postgres) GetDashboardStats(ctx context.Context) (*model.StatsResponse, error) {
	stats := &model.StatsResponse{LoadsByStatus: map[string]int64{}}

	err := db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE user_type = 'driver'),
			(SELECT COUNT(*) FROM users WHERE user_type = 'shipper'),
			(SELECT COUNT(*) FROM invoices WHERE status <> 'PAID')
	`).Scan(&stats.Drivers, &stats.Shippers, &stats.UnpaidInvoices)
	if err != nil {
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, `SELECT status, COUNT(*) FROM loads GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.LoadsByStatus[status] = count
	}
	return stats, rows.Err()
}
