package db

import "context"

// EnsureSchema creates all tables on startup. Idempotent.
func (db *Postgres) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL,
			user_type TEXT NOT NULL,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (email, user_type)
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS drivers (
			user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			phone TEXT NOT NULL DEFAULT '',
			fleet_id TEXT,
			fleet_role TEXT NOT NULL DEFAULT 'INDEPENDENT',
			vehicle_make TEXT NOT NULL DEFAULT '',
			vehicle_plate TEXT NOT NULL DEFAULT '',
			registration_expires_at TIMESTAMPTZ
		)
		`,
		`CREATE INDEX IF NOT EXISTS drivers_fleet_id_idx ON drivers(fleet_id)`,
		`
		CREATE TABLE IF NOT EXISTS shippers (
			user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			company_name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT ''
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS login_attempts (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL,
			user_type TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS login_attempts_lookup_idx ON login_attempts(email, user_type, created_at)`,
		`
		CREATE TABLE IF NOT EXISTS password_reset_tokens (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user_type TEXT NOT NULL,
			token_hash TEXT NOT NULL UNIQUE,
			expires_at TIMESTAMPTZ NOT NULL,
			used_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS facilities (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT NOT NULL,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			zip TEXT NOT NULL DEFAULT '',
			lat DOUBLE PRECISION,
			lon DOUBLE PRECISION,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS invoices (
			id BIGSERIAL PRIMARY KEY,
			number TEXT NOT NULL UNIQUE,
			shipper_id BIGINT NOT NULL REFERENCES users(id),
			period_start TIMESTAMPTZ NOT NULL,
			period_end TIMESTAMPTZ NOT NULL,
			total_cents BIGINT NOT NULL,
			status TEXT NOT NULL DEFAULT 'DRAFT',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS loads (
			id BIGSERIAL PRIMARY KEY,
			reference TEXT NOT NULL UNIQUE,
			shipper_id BIGINT NOT NULL REFERENCES users(id),
			driver_id BIGINT REFERENCES users(id),
			pickup_facility_id BIGINT NOT NULL REFERENCES facilities(id),
			dropoff_facility_id BIGINT NOT NULL REFERENCES facilities(id),
			status TEXT NOT NULL DEFAULT 'PENDING',
			price_cents BIGINT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			invoice_id BIGINT REFERENCES invoices(id),
			delivered_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS loads_shipper_id_idx ON loads(shipper_id)`,
		`CREATE INDEX IF NOT EXISTS loads_driver_id_idx ON loads(driver_id)`,
		`CREATE INDEX IF NOT EXISTS loads_status_idx ON loads(status)`,
		`
		CREATE TABLE IF NOT EXISTS driver_ratings (
			id BIGSERIAL PRIMARY KEY,
			driver_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			shipper_id BIGINT NOT NULL REFERENCES users(id),
			load_id BIGINT NOT NULL UNIQUE REFERENCES loads(id),
			stars INT NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS documents (
			id BIGSERIAL PRIMARY KEY,
			driver_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			url TEXT NOT NULL,
			expires_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS notifications (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user_type TEXT NOT NULL,
			kind TEXT NOT NULL,
			body TEXT NOT NULL,
			read_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS notifications_user_idx ON notifications(user_id, user_type)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}
