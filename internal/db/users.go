package db

import (
	"context"
	"time"

	"github.com/meddispatch/backend/internal/model"
)

func (db *Postgres) CreateUser(ctx context.Context, email string, userType model.UserType, name, passwordHash string) (*model.User, error) {
	query := `
		INSERT INTO users (email, user_type, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, email, user_type, name, password_hash, created_at, updated_at
	`
	var user model.User
	err := db.Pool.QueryRow(ctx, query, email, userType, name, passwordHash).Scan(
		&user.ID,
		&user.Email,
		&user.UserType,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUserWithProfile inserts the user row and its role profile in one
// transaction, so a failed profile insert cannot leave an orphaned account
// that blocks the email from registering again.
func (db *Postgres) CreateUserWithProfile(ctx context.Context, email string, userType model.UserType, name, passwordHash, companyName string) (*model.User, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO users (email, user_type, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, email, user_type, name, password_hash, created_at, updated_at
	`
	var user model.User
	err = tx.QueryRow(ctx, query, email, userType, name, passwordHash).Scan(
		&user.ID,
		&user.Email,
		&user.UserType,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	switch userType {
	case model.UserTypeDriver:
		_, err = tx.Exec(ctx, `INSERT INTO drivers (user_id) VALUES ($1)`, user.ID)
	case model.UserTypeShipper:
		_, err = tx.Exec(ctx, `INSERT INTO shippers (user_id, company_name) VALUES ($1, $2)`, user.ID, companyName)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string, userType model.UserType) (*model.User, error) {
	query := `
		SELECT id, email, user_type, name, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1 AND user_type = $2
	`
	var user model.User
	err := db.Pool.QueryRow(ctx, query, email, userType).Scan(
		&user.ID,
		&user.Email,
		&user.UserType,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	query := `
		SELECT id, email, user_type, name, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user model.User
	err := db.Pool.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&user.UserType,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`
	_, err := db.Pool.Exec(ctx, query, userID, passwordHash)
	return err
}

func (db *Postgres) InsertLoginAttempt(ctx context.Context, email string, userType model.UserType, success bool) error {
	query := `
		INSERT INTO login_attempts (email, user_type, success, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := db.Pool.Exec(ctx, query, email, userType, success)
	return err
}

func (db *Postgres) CountFailedLoginAttempts(ctx context.Context, email string, userType model.UserType, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM login_attempts
		WHERE email = $1 AND user_type = $2 AND success = FALSE AND created_at >= $3
	`
	var count int
	if err := db.Pool.QueryRow(ctx, query, email, userType, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteLoginAttempts clears lockout state for an account.
func (db *Postgres) DeleteLoginAttempts(ctx context.Context, email string, userType model.UserType) (int64, error) {
	query := `DELETE FROM login_attempts WHERE email = $1 AND user_type = $2`
	tag, err := db.Pool.Exec(ctx, query, email, userType)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (db *Postgres) InsertPasswordResetToken(ctx context.Context, userID int64, userType model.UserType, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO password_reset_tokens (user_id, user_type, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := db.Pool.Exec(ctx, query, userID, userType, tokenHash, expiresAt)
	return err
}

func (db *Postgres) GetPasswordResetTokenByHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	query := `
		SELECT id, user_id, user_type, token_hash, expires_at, used_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = $1
	`
	var token model.PasswordResetToken
	err := db.Pool.QueryRow(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.UserID,
		&token.UserType,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// MarkPasswordResetTokenUsed consumes a token. Returns false when the token
// was already used, so a second redemption fails.
func (db *Postgres) MarkPasswordResetTokenUsed(ctx context.Context, tokenID int64) (bool, error) {
	query := `
		UPDATE password_reset_tokens
		SET used_at = NOW()
		WHERE id = $1 AND used_at IS NULL
	`
	tag, err := db.Pool.Exec(ctx, query, tokenID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
