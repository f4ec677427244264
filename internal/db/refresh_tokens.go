package db

import (
	"context"
	"time"

	"github.com/fotowand/backend/internal/token"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRegistry keeps the refresh token registry in the refresh_tokens
// table. Only token hashes are stored.
type PostgresRegistry struct {
	pool *pgxpool.Pool
}

var _ token.Registry = (*PostgresRegistry)(nil)

func NewPostgresRegistry(pool *pgxpool.Pool) *PostgresRegistry {
	return &PostgresRegistry{pool: pool}
}

func (r *PostgresRegistry) Register(ctx context.Context, tokenStr string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (token_hash, expires_at, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (token_hash) DO UPDATE SET expires_at = EXCLUDED.expires_at
	`
	_, err := r.pool.Exec(ctx, query, token.Hash(tokenStr), expiresAt)
	return err
}

func (r *PostgresRegistry) IsValid(ctx context.Context, tokenStr string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			WHERE token_hash = $1 AND expires_at > NOW()
		)
	`
	var ok bool
	if err := r.pool.QueryRow(ctx, query, token.Hash(tokenStr)).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Rotate deletes the old row and inserts the new one in one transaction. The
// row lock taken by DELETE makes a concurrent rotation of the same token see
// zero affected rows once the first one commits.
func (r *PostgresRegistry) Rotate(ctx context.Context, oldToken, newToken string, expiresAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `
		DELETE FROM refresh_tokens
		WHERE token_hash = $1 AND expires_at > NOW()
	`, token.Hash(oldToken))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return token.ErrNotRegistered
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO refresh_tokens (token_hash, expires_at, created_at)
		VALUES ($1, $2, NOW())
	`, token.Hash(newToken), expiresAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostgresRegistry) Revoke(ctx context.Context, tokenStr string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, token.Hash(tokenStr))
	return err
}

// PurgeExpired drops rows whose tokens can no longer verify.
func (r *PostgresRegistry) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
