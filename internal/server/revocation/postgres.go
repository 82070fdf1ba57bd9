package revocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/commoni/commoni/internal/common"
	"github.com/commoni/commoni/internal/dbx"
)

// PostgresStore keeps entries in the revocations table. Expiry is applied
// when reading; PurgeExpired removes stale rows.
type PostgresStore struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	query :=
		`SELECT value FROM revocations
		 WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)`

	var value string
	err := s.db.QueryRowContext(ctx, query, key, s.now().UTC()).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("%w: db error: %w", common.ErrStore, err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	return s.upsert(ctx, key, value, sql.NullTime{})
}

func (s *PostgresStore) SetWithExpire(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return common.ErrInvalidArgument
	}
	return s.upsert(ctx, key, value, sql.NullTime{Time: s.now().UTC().Add(ttl), Valid: true})
}

func (s *PostgresStore) upsert(ctx context.Context, key, value string, expiresAt sql.NullTime) error {
	query :=
		`INSERT INTO revocations (key, value, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`

	if _, err := s.db.ExecContext(ctx, query, key, value, expiresAt); err != nil {
		return fmt.Errorf("%w: db error: %w", common.ErrStore, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM revocations WHERE key = $1`, key); err != nil {
		return fmt.Errorf("%w: db error: %w", common.ErrStore, err)
	}
	return nil
}

// PurgeExpired deletes rows whose expiry has passed and returns how many
// were removed.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM revocations WHERE expires_at IS NOT NULL AND expires_at <= $1`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("%w: db error: %w", common.ErrStore, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: db error: %w", common.ErrStore, err)
	}
	return n, nil
}
