package readings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/commoni/commoni/internal/common"
	"github.com/commoni/commoni/internal/dbx"
	"github.com/commoni/commoni/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rd *models.Reading) error {
	query :=
		`INSERT INTO readings (host_id, cpu, memory, disk, collected_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query, rd.HostID, rd.CPU, rd.Memory, rd.Disk, rd.CollectedAt.UTC()).Scan(&rd.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// List returns the newest readings of hostID collected in [from, to).
func (r *PostgresRepository) List(ctx context.Context, hostID int64, from, to time.Time, limit int) ([]*models.Reading, error) {
	query :=
		`SELECT id, host_id, cpu, memory, disk, collected_at FROM readings
		 WHERE host_id = $1 AND collected_at >= $2 AND collected_at < $3
		 ORDER BY collected_at DESC
		 LIMIT $4`

	rows, err := r.db.QueryContext(ctx, query, hostID, from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Reading
	for rows.Next() {
		rd := &models.Reading{}
		if err := rows.Scan(&rd.ID, &rd.HostID, &rd.CPU, &rd.Memory, &rd.Disk, &rd.CollectedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// PutLatest makes rd the snapshot of its host unless the snapshot already
// holds a sample collected later.
func (r *PostgresRepository) PutLatest(ctx context.Context, rd *models.Reading) error {
	query :=
		`INSERT INTO readings_latest (host_id, reading_id, cpu, memory, disk, collected_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (host_id) DO UPDATE SET
		     reading_id = EXCLUDED.reading_id,
		     cpu = EXCLUDED.cpu,
		     memory = EXCLUDED.memory,
		     disk = EXCLUDED.disk,
		     collected_at = EXCLUDED.collected_at,
		     updated_at = now()
		 WHERE readings_latest.collected_at <= EXCLUDED.collected_at`

	_, err := r.db.ExecContext(ctx, query, rd.HostID, rd.ID, rd.CPU, rd.Memory, rd.Disk, rd.CollectedAt.UTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Latest returns the snapshot of hostID, or common.ErrorNotFound before the
// first sample.
func (r *PostgresRepository) Latest(ctx context.Context, hostID int64) (*models.Reading, error) {
	query :=
		`SELECT reading_id, host_id, cpu, memory, disk, collected_at FROM readings_latest
		 WHERE host_id = $1`

	rd := &models.Reading{}
	err := r.db.QueryRowContext(ctx, query, hostID).
		Scan(&rd.ID, &rd.HostID, &rd.CPU, &rd.Memory, &rd.Disk, &rd.CollectedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rd, nil
}
