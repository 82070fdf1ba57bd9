package hosts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/commoni/commoni/internal/common"
	"github.com/commoni/commoni/internal/dbx"
	"github.com/commoni/commoni/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is raised by hosts_user_name_uniq: a user cannot have two
// live hosts with the same name.
const uniqueViolation = "23505"

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return common.ErrAlreadyExists
	}
	return fmt.Errorf("db error: %w", err)
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts host and fills in its generated id and creation time.
func (r *PostgresRepository) Create(ctx context.Context, host *models.Host) error {
	query :=
		`INSERT INTO hosts (user_id, host_name, host_ip, memory_mb, disk_gb)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, host.UserID, host.Name, host.IP, host.MemoryMB, host.DiskGB).
		Scan(&host.ID, &host.CreatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

// Update rewrites the descriptive columns of a live host.
func (r *PostgresRepository) Update(ctx context.Context, host *models.Host) error {
	query :=
		`UPDATE hosts SET host_name = $2, host_ip = $3, memory_mb = $4, disk_gb = $5
		 WHERE id = $1 AND NOT deleted`

	res, err := r.db.ExecContext(ctx, query, host.ID, host.Name, host.IP, host.MemoryMB, host.DiskGB)
	if err != nil {
		return mapWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Get returns a live host; deleted hosts are reported as not found.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Host, error) {
	query :=
		`SELECT id, user_id, host_name, host_ip, memory_mb, disk_gb, created_at FROM hosts
		 WHERE id = $1 AND NOT deleted`

	h := &models.Host{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&h.ID, &h.UserID, &h.Name, &h.IP, &h.MemoryMB, &h.DiskGB, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return h, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Host, error) {
	query :=
		`SELECT id, user_id, host_name, host_ip, memory_mb, disk_gb, created_at FROM hosts
		 WHERE user_id = $1 AND NOT deleted
		 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Host
	for rows.Next() {
		h := &models.Host{}
		if err := rows.Scan(&h.ID, &h.UserID, &h.Name, &h.IP, &h.MemoryMB, &h.DiskGB, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE hosts SET deleted = TRUE WHERE id = $1 AND NOT deleted`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// SoftDeleteByUser deletes every live host of userID and returns their ids.
func (r *PostgresRepository) SoftDeleteByUser(ctx context.Context, userID string) ([]int64, error) {
	query :=
		`UPDATE hosts SET deleted = TRUE
		 WHERE user_id = $1 AND NOT deleted
		 RETURNING id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}
