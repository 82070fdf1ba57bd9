// Package hosts persists monitored machines.
package hosts

import (
	"context"

	"github.com/commoni/commoni/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, host *models.Host) error
	Get(ctx context.Context, id int64) (*models.Host, error)
	Update(ctx context.Context, host *models.Host) error
	ListByUser(ctx context.Context, userID string) ([]*models.Host, error)
	SoftDelete(ctx context.Context, id int64) error
	SoftDeleteByUser(ctx context.Context, userID string) ([]int64, error)
}
