// Package readings persists host utilisation samples.
package readings

import (
	"context"
	"time"

	"github.com/commoni/commoni/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, r *models.Reading) error
	List(ctx context.Context, hostID int64, from, to time.Time, limit int) ([]*models.Reading, error)
	PutLatest(ctx context.Context, r *models.Reading) error
	Latest(ctx context.Context, hostID int64) (*models.Reading, error)
}
