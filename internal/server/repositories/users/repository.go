// Package users persists accounts.
package users

import (
	"context"

	"github.com/commoni/commoni/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SoftDelete(ctx context.Context, id string) error
}
