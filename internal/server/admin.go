package server

import (
	"context"
	"fmt"

	"github.com/commoni/commoni/internal/logging"
	"github.com/commoni/commoni/internal/server/config"
	"github.com/commoni/commoni/internal/server/models"
	"github.com/commoni/commoni/internal/server/services"
)

// Admin exposes operator tasks that run against the server's database and
// revocation store directly, without going through the gRPC endpoint.
type Admin struct {
	c *Components
}

// OpenAdmin builds the components for cfg. Migrations are not applied.
func OpenAdmin(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Admin, error) {
	c, err := Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Admin{c: c}, nil
}

func NewAdmin(c *Components) *Admin {
	return &Admin{c: c}
}

func (a *Admin) CreateUser(ctx context.Context, id, name, password string) error {
	if _, err := a.c.Users.Create(ctx, id, name, password); err != nil {
		return fmt.Errorf("create user %s: %w", id, err)
	}
	return nil
}

// GetUser returns the account, including deleted ones.
func (a *Admin) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := a.c.Users.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

func (a *Admin) UpdateUser(ctx context.Context, id string, upd services.UserUpdate) error {
	if _, err := a.c.Users.Update(ctx, id, upd); err != nil {
		return fmt.Errorf("update user %s: %w", id, err)
	}
	return nil
}

// DeleteUser soft-deletes the account and its hosts and revokes every
// token they hold.
func (a *Admin) DeleteUser(ctx context.Context, id string) error {
	if err := a.c.Users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

func (a *Admin) RevokeAgent(ctx context.Context, userID string, hostID int64) error {
	if err := a.c.Auth.RevokeAgentToken(ctx, userID, hostID); err != nil {
		return fmt.Errorf("revoke agent token of host %d: %w", hostID, err)
	}
	return nil
}

func (a *Admin) PurgeRevocations(ctx context.Context) (int64, error) {
	return a.c.PurgeExpired(ctx)
}

func (a *Admin) Close() error {
	return a.c.Close()
}
