package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/commoni/commoni/internal/client/client"
	"github.com/commoni/commoni/internal/client/config"
	"github.com/commoni/commoni/internal/logging"
	"github.com/commoni/commoni/internal/server"
	srvconfig "github.com/commoni/commoni/internal/server/config"
	"github.com/commoni/commoni/internal/server/models"
	"github.com/commoni/commoni/internal/server/services"
)

// Admin is the operator surface of a server installation.
type Admin interface {
	CreateUser(ctx context.Context, id, name, password string) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, upd services.UserUpdate) error
	DeleteUser(ctx context.Context, id string) error
	RevokeAgent(ctx context.Context, userID string, hostID int64) error
	PurgeRevocations(ctx context.Context) (int64, error)
	Close() error
}

// Remote is the gRPC client surface the remote commands use.
type Remote interface {
	client.Client
	Tokens() client.Tokens
	SetTokens(t client.Tokens)
	SetAgentToken(token string)
}

type App struct {
	out io.Writer

	openAdmin func(ctx context.Context, cfg *srvconfig.Config) (Admin, error)
	dial      func(cfg *config.Config) (Remote, error)
	now       func() time.Time
}

func NewApp(out io.Writer) *App {
	return &App{
		out:       out,
		openAdmin: openServerAdmin,
		dial:      dialServer,
		now:       time.Now,
	}
}

func openServerAdmin(ctx context.Context, cfg *srvconfig.Config) (Admin, error) {
	logger, _, err := logging.New(logging.Options{
		Backend: "zerolog",
		Level:   "warn",
		Format:  "text",
		Output:  os.Stderr,
	})
	if err != nil {
		return nil, err
	}
	return server.OpenAdmin(ctx, cfg, logger)
}

func dialServer(cfg *config.Config) (Remote, error) {
	c, err := client.NewGRPCClient(cfg.ServerEndpointAddr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.ServerEndpointAddr, err)
	}
	return c, nil
}

// Execute runs commonictl with os.Args and exits non-zero on failure.
func Execute() {
	if err := NewApp(os.Stdout).RootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
