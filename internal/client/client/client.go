package client

import (
	"context"

	"github.com/commoni/commoni/internal/api"
)

type Client interface {
	Close() error
	Login(ctx context.Context, userID, password string) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	RegisterHost(ctx context.Context, req *api.RegisterHostRequest) (*api.RegisterHostResponse, error)
	ListHosts(ctx context.Context) ([]api.Host, error)
	GetHost(ctx context.Context, hostID int64) (*api.Host, error)
	UpdateHost(ctx context.Context, req *api.UpdateHostRequest) (*api.Host, error)
	DeleteHost(ctx context.Context, hostID int64) error
	PushReading(ctx context.Context, req *api.PushReadingRequest) (int64, error)
	ListReadings(ctx context.Context, req *api.ListReadingsRequest) ([]api.Reading, error)
	LatestReading(ctx context.Context, hostID int64) (*api.Reading, error)
	GetUser(ctx context.Context) (*api.User, error)
	UpdateUser(ctx context.Context, req *api.UpdateUserRequest) (*api.User, error)
	Ping(ctx context.Context) error
}

// Tokens is the credential state of a client.
type Tokens struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	AgentToken   string `json:"agent_token,omitempty"`
}
