package client

import (
	"context"
	"sync"

	"github.com/commoni/commoni/internal/api"
	"github.com/commoni/commoni/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.MonitoringClient

	mu     sync.Mutex
	tokens Tokens
}

func withBearer(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	return metadata.NewOutgoingContext(ctx, md)
}

// tokenFor picks the credential a method travels with; "" means none.
func (s *GRPCClient) tokenFor(method string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch method {
	case api.LoginFullMethod, api.RefreshTokenFullMethod, api.PingFullMethod:
		return ""
	case api.PushReadingFullMethod:
		return s.tokens.AgentToken
	default:
		return s.tokens.AccessToken
	}
}

func (s *GRPCClient) tokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	token := s.tokenFor(method)
	if token == "" {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withBearer(ctx, token), method, req, reply, cc, opts...)
	if status.Code(err) != codes.Unauthenticated || method == api.PushReadingFullMethod {
		return err
	}

	// access token rejected: renew once and retry
	if rerr := s.Refresh(ctx); rerr != nil {
		return err
	}
	return invoker(withBearer(ctx, s.tokenFor(method)), method, req, reply, cc, opts...)
}

// NewGRPCClient connects to endpointURL. Extra dial options are appended to
// the defaults (insecure transport, token interceptor).
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.tokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = api.NewMonitoringClient(conn)
	return c, nil
}

func (s *GRPCClient) Tokens() Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

// SetTokens replaces the credential state, e.g. with tokens saved earlier.
func (s *GRPCClient) SetTokens(t Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
}

func (s *GRPCClient) SetAgentToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens.AgentToken = token
}

func (s *GRPCClient) Login(ctx context.Context, userID, password string) error {
	resp, err := s.client.Login(ctx, &api.LoginRequest{UserID: userID, Password: password})
	if err != nil {
		return mapError(err)
	}

	s.mu.Lock()
	s.tokens.AccessToken = resp.AccessToken
	s.tokens.RefreshToken = resp.RefreshToken
	s.mu.Unlock()
	return nil
}

// Refresh renews the access token, adopting a rotated refresh token when
// the server issues one.
func (s *GRPCClient) Refresh(ctx context.Context) error {
	s.mu.Lock()
	refresh := s.tokens.RefreshToken
	s.mu.Unlock()
	if refresh == "" {
		return ErrUnauthorized
	}

	resp, err := s.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refresh})
	if err != nil {
		return mapError(err)
	}

	s.mu.Lock()
	s.tokens.AccessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		s.tokens.RefreshToken = resp.RefreshToken
	}
	s.mu.Unlock()
	return nil
}

func (s *GRPCClient) Logout(ctx context.Context) error {
	if _, err := s.client.Logout(ctx, &api.LogoutRequest{}); err != nil {
		return mapError(err)
	}

	s.mu.Lock()
	s.tokens.AccessToken = ""
	s.tokens.RefreshToken = ""
	s.mu.Unlock()
	return nil
}

func (s *GRPCClient) RegisterHost(ctx context.Context, req *api.RegisterHostRequest) (*api.RegisterHostResponse, error) {
	resp, err := s.client.RegisterHost(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) ListHosts(ctx context.Context) ([]api.Host, error) {
	resp, err := s.client.ListHosts(ctx, &api.ListHostsRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Hosts, nil
}

func (s *GRPCClient) GetHost(ctx context.Context, hostID int64) (*api.Host, error) {
	resp, err := s.client.GetHost(ctx, &api.GetHostRequest{HostID: hostID})
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.Host, nil
}

func (s *GRPCClient) UpdateHost(ctx context.Context, req *api.UpdateHostRequest) (*api.Host, error) {
	resp, err := s.client.UpdateHost(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.Host, nil
}

func (s *GRPCClient) DeleteHost(ctx context.Context, hostID int64) error {
	_, err := s.client.DeleteHost(ctx, &api.DeleteHostRequest{HostID: hostID})
	return mapError(err)
}

func (s *GRPCClient) PushReading(ctx context.Context, req *api.PushReadingRequest) (int64, error) {
	resp, err := s.client.PushReading(ctx, req)
	if err != nil {
		return 0, mapError(err)
	}
	return resp.ReadingID, nil
}

func (s *GRPCClient) ListReadings(ctx context.Context, req *api.ListReadingsRequest) ([]api.Reading, error) {
	resp, err := s.client.ListReadings(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Readings, nil
}

func (s *GRPCClient) LatestReading(ctx context.Context, hostID int64) (*api.Reading, error) {
	resp, err := s.client.LatestReading(ctx, &api.LatestReadingRequest{HostID: hostID})
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.Reading, nil
}

func (s *GRPCClient) GetUser(ctx context.Context) (*api.User, error) {
	resp, err := s.client.GetUser(ctx, &api.GetUserRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.User, nil
}

// UpdateUser changes the logged-in account. After a password change the
// server no longer renews the current session.
func (s *GRPCClient) UpdateUser(ctx context.Context, req *api.UpdateUserRequest) (*api.User, error) {
	resp, err := s.client.UpdateUser(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.User, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

var _ Client = (*GRPCClient)(nil)
