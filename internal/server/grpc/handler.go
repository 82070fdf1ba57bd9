package grpc

import (
	"context"

	"github.com/commoni/commoni/internal/api"
	"github.com/commoni/commoni/internal/server/models"
	"github.com/commoni/commoni/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.TokenResponse, error) {
	if req.UserID == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id and password are required")
	}

	tokens, err := s.auth.Login(ctx, req.UserID, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Logged in", "user_id", req.UserID)
	return &api.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.TokenResponse, error) {
	if req.RefreshToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	tokens, err := s.auth.RenewToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *api.LogoutRequest) (*api.LogoutResponse, error) {
	tok, err := mustToken(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.auth.RemoveToken(ctx, tok.Raw()); err != nil {
		return nil, toStatus(err)
	}
	return &api.LogoutResponse{}, nil
}

func (s *GRPCServer) RegisterHost(ctx context.Context, req *api.RegisterHostRequest) (*api.RegisterHostResponse, error) {
	tok, err := mustToken(ctx)
	if err != nil {
		return nil, err
	}

	h, agent, err := s.hosts.RegisterHost(ctx, tok.UserID(), services.HostInfo{
		Name:     req.Name,
		IP:       req.IP,
		MemoryMB: req.MemoryMB,
		DiskGB:   req.DiskGB,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.RegisterHostResponse{
		Host:       hostToAPI(h),
		AgentToken: agent.Value,
		TokenType:  agent.Type.String(),
	}, nil
}

func (s *GRPCServer) ListHosts(ctx context.Context, _ *api.ListHostsRequest) (*api.ListHostsResponse, error) {
	tok, err := mustToken(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.hosts.ListHosts(ctx, tok.UserID())
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &api.ListHostsResponse{Hosts: make([]api.Host, 0, len(list))}
	for _, h := range list {
		resp.Hosts = append(resp.Hosts, hostToAPI(h))
	}
	return resp, nil
}

func (s *GRPCServer) GetHost(ctx context.Context, req *api.GetHostRequest) (*api.GetHostResponse, error) {
	tok, err := mustToken(ctx)
	if err != nil {
		return nil, err
	}

	h, err := s.hosts.GetHost(ctx, tok.UserID(), req.HostID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.GetHostResponse{Host: hostToAPI(h)}, nil
}

func (s *GRPCServer) UpdateHost(ctx context.Context, req *api.UpdateHostRequest) (*api.UpdateHostResponse, error) {
	tok, err := mustToken(ctx)
	if err != nil {
		return nil, err
	}

	h, err := s.hosts.UpdateHost(ctx, tok.UserID(), req.HostID, services.HostUpdate{
		Name:     req.Name,
		IP:       req.IP,
		MemoryMB: req.MemoryMB,
		DiskGB:   req.DiskGB,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.UpdateHostResponse{Host: hostToAPI(h)}, nil
}

func (s *GRPCServer) DeleteHost(ctx context.Context, req *api.DeleteHostRequest) (*api.DeleteHostResponse, error) {
	tok, err := mustToken(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.hosts.DeleteHost(ctx, tok.UserID(), req.HostID); err != nil {
		return nil, toStatus(err)
	}
	return &api.DeleteHostResponse{}, nil
}

func (s *GRPCServer) PushReading(ctx context.Context, req *api.PushReadingRequest) (*api.PushReadingResponse, error) {
	tok, err := mustToken(ctx)
	if err != nil {
		return nil, err
	}
	hostID, ok := tok.HostID()
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	r, err := s.readings.Push(ctx, hostID, services.Sample{
		CPU:         req.CPU,
		Memory:      req.Memory,
		Disk:        req.Disk,
		CollectedAt: req.CollectedAt,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.PushReadingResponse{ReadingID: r.ID}, nil
}

func (s *GRPCServer) ListReadings(ctx context.Context, req *api.ListReadingsRequest) (*api.ListReadingsResponse, error) {
	tok, err := mustToken(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.readings.List(ctx, tok.UserID(), req.HostID, services.ReadingQuery{
		From:  req.From,
		To:    req.To,
		Limit: req.Limit,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &api.ListReadingsResponse{Readings: make([]api.Reading, 0, len(list))}
	for _, r := range list {
		resp.Readings = append(resp.Readings, readingToAPI(r))
	}
	return resp, nil
}

func (s *GRPCServer) LatestReading(ctx context.Context, req *api.LatestReadingRequest) (*api.LatestReadingResponse, error) {
	tok, err := mustToken(ctx)
	if err != nil {
		return nil, err
	}

	r, err := s.readings.Latest(ctx, tok.UserID(), req.HostID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.LatestReadingResponse{Reading: readingToAPI(r)}, nil
}

func (s *GRPCServer) GetUser(ctx context.Context, _ *api.GetUserRequest) (*api.GetUserResponse, error) {
	tok, err := mustToken(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Get(ctx, tok.UserID())
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.GetUserResponse{User: userToAPI(u)}, nil
}

// UpdateUser changes the caller's own account.
func (s *GRPCServer) UpdateUser(ctx context.Context, req *api.UpdateUserRequest) (*api.UpdateUserResponse, error) {
	tok, err := mustToken(ctx)
	if err != nil {
		return nil, err
	}
	if req.Name == nil && req.Password == nil {
		return nil, status.Error(codes.InvalidArgument, "nothing to update")
	}

	u, err := s.users.Update(ctx, tok.UserID(), services.UserUpdate{Name: req.Name, Password: req.Password})
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.UpdateUserResponse{User: userToAPI(u)}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func hostToAPI(h *models.Host) api.Host {
	return api.Host{
		ID:        h.ID,
		Name:      h.Name,
		IP:        h.IP,
		MemoryMB:  h.MemoryMB,
		DiskGB:    h.DiskGB,
		CreatedAt: h.CreatedAt,
	}
}

func readingToAPI(r *models.Reading) api.Reading {
	return api.Reading{
		ID:          r.ID,
		HostID:      r.HostID,
		CPU:         r.CPU,
		Memory:      r.Memory,
		Disk:        r.Disk,
		CollectedAt: r.CollectedAt,
	}
}

func userToAPI(u *models.User) api.User {
	return api.User{
		ID:        u.ID,
		Name:      u.Name,
		Deleted:   u.Deleted,
		CreatedAt: u.CreatedAt,
	}
}
