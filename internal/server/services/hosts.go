package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/commoni/commoni/internal/common"
	"github.com/commoni/commoni/internal/logging"
	"github.com/commoni/commoni/internal/server/models"
	"github.com/commoni/commoni/internal/server/repositories/hosts"
)

const maxHostNameLen = 255

// HostInfo describes a machine being registered.
type HostInfo struct {
	Name     string
	IP       string
	MemoryMB int64
	DiskGB   int64
}

func (i HostInfo) validate() error {
	name := strings.TrimSpace(i.Name)
	if name == "" {
		return invalidArgument("host name is required")
	}
	if len(name) > maxHostNameLen {
		return invalidArgument("host name longer than %d bytes", maxHostNameLen)
	}
	if i.IP != "" && net.ParseIP(i.IP) == nil {
		return invalidArgument("bad ip address %q", i.IP)
	}
	if i.MemoryMB < 0 || i.DiskGB < 0 {
		return invalidArgument("memory and disk must not be negative")
	}
	return nil
}

// HostUpdate lists the fields to change; nil fields keep their value.
type HostUpdate struct {
	Name     *string
	IP       *string
	MemoryMB *int64
	DiskGB   *int64
}

type HostService struct {
	hosts  hosts.Repository
	auth   *AuthService
	logger logging.Logger
}

func NewHostService(repo hosts.Repository, auth *AuthService, logger logging.Logger) *HostService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &HostService{hosts: repo, auth: auth, logger: logger.With("module", "host_service")}
}

// RegisterHost creates a host owned by userID and issues its agent token.
func (s *HostService) RegisterHost(ctx context.Context, userID string, info HostInfo) (*models.Host, *AgentToken, error) {
	if err := info.validate(); err != nil {
		return nil, nil, err
	}

	h := &models.Host{
		UserID:   userID,
		Name:     strings.TrimSpace(info.Name),
		IP:       info.IP,
		MemoryMB: info.MemoryMB,
		DiskGB:   info.DiskGB,
	}
	if err := s.hosts.Create(ctx, h); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, nil, fmt.Errorf("host %q: %w", h.Name, err)
		}
		return nil, nil, serverError(ctx, s.logger, "create host", err)
	}

	registered, err := s.auth.AuthenticateHost(ctx, h.ID)
	if err != nil {
		return nil, nil, err
	}
	tok, err := s.auth.CreateAgentToken(ctx, userID, registered.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(ctx, "host registered", "user_id", userID, "host_id", registered.ID)
	return registered, tok, nil
}

// GetHost returns a live host of userID. A host of another user is
// reported as missing.
func (s *HostService) GetHost(ctx context.Context, userID string, hostID int64) (*models.Host, error) {
	return s.ownedHost(ctx, userID, hostID)
}

// UpdateHost changes the description of a host of userID. The agent token
// of the host stays valid.
func (s *HostService) UpdateHost(ctx context.Context, userID string, hostID int64, upd HostUpdate) (*models.Host, error) {
	h, err := s.ownedHost(ctx, userID, hostID)
	if err != nil {
		return nil, err
	}

	info := HostInfo{Name: h.Name, IP: h.IP, MemoryMB: h.MemoryMB, DiskGB: h.DiskGB}
	if upd.Name != nil {
		info.Name = *upd.Name
	}
	if upd.IP != nil {
		info.IP = *upd.IP
	}
	if upd.MemoryMB != nil {
		info.MemoryMB = *upd.MemoryMB
	}
	if upd.DiskGB != nil {
		info.DiskGB = *upd.DiskGB
	}
	if err := info.validate(); err != nil {
		return nil, err
	}

	h.Name = strings.TrimSpace(info.Name)
	h.IP = info.IP
	h.MemoryMB = info.MemoryMB
	h.DiskGB = info.DiskGB
	if err := s.hosts.Update(ctx, h); err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.ErrHostNotFound
		case errors.Is(err, common.ErrAlreadyExists):
			return nil, fmt.Errorf("host %q: %w", h.Name, err)
		}
		return nil, serverError(ctx, s.logger, "update host", err)
	}

	s.logger.Info(ctx, "host updated", "user_id", userID, "host_id", hostID)
	return h, nil
}

func (s *HostService) ListHosts(ctx context.Context, userID string) ([]*models.Host, error) {
	list, err := s.hosts.ListByUser(ctx, userID)
	if err != nil {
		return nil, serverError(ctx, s.logger, "list hosts", err)
	}
	return list, nil
}

// DeleteHost soft-deletes a host of userID and revokes its agent token.
// A host of another user is reported as missing.
func (s *HostService) DeleteHost(ctx context.Context, userID string, hostID int64) error {
	if _, err := s.ownedHost(ctx, userID, hostID); err != nil {
		return err
	}

	if err := s.hosts.SoftDelete(ctx, hostID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrHostNotFound
		}
		return serverError(ctx, s.logger, "delete host", err)
	}
	if err := s.auth.RevokeAgentToken(ctx, userID, hostID); err != nil {
		return err
	}

	s.logger.Info(ctx, "host deleted", "user_id", userID, "host_id", hostID)
	return nil
}

func (s *HostService) ownedHost(ctx context.Context, userID string, hostID int64) (*models.Host, error) {
	h, err := s.auth.AuthenticateHost(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if h.UserID != userID {
		return nil, common.ErrHostNotFound
	}
	return h, nil
}
