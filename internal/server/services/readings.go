package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/commoni/commoni/internal/common"
	"github.com/commoni/commoni/internal/logging"
	"github.com/commoni/commoni/internal/server/models"
	"github.com/commoni/commoni/internal/server/repositories/readings"
)

const (
	DefaultReadingsLimit  = 100
	MaxReadingsLimit      = 1000
	DefaultReadingsWindow = 24 * time.Hour

	// maxClockSkew bounds how far in the future an agent may date a sample.
	maxClockSkew = 5 * time.Minute
)

// Sample is one utilisation measurement sent by an agent. A zero
// CollectedAt means "now".
type Sample struct {
	CPU         float64
	Memory      float64
	Disk        float64
	CollectedAt time.Time
}

// ReadingQuery selects readings in [From, To). Zero bounds default to the
// last DefaultReadingsWindow; a zero Limit to DefaultReadingsLimit.
type ReadingQuery struct {
	From  time.Time
	To    time.Time
	Limit int
}

type ReadingService struct {
	readings readings.Repository
	auth     *AuthService
	logger   logging.Logger
	now      func() time.Time
}

func NewReadingService(repo readings.Repository, auth *AuthService, logger logging.Logger, now func() time.Time) *ReadingService {
	if logger == nil {
		logger = logging.Nop{}
	}
	if now == nil {
		now = time.Now
	}
	return &ReadingService{readings: repo, auth: auth, logger: logger.With("module", "reading_service"), now: now}
}

// Push stores a sample of hostID. The caller has already verified the
// agent token of that host.
func (s *ReadingService) Push(ctx context.Context, hostID int64, sample Sample) (*models.Reading, error) {
	for name, v := range map[string]float64{"cpu": sample.CPU, "memory": sample.Memory, "disk": sample.Disk} {
		if math.IsNaN(v) || v < 0 || v > 100 {
			return nil, invalidArgument("%s utilisation %v outside [0, 100]", name, v)
		}
	}

	now := s.now().UTC()
	at := sample.CollectedAt.UTC()
	if sample.CollectedAt.IsZero() {
		at = now
	}
	if at.After(now.Add(maxClockSkew)) {
		return nil, invalidArgument("collected_at %s is in the future", at.Format(time.RFC3339))
	}

	r := &models.Reading{
		HostID:      hostID,
		CPU:         sample.CPU,
		Memory:      sample.Memory,
		Disk:        sample.Disk,
		CollectedAt: at,
	}
	if err := s.readings.Create(ctx, r); err != nil {
		return nil, serverError(ctx, s.logger, "store reading", err)
	}
	if err := s.readings.PutLatest(ctx, r); err != nil {
		return nil, serverError(ctx, s.logger, "update latest reading", err)
	}
	s.logger.Debug(ctx, "reading stored", "host_id", hostID, "reading_id", r.ID)
	return r, nil
}

// Latest returns the most recent sample of a host owned by userID.
func (s *ReadingService) Latest(ctx context.Context, userID string, hostID int64) (*models.Reading, error) {
	if err := s.checkOwner(ctx, userID, hostID); err != nil {
		return nil, err
	}

	r, err := s.readings.Latest(ctx, hostID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNoReadings
		}
		return nil, serverError(ctx, s.logger, "latest reading", err)
	}
	return r, nil
}

// List returns readings of a host owned by userID, newest first.
func (s *ReadingService) List(ctx context.Context, userID string, hostID int64, q ReadingQuery) ([]*models.Reading, error) {
	if err := s.checkOwner(ctx, userID, hostID); err != nil {
		return nil, err
	}

	switch {
	case q.Limit < 0:
		return nil, invalidArgument("negative limit")
	case q.Limit == 0:
		q.Limit = DefaultReadingsLimit
	case q.Limit > MaxReadingsLimit:
		return nil, invalidArgument("limit above %d", MaxReadingsLimit)
	}

	if q.To.IsZero() {
		q.To = s.now().UTC()
	}
	if q.From.IsZero() {
		q.From = q.To.Add(-DefaultReadingsWindow)
	}
	if !q.From.Before(q.To) {
		return nil, invalidArgument("empty time range")
	}

	list, err := s.readings.List(ctx, hostID, q.From, q.To, q.Limit)
	if err != nil {
		return nil, serverError(ctx, s.logger, "list readings", err)
	}
	return list, nil
}

func (s *ReadingService) checkOwner(ctx context.Context, userID string, hostID int64) error {
	h, err := s.auth.AuthenticateHost(ctx, hostID)
	if err != nil {
		return err
	}
	if h.UserID != userID {
		return common.ErrHostNotFound
	}
	return nil
}
