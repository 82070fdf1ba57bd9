package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/commoni/commoni/internal/common"
	"github.com/commoni/commoni/internal/cryptox"
	"github.com/commoni/commoni/internal/dbx"
	"github.com/commoni/commoni/internal/logging"
	"github.com/commoni/commoni/internal/server/models"
	"github.com/commoni/commoni/internal/server/repositories/repomanager"
)

// UserUpdate lists the account fields to change; nil fields keep their
// value.
type UserUpdate struct {
	Name     *string
	Password *string
}

// UserService administers accounts.
type UserService struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	auth   *AuthService
	logger logging.Logger

	hashPassword func(string) (string, error)
}

func NewUserService(db *sql.DB, rm repomanager.RepositoryManager, auth *AuthService, logger logging.Logger) *UserService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &UserService{
		db:           db,
		rm:           rm,
		auth:         auth,
		logger:       logger.With("module", "user_service"),
		hashPassword: cryptox.HashPassword,
	}
}

// Create stores a new account with a bcrypt hash of password.
func (s *UserService) Create(ctx context.Context, id, name, password string) (*models.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, invalidArgument("user id is required")
	}
	if password == "" {
		return nil, invalidArgument("password is required")
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, serverError(ctx, s.logger, "hash password", err)
	}

	u := &models.User{ID: id, Name: name, PasswordHash: hash}
	if err := s.rm.Users(s.db).Create(ctx, u); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, serverError(ctx, s.logger, "create user", err)
	}

	s.logger.Info(ctx, "user created", "user_id", id)
	return u, nil
}

// Get returns the account with id, deleted or not; Deleted is its status.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.rm.Users(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, serverError(ctx, s.logger, "get user", err)
	}
	return u, nil
}

// Update changes the name or password of a live account. A new password
// revokes the refresh token, so existing sessions end with their access
// token.
func (s *UserService) Update(ctx context.Context, id string, upd UserUpdate) (*models.User, error) {
	if upd.Password != nil && *upd.Password == "" {
		return nil, invalidArgument("password is required")
	}

	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Deleted {
		return nil, common.ErrUserNotFound
	}

	if upd.Name != nil {
		u.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Password != nil {
		hash, err := s.hashPassword(*upd.Password)
		if err != nil {
			return nil, serverError(ctx, s.logger, "hash password", err)
		}
		u.PasswordHash = hash
	}

	if err := s.rm.Users(s.db).Update(ctx, u); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, serverError(ctx, s.logger, "update user", err)
	}
	if upd.Password != nil {
		if err := s.auth.RevokeRefreshToken(ctx, id); err != nil {
			return nil, err
		}
	}

	s.logger.Info(ctx, "user updated", "user_id", id, "password_changed", upd.Password != nil)
	return u, nil
}

// Delete soft-deletes the account and all of its hosts in one transaction,
// then revokes the refresh token and every agent token of the user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	var hostIDs []int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.Users(tx).SoftDelete(ctx, id); err != nil {
			return err
		}
		ids, err := s.rm.Hosts(tx).SoftDeleteByUser(ctx, id)
		if err != nil {
			return err
		}
		hostIDs = ids
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return serverError(ctx, s.logger, "delete user", err)
	}

	if err := s.auth.RevokeRefreshToken(ctx, id); err != nil {
		return err
	}
	for _, hostID := range hostIDs {
		if err := s.auth.RevokeAgentToken(ctx, id, hostID); err != nil {
			return err
		}
	}

	s.logger.Info(ctx, "user deleted", "user_id", id, "hosts", len(hostIDs))
	return nil
}
