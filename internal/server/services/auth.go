package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commoni/commoni/internal/common"
	"github.com/commoni/commoni/internal/cryptox"
	"github.com/commoni/commoni/internal/logging"
	"github.com/commoni/commoni/internal/server/auth"
	"github.com/commoni/commoni/internal/server/models"
	"github.com/commoni/commoni/internal/server/revocation"
)

// DefaultRenewBefore is how long before expiry a refresh token is rotated.
const DefaultRenewBefore = 2 * 24 * time.Hour

// LogoutScope selects what a logout marker invalidates.
type LogoutScope string

const (
	// LogoutScopeSession rejects the logged-out access token and every
	// access token of the user issued no later than it. Tokens from a
	// login after the logout stay valid.
	LogoutScopeSession LogoutScope = "session"
	// LogoutScopeToken rejects only the access token that was logged out.
	// A later logout replaces the marker.
	LogoutScopeToken LogoutScope = "token"
)

// UserDirectory looks up accounts; a missing user is common.ErrorNotFound.
type UserDirectory interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// HostDirectory looks up live hosts; a missing host is common.ErrorNotFound.
type HostDirectory interface {
	Get(ctx context.Context, id int64) (*models.Host, error)
}

// TokenSet is the result of a login or a renewal. RefreshToken is empty
// when a renewal kept the current refresh token.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
}

type AgentToken struct {
	Value string
	Type  auth.TokenType
}

type AuthDeps struct {
	Users    UserDirectory
	Hosts    HostDirectory
	Store    revocation.Store
	Issuer   *auth.Issuer
	Verifier *auth.Verifier
	Logger   logging.Logger

	// VerifyPassword defaults to cryptox.VerifyPassword.
	VerifyPassword func(plain, hash string) bool
}

type AuthOptions struct {
	RenewBefore  time.Duration
	LogoutScope  LogoutScope
	StoreTimeout time.Duration
	Now          func() time.Time
}

// AuthService orchestrates issuance, renewal, logout and verification of
// tokens. All cross-request state lives in the revocation store.
type AuthService struct {
	users          UserDirectory
	hosts          HostDirectory
	store          revocation.Store
	issuer         *auth.Issuer
	verifier       *auth.Verifier
	verifyPassword func(plain, hash string) bool
	logger         logging.Logger

	renewBefore  time.Duration
	logoutScope  LogoutScope
	storeTimeout time.Duration
	now          func() time.Time
}

func NewAuthService(deps AuthDeps, opts AuthOptions) *AuthService {
	s := &AuthService{
		users:          deps.Users,
		hosts:          deps.Hosts,
		store:          deps.Store,
		issuer:         deps.Issuer,
		verifier:       deps.Verifier,
		verifyPassword: deps.VerifyPassword,
		logger:         deps.Logger,
		renewBefore:    opts.RenewBefore,
		logoutScope:    opts.LogoutScope,
		storeTimeout:   opts.StoreTimeout,
		now:            opts.Now,
	}
	if s.verifyPassword == nil {
		s.verifyPassword = cryptox.VerifyPassword
	}
	if s.logger == nil {
		s.logger = logging.Nop{}
	}
	s.logger = s.logger.With("module", "auth_service")
	if s.renewBefore <= 0 {
		s.renewBefore = DefaultRenewBefore
	}
	if s.logoutScope == "" {
		s.logoutScope = LogoutScopeSession
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Authenticate checks the credentials of userID. A missing account is
// common.ErrUserNotFound; a deleted account or a wrong password is
// common.ErrorUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, userID, password string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return serverError(ctx, s.logger, "authenticate", err)
	}
	if u.Deleted {
		s.logger.Warn(ctx, "authentication rejected", "user_id", userID, "reason", "deleted")
		return unauthorized("account deleted")
	}
	if !s.verifyPassword(password, u.PasswordHash) {
		s.logger.Warn(ctx, "authentication rejected", "user_id", userID, "reason", "password")
		return unauthorized("credential mismatch")
	}
	return nil
}

// Login authenticates userID and issues a fresh token set.
func (s *AuthService) Login(ctx context.Context, userID, password string) (*TokenSet, error) {
	if err := s.Authenticate(ctx, userID, password); err != nil {
		return nil, err
	}
	return s.CreateTokenSet(ctx, userID)
}

// CreateTokenSet issues an access and a refresh token and registers the
// refresh token, superseding any previous one of the user. Nothing is
// returned unless the registration succeeded.
func (s *AuthService) CreateTokenSet(ctx context.Context, userID string) (*TokenSet, error) {
	access, err := s.issuer.Issue(auth.TokenTypeAccess, userID)
	if err != nil {
		return nil, serverError(ctx, s.logger, "issue access token", err)
	}
	refresh, err := s.issuer.Issue(auth.TokenTypeRefresh, userID)
	if err != nil {
		return nil, serverError(ctx, s.logger, "issue refresh token", err)
	}

	if err := s.storeSet(ctx, revocation.RefreshKey(userID), refresh); err != nil {
		return nil, serverError(ctx, s.logger, "register refresh token", err)
	}

	s.logger.Info(ctx, "token set issued", "user_id", userID)
	return &TokenSet{AccessToken: access, RefreshToken: refresh}, nil
}

// CreateAgentToken issues the perpetual agent token of a user and host
// pair and registers it, superseding any previous one. The host must have
// been checked with AuthenticateHost.
func (s *AuthService) CreateAgentToken(ctx context.Context, userID string, hostID int64) (*AgentToken, error) {
	tok, err := s.issuer.Issue(auth.TokenTypeAgent, userID, auth.WithHostID(hostID))
	if err != nil {
		return nil, serverError(ctx, s.logger, "issue agent token", err)
	}
	if err := s.storeSet(ctx, revocation.AgentKey(userID, hostID), tok); err != nil {
		return nil, serverError(ctx, s.logger, "register agent token", err)
	}

	s.logger.Info(ctx, "agent token issued", "user_id", userID, "host_id", hostID)
	return &AgentToken{Value: tok, Type: auth.TokenTypeAgent}, nil
}

// AuthenticateHost returns the live host with hostID, or
// common.ErrHostNotFound.
func (s *AuthService) AuthenticateHost(ctx context.Context, hostID int64) (*models.Host, error) {
	h, err := s.hosts.Get(ctx, hostID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrHostNotFound
		}
		return nil, serverError(ctx, s.logger, "authenticate host", err)
	}
	return h, nil
}

// RenewToken exchanges a registered refresh token for a new access token.
// When the refresh token expires within the renewal window a new refresh
// token is issued and registered as well; otherwise the RefreshToken slot
// of the result is empty. Every rejection is common.ErrorUnauthorized.
func (s *AuthService) RenewToken(ctx context.Context, refreshToken string) (*TokenSet, error) {
	parsed, err := s.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, unauthorizedErr(err)
		}
		return nil, err
	}
	userID := parsed.UserID()

	set := &TokenSet{}
	if parsed.IsExpired(s.now().Add(s.renewBefore)) {
		refresh, err := s.issuer.Issue(auth.TokenTypeRefresh, userID)
		if err != nil {
			return nil, serverError(ctx, s.logger, "issue refresh token", err)
		}
		if err := s.storeSet(ctx, revocation.RefreshKey(userID), refresh); err != nil {
			return nil, serverError(ctx, s.logger, "rotate refresh token", err)
		}
		set.RefreshToken = refresh
		s.logger.Info(ctx, "refresh token rotated", "user_id", userID)
	}

	set.AccessToken, err = s.issuer.Issue(auth.TokenTypeAccess, userID)
	if err != nil {
		return nil, serverError(ctx, s.logger, "issue access token", err)
	}
	return set, nil
}

// RemoveToken logs out the owner of accessToken: the refresh token is
// unregistered and a logout marker lives for one access token TTL.
func (s *AuthService) RemoveToken(ctx context.Context, accessToken string) error {
	parsed, err := s.parseAs(accessToken, auth.TokenTypeAccess)
	if err != nil {
		return err
	}
	userID := parsed.UserID()

	if err := s.storeDelete(ctx, revocation.RefreshKey(userID)); err != nil {
		return serverError(ctx, s.logger, "unregister refresh token", err)
	}

	if s.logoutScope == LogoutScopeSession {
		// an older token must not narrow the marker already in place
		marker, err := s.storeGet(ctx, revocation.LogoutKey(userID))
		switch {
		case errors.Is(err, common.ErrorNotFound):
		case err != nil:
			return serverError(ctx, s.logger, "read logout marker", err)
		case s.coveredByMarker(parsed, marker):
			s.logger.Info(ctx, "logged out", "user_id", userID, "marker", "kept")
			return nil
		}
	}
	if err := s.storeSetWithExpire(ctx, revocation.LogoutKey(userID), parsed.Raw(), s.issuer.AccessTTL()); err != nil {
		return serverError(ctx, s.logger, "write logout marker", err)
	}

	s.logger.Info(ctx, "logged out", "user_id", userID)
	return nil
}

// VerifyAccessToken gates API calls made with an access token.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*auth.ParsedToken, error) {
	parsed, err := s.parseAs(token, auth.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	if err := s.checkUser(ctx, parsed.UserID()); err != nil {
		return nil, err
	}

	marker, err := s.storeGet(ctx, revocation.LogoutKey(parsed.UserID()))
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return parsed, nil
	case err != nil:
		return nil, serverError(ctx, s.logger, "read logout marker", err)
	}
	if marker == parsed.Raw() || (s.logoutScope == LogoutScopeSession && s.coveredByMarker(parsed, marker)) {
		return nil, unauthorized("logged out")
	}
	return parsed, nil
}

// coveredByMarker reports whether tok was issued no later than the
// logged-out access token in marker. A marker that no longer parses has
// expired, and so has every token issued before it.
func (s *AuthService) coveredByMarker(tok *auth.ParsedToken, marker string) bool {
	if marker == tok.Raw() {
		return true
	}
	m, err := s.verifier.Parse(marker)
	if err != nil {
		return false
	}
	markerIssued, ok := m.IssuedAt()
	if !ok {
		return false
	}
	issued, ok := tok.IssuedAt()
	if !ok {
		return true
	}
	return !issued.After(markerIssued)
}

// VerifyRefreshToken accepts only the refresh token currently registered
// for its user.
func (s *AuthService) VerifyRefreshToken(ctx context.Context, token string) (*auth.ParsedToken, error) {
	parsed, err := s.parseAs(token, auth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.checkUser(ctx, parsed.UserID()); err != nil {
		return nil, err
	}
	if err := s.checkRegistered(ctx, revocation.RefreshKey(parsed.UserID()), parsed.Raw()); err != nil {
		return nil, err
	}
	return parsed, nil
}

// VerifyAgentToken accepts only the agent token currently registered for
// its user and host, and only while the host exists and belongs to that
// user.
func (s *AuthService) VerifyAgentToken(ctx context.Context, token string) (*auth.ParsedToken, error) {
	parsed, err := s.parseAs(token, auth.TokenTypeAgent)
	if err != nil {
		return nil, err
	}
	hostID, ok := parsed.HostID()
	if !ok {
		return nil, unauthorized("agent token without host")
	}

	host, err := s.AuthenticateHost(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if host.UserID != parsed.UserID() {
		return nil, unauthorized("host owned by another user")
	}
	if err := s.checkRegistered(ctx, revocation.AgentKey(parsed.UserID(), hostID), parsed.Raw()); err != nil {
		return nil, err
	}
	return parsed, nil
}

// RevokeAgentToken unregisters the agent token of a user and host pair.
func (s *AuthService) RevokeAgentToken(ctx context.Context, userID string, hostID int64) error {
	if err := s.storeDelete(ctx, revocation.AgentKey(userID, hostID)); err != nil {
		return serverError(ctx, s.logger, "revoke agent token", err)
	}
	s.logger.Info(ctx, "agent token revoked", "user_id", userID, "host_id", hostID)
	return nil
}

// RevokeRefreshToken unregisters the refresh token of a user.
func (s *AuthService) RevokeRefreshToken(ctx context.Context, userID string) error {
	if err := s.storeDelete(ctx, revocation.RefreshKey(userID)); err != nil {
		return serverError(ctx, s.logger, "revoke refresh token", err)
	}
	return nil
}

func (s *AuthService) parseAs(token string, kind auth.TokenType) (*auth.ParsedToken, error) {
	parsed, err := s.verifier.Parse(token)
	if err != nil {
		return nil, unauthorizedErr(err)
	}
	if err := parsed.RequireType(kind); err != nil {
		return nil, unauthorizedErr(err)
	}
	return parsed, nil
}

func (s *AuthService) checkUser(ctx context.Context, userID string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return serverError(ctx, s.logger, "look up user", err)
	}
	if u.Deleted {
		return unauthorized("account deleted")
	}
	return nil
}

func (s *AuthService) checkRegistered(ctx context.Context, key, raw string) error {
	current, err := s.storeGet(ctx, key)
	if errors.Is(err, common.ErrorNotFound) {
		return unauthorized("not a registered token")
	}
	if err != nil {
		return serverError(ctx, s.logger, "read "+key, err)
	}
	if current != raw {
		return unauthorized("superseded token")
	}
	return nil
}

func (s *AuthService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *AuthService) storeGet(ctx context.Context, key string) (string, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.store.Get(ctx, key)
}

func (s *AuthService) storeSet(ctx context.Context, key, value string) error {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.store.Set(ctx, key, value)
}

func (s *AuthService) storeSetWithExpire(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.store.SetWithExpire(ctx, key, value, ttl); err != nil {
		return fmt.Errorf("ttl %s: %w", ttl, err)
	}
	return nil
}

func (s *AuthService) storeDelete(ctx context.Context, key string) error {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.store.Delete(ctx, key)
}
