package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/commoni/commoni/internal/common"
	"github.com/commoni/commoni/internal/server/auth"
	"github.com/commoni/commoni/internal/server/models"
	"github.com/commoni/commoni/internal/server/services"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("grpc-test-secret")

func newIssuer(t *testing.T) *auth.Issuer {
	t.Helper()
	i, err := auth.NewIssuer(auth.IssuerConfig{Secret: testSecret})
	require.NoError(t, err)
	return i
}

func newVerifier(t *testing.T) *auth.Verifier {
	t.Helper()
	v, err := auth.NewVerifier(auth.VerifierConfig{Secret: testSecret})
	require.NoError(t, err)
	return v
}

// fakeAuth verifies signatures and types for real and returns canned
// results for everything stateful.
type fakeAuth struct {
	verifier *auth.Verifier

	loginResp *services.TokenSet
	loginErr  error
	renewResp *services.TokenSet
	renewErr  error
	removeErr error
	verifyErr error

	removed []string
}

func (f *fakeAuth) Login(context.Context, string, string) (*services.TokenSet, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuth) RenewToken(context.Context, string) (*services.TokenSet, error) {
	return f.renewResp, f.renewErr
}

func (f *fakeAuth) RemoveToken(_ context.Context, token string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, token)
	return nil
}

func (f *fakeAuth) verify(token string, kind auth.TokenType) (*auth.ParsedToken, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	p, err := f.verifier.Parse(token)
	if err != nil {
		return nil, err
	}
	if err := p.RequireType(kind); err != nil {
		return nil, err
	}
	return p, nil
}

func (f *fakeAuth) VerifyAccessToken(_ context.Context, token string) (*auth.ParsedToken, error) {
	return f.verify(token, auth.TokenTypeAccess)
}

func (f *fakeAuth) VerifyAgentToken(_ context.Context, token string) (*auth.ParsedToken, error) {
	return f.verify(token, auth.TokenTypeAgent)
}

type fakeHostManager struct {
	registered *models.Host
	agent      *services.AgentToken
	list       []*models.Host
	err        error

	gotUser   string
	gotInfo   services.HostInfo
	gotHost   int64
	gotUpdate services.HostUpdate
}

func (f *fakeHostManager) RegisterHost(_ context.Context, userID string, info services.HostInfo) (*models.Host, *services.AgentToken, error) {
	f.gotUser, f.gotInfo = userID, info
	return f.registered, f.agent, f.err
}

func (f *fakeHostManager) ListHosts(_ context.Context, userID string) ([]*models.Host, error) {
	f.gotUser = userID
	return f.list, f.err
}

func (f *fakeHostManager) GetHost(_ context.Context, userID string, hostID int64) (*models.Host, error) {
	f.gotUser, f.gotHost = userID, hostID
	return f.registered, f.err
}

func (f *fakeHostManager) UpdateHost(_ context.Context, userID string, hostID int64, upd services.HostUpdate) (*models.Host, error) {
	f.gotUser, f.gotHost, f.gotUpdate = userID, hostID, upd
	return f.registered, f.err
}

func (f *fakeHostManager) DeleteHost(_ context.Context, userID string, hostID int64) error {
	f.gotUser, f.gotHost = userID, hostID
	return f.err
}

type fakeReadings struct {
	pushed  *models.Reading
	list    []*models.Reading
	err     error
	gotHost int64
	gotUser string
	sample  services.Sample
	query   services.ReadingQuery
}

func (f *fakeReadings) Push(_ context.Context, hostID int64, s services.Sample) (*models.Reading, error) {
	f.gotHost, f.sample = hostID, s
	return f.pushed, f.err
}

func (f *fakeReadings) List(_ context.Context, userID string, hostID int64, q services.ReadingQuery) ([]*models.Reading, error) {
	f.gotUser, f.gotHost, f.query = userID, hostID, q
	return f.list, f.err
}

func (f *fakeReadings) Latest(_ context.Context, userID string, hostID int64) (*models.Reading, error) {
	f.gotUser, f.gotHost = userID, hostID
	return f.pushed, f.err
}

type fakeUsers struct {
	user *models.User
	err  error

	gotID     string
	gotUpdate services.UserUpdate
}

func (f *fakeUsers) Get(_ context.Context, id string) (*models.User, error) {
	f.gotID = id
	return f.user, f.err
}

func (f *fakeUsers) Update(_ context.Context, id string, upd services.UserUpdate) (*models.User, error) {
	f.gotID, f.gotUpdate = id, upd
	return f.user, f.err
}

type fixture struct {
	issuer   *auth.Issuer
	auth     *fakeAuth
	hosts    *fakeHostManager
	readings *fakeReadings
	users    *fakeUsers
	srv      *GRPCServer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		issuer:   newIssuer(t),
		auth:     &fakeAuth{verifier: newVerifier(t)},
		hosts:    &fakeHostManager{},
		readings: &fakeReadings{},
		users:    &fakeUsers{},
	}
	f.srv = NewGRPCServer("127.0.0.1:0", nil, f.auth, f.hosts, f.readings, f.users)
	return f
}

func (f *fixture) token(t *testing.T, kind auth.TokenType, userID string, opts ...auth.IssueOption) string {
	t.Helper()
	tok, err := f.issuer.Issue(kind, userID, opts...)
	require.NoError(t, err)
	return tok
}

// withToken returns a context as the interceptor would leave it.
func (f *fixture) withToken(t *testing.T, kind auth.TokenType, userID string, opts ...auth.IssueOption) context.Context {
	t.Helper()
	p, err := f.auth.verifier.Parse(f.token(t, kind, userID, opts...))
	require.NoError(t, err)
	return context.WithValue(context.Background(), tokenKey, p)
}

var errInternal = common.NewServerError("test", errors.New("disk full"))
