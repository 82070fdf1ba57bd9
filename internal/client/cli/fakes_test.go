package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/commoni/commoni/internal/api"
	"github.com/commoni/commoni/internal/client/client"
	"github.com/commoni/commoni/internal/client/config"
	srvconfig "github.com/commoni/commoni/internal/server/config"
	"github.com/commoni/commoni/internal/server/models"
	"github.com/commoni/commoni/internal/server/services"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeAdmin struct {
	cfg *srvconfig.Config

	created  []string
	password string
	deleted  []string
	revoked  []int64
	user     *models.User
	updated  map[string]services.UserUpdate
	purged   int64
	err      error
	closed   bool
}

func (f *fakeAdmin) CreateUser(_ context.Context, id, _, password string) error {
	f.created = append(f.created, id)
	f.password = password
	return f.err
}

func (f *fakeAdmin) GetUser(_ context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeAdmin) UpdateUser(_ context.Context, id string, upd services.UserUpdate) error {
	if f.updated == nil {
		f.updated = map[string]services.UserUpdate{}
	}
	f.updated[id] = upd
	return f.err
}

func (f *fakeAdmin) DeleteUser(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeAdmin) RevokeAgent(_ context.Context, _ string, hostID int64) error {
	f.revoked = append(f.revoked, hostID)
	return f.err
}

func (f *fakeAdmin) PurgeRevocations(context.Context) (int64, error) {
	return f.purged, f.err
}

func (f *fakeAdmin) Close() error {
	f.closed = true
	return nil
}

// fakeRemote mimics GRPCClient token handling without a network.
type fakeRemote struct {
	addr   string
	tokens client.Tokens

	loginErr  error
	err       error
	rotateTo  string
	hosts     []api.Host
	readings  []api.Reading
	listReq   *api.ListReadingsRequest
	pushed    *api.PushReadingRequest
	pushToken string
	deleted   int64
	closed    bool

	host       *api.Host
	hostUpdate *api.UpdateHostRequest
	latest     *api.Reading
	user       *api.User
	userUpdate *api.UpdateUserRequest
}

func (f *fakeRemote) Close() error {
	f.closed = true
	return nil
}

func (f *fakeRemote) Login(_ context.Context, userID, password string) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.tokens.AccessToken = "access-" + userID
	f.tokens.RefreshToken = "refresh-" + userID
	return nil
}

func (f *fakeRemote) Refresh(context.Context) error { return nil }

func (f *fakeRemote) Logout(context.Context) error {
	f.tokens.AccessToken, f.tokens.RefreshToken = "", ""
	return f.err
}

func (f *fakeRemote) RegisterHost(_ context.Context, req *api.RegisterHostRequest) (*api.RegisterHostResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &api.RegisterHostResponse{
		Host:       api.Host{ID: 6, Name: req.Name},
		AgentToken: "agent-6",
		TokenType:  "AGENT",
	}, nil
}

func (f *fakeRemote) ListHosts(context.Context) ([]api.Host, error) {
	// a renewal on the way rotates the session
	if f.rotateTo != "" {
		f.tokens.AccessToken = f.rotateTo
	}
	return f.hosts, f.err
}

func (f *fakeRemote) GetHost(_ context.Context, hostID int64) (*api.Host, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.host, nil
}

func (f *fakeRemote) UpdateHost(_ context.Context, req *api.UpdateHostRequest) (*api.Host, error) {
	f.hostUpdate = req
	if f.err != nil {
		return nil, f.err
	}
	return f.host, nil
}

func (f *fakeRemote) DeleteHost(_ context.Context, hostID int64) error {
	f.deleted = hostID
	return f.err
}

func (f *fakeRemote) PushReading(_ context.Context, req *api.PushReadingRequest) (int64, error) {
	f.pushed = req
	f.pushToken = f.tokens.AgentToken
	return 41, f.err
}

func (f *fakeRemote) ListReadings(_ context.Context, req *api.ListReadingsRequest) ([]api.Reading, error) {
	f.listReq = req
	return f.readings, f.err
}

func (f *fakeRemote) LatestReading(context.Context, int64) (*api.Reading, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.latest, nil
}

func (f *fakeRemote) GetUser(context.Context) (*api.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeRemote) UpdateUser(_ context.Context, req *api.UpdateUserRequest) (*api.User, error) {
	f.userUpdate = req
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeRemote) Ping(context.Context) error { return f.err }

func (f *fakeRemote) Tokens() client.Tokens      { return f.tokens }
func (f *fakeRemote) SetTokens(t client.Tokens)  { f.tokens = t }
func (f *fakeRemote) SetAgentToken(token string) { f.tokens.AgentToken = token }

type harness struct {
	app       *App
	out       *bytes.Buffer
	admin     *fakeAdmin
	remote    *fakeRemote
	tokenFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		out:       &bytes.Buffer{},
		admin:     &fakeAdmin{},
		remote:    &fakeRemote{},
		tokenFile: filepath.Join(t.TempDir(), "tokens.json"),
	}
	h.app = NewApp(h.out)
	h.app.now = func() time.Time { return t0 }
	h.app.openAdmin = func(_ context.Context, cfg *srvconfig.Config) (Admin, error) {
		h.admin.cfg = cfg
		return h.admin, nil
	}
	h.app.dial = func(cfg *config.Config) (Remote, error) {
		h.remote.addr = cfg.ServerEndpointAddr
		return h.remote, nil
	}
	return h
}

// run executes commonictl with args; remote commands get the harness
// token file.
func (h *harness) run(args ...string) error {
	h.out.Reset()
	cmd := h.app.RootCmd()
	cmd.SetArgs(append(args, "--token-file", h.tokenFile))
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(context.Background())
}
