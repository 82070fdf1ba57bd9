package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/commoni/commoni/internal/common"
	"github.com/commoni/commoni/internal/server/auth"
	"github.com/commoni/commoni/internal/server/models"
	"github.com/commoni/commoni/internal/server/revocation"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeUsers struct {
	users map[string]*models.User
	err   error
}

func (f *fakeUsers) Get(_ context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeHosts struct {
	hosts  map[int64]*models.Host
	nextID int64
	err    error

	createErr error
	updateErr error
	deleted   []int64
}

func (f *fakeHosts) Get(_ context.Context, id int64) (*models.Host, error) {
	if f.err != nil {
		return nil, f.err
	}
	h, ok := f.hosts[id]
	if !ok || h.Deleted {
		return nil, common.ErrorNotFound
	}
	cp := *h
	return &cp, nil
}

func (f *fakeHosts) Create(_ context.Context, h *models.Host) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	h.ID = f.nextID
	cp := *h
	f.hosts[h.ID] = &cp
	return nil
}

func (f *fakeHosts) Update(_ context.Context, h *models.Host) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	cur, ok := f.hosts[h.ID]
	if !ok || cur.Deleted {
		return common.ErrorNotFound
	}
	cp := *h
	f.hosts[h.ID] = &cp
	return nil
}

func (f *fakeHosts) ListByUser(_ context.Context, userID string) ([]*models.Host, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Host
	for id := int64(1); id <= f.nextID; id++ {
		if h, ok := f.hosts[id]; ok && !h.Deleted && h.UserID == userID {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeHosts) SoftDelete(_ context.Context, id int64) error {
	h, ok := f.hosts[id]
	if !ok || h.Deleted {
		return common.ErrorNotFound
	}
	h.Deleted = true
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeHosts) SoftDeleteByUser(_ context.Context, userID string) ([]int64, error) {
	var ids []int64
	for id, h := range f.hosts {
		if h.UserID == userID && !h.Deleted {
			h.Deleted = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// flakyStore fails the selected operations and otherwise delegates.
type flakyStore struct {
	revocation.Store
	failGet, failSet, failSetEx, failDelete bool
}

var errStoreDown = errors.Join(common.ErrStore, errors.New("connection refused"))

func (s *flakyStore) Get(ctx context.Context, key string) (string, error) {
	if s.failGet {
		return "", errStoreDown
	}
	return s.Store.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key, value string) error {
	if s.failSet {
		return errStoreDown
	}
	return s.Store.Set(ctx, key, value)
}

func (s *flakyStore) SetWithExpire(ctx context.Context, key, value string, ttl time.Duration) error {
	if s.failSetEx {
		return errStoreDown
	}
	return s.Store.SetWithExpire(ctx, key, value, ttl)
}

func (s *flakyStore) Delete(ctx context.Context, key string) error {
	if s.failDelete {
		return errStoreDown
	}
	return s.Store.Delete(ctx, key)
}

type authFixture struct {
	clock  *testClock
	users  *fakeUsers
	hosts  *fakeHosts
	store  *flakyStore
	mem    *revocation.MemoryStore
	issuer *auth.Issuer
	svc    *AuthService
}

func plainPassword(plain, hash string) bool { return "hash:"+plain == hash }

func newAuthFixture(t *testing.T, scope LogoutScope) *authFixture {
	t.Helper()
	clock := &testClock{now: t0}
	secret := []byte("service-secret")

	issuer, err := auth.NewIssuer(auth.IssuerConfig{Secret: secret, Now: clock.Now})
	require.NoError(t, err)
	verifier, err := auth.NewVerifier(auth.VerifierConfig{Secret: secret, Now: clock.Now})
	require.NoError(t, err)

	users := &fakeUsers{users: map[string]*models.User{
		"u1":   {ID: "u1", PasswordHash: "hash:pw1"},
		"u2":   {ID: "u2", PasswordHash: "hash:pw2"},
		"gone": {ID: "gone", PasswordHash: "hash:pw", Deleted: true},
	}}
	hosts := &fakeHosts{hosts: map[int64]*models.Host{
		5: {ID: 5, UserID: "u1", Name: "web-1"},
		6: {ID: 6, UserID: "u2", Name: "db-1"},
	}, nextID: 6}
	mem := revocation.NewMemoryStoreWithClock(clock.Now)
	store := &flakyStore{Store: mem}

	svc := NewAuthService(AuthDeps{
		Users:          users,
		Hosts:          hosts,
		Store:          store,
		Issuer:         issuer,
		Verifier:       verifier,
		VerifyPassword: plainPassword,
	}, AuthOptions{
		RenewBefore:  2 * 24 * time.Hour,
		LogoutScope:  scope,
		StoreTimeout: time.Second,
		Now:          clock.Now,
	})

	return &authFixture{clock: clock, users: users, hosts: hosts, store: store, mem: mem, issuer: issuer, svc: svc}
}

func requireServerError(t *testing.T, err error) {
	t.Helper()
	require.ErrorIs(t, err, common.ErrorInternal)
	var se *common.ServerError
	require.ErrorAs(t, err, &se)
	require.NotEmpty(t, se.Ref)
}
