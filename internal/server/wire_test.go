package server

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/commoni/commoni/internal/server/auth"
	"github.com/commoni/commoni/internal/server/config"
	"github.com/commoni/commoni/internal/server/repositories/repomanager"
	"github.com/commoni/commoni/internal/server/revocation"
	"github.com/commoni/commoni/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(backend string) *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StoreBackend = backend
	return cfg
}

func TestNewStore(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	rm := repomanager.NewPostgresRepositoryManager()

	t.Run("memory", func(t *testing.T) {
		s, rdb, err := newStore(testConfig(config.StoreBackendMemory), db, rm)
		require.NoError(t, err)
		assert.IsType(t, &revocation.MemoryStore{}, s)
		assert.Nil(t, rdb)
	})

	t.Run("postgres", func(t *testing.T) {
		s, rdb, err := newStore(testConfig(config.StoreBackendPostgres), db, rm)
		require.NoError(t, err)
		assert.IsType(t, &revocation.PostgresStore{}, s)
		assert.Nil(t, rdb)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig(config.StoreBackendRedis)
		cfg.RedisAddr = mr.Addr()

		s, rdb, err := newStore(cfg, db, rm)
		require.NoError(t, err)
		require.NotNil(t, rdb)
		defer rdb.Close()
		assert.IsType(t, &revocation.RedisStore{}, s)

		require.NoError(t, s.Set(context.Background(), revocation.RefreshKey("u1"), "tok"))
		got, err := mr.Get(revocation.RefreshKey("u1"))
		require.NoError(t, err)
		assert.Equal(t, "tok", got)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := newStore(testConfig("etcd"), db, rm)
		require.ErrorContains(t, err, "unknown store backend")
	})
}

func TestNewComponents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	c, err := newComponents(testConfig(config.StoreBackendMemory), db, repomanager.NewPostgresRepositoryManager(), nil)
	require.NoError(t, err)

	assert.NotNil(t, c.Auth)
	assert.NotNil(t, c.Users)
	assert.NotNil(t, c.Hosts)
	assert.NotNil(t, c.Readings)

	// issuer and verifier share the configured secret
	raw, err := c.Issuer.Issue(auth.TokenTypeRefresh, "u1")
	require.NoError(t, err)
	tok, err := c.Verifier.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", tok.UserID())

	n, err := c.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "memory store expires on its own")

	mock.ExpectClose()
	require.NoError(t, c.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewComponents_BadAlgorithm(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := testConfig(config.StoreBackendMemory)
	cfg.Algorithm = "none"
	_, err = newComponents(cfg, db, repomanager.NewPostgresRepositoryManager(), nil)
	require.ErrorContains(t, err, "token issuer")
}

func TestPurgeExpired_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	c, err := newComponents(testConfig(config.StoreBackendPostgres), db, repomanager.NewPostgresRepositoryManager(), nil)
	require.NoError(t, err)

	mock.ExpectExec(`^DELETE\s+FROM\s+revocations\s+WHERE\s+expires_at`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := c.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	c, err := newComponents(testConfig(config.StoreBackendMemory), db, repomanager.NewPostgresRepositoryManager(), nil)
	require.NoError(t, err)
	a := NewAdmin(c)
	ctx := context.Background()

	require.NoError(t, c.Store.Set(ctx, revocation.AgentKey("u1", 7), "agent"))
	require.NoError(t, a.RevokeAgent(ctx, "u1", 7))
	_, err = c.Store.Get(ctx, revocation.AgentKey("u1", 7))
	require.Error(t, err, "agent token is revoked")

	n, err := a.PurgeRevocations(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.ErrorContains(t, a.CreateUser(ctx, " ", "nobody", "pw"), "create user")

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`^SELECT\s+id,\s*name`).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "password_hash", "deleted", "created_at"}).
			AddRow("alice", "Alice", "h", true, created))
	u, err := a.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, u.Deleted)

	empty := ""
	require.ErrorContains(t, a.UpdateUser(ctx, "alice", services.UserUpdate{Password: &empty}), "update user alice")

	mock.ExpectClose()
	require.NoError(t, a.Close())
}
