package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/commoni/commoni/internal/logging"
	"github.com/commoni/commoni/internal/server/auth"
	"github.com/commoni/commoni/internal/server/config"
	"github.com/commoni/commoni/internal/server/repositories/repomanager"
	"github.com/commoni/commoni/internal/server/revocation"
	"github.com/commoni/commoni/internal/server/services"
	"github.com/redis/go-redis/v9"
)

// Components are the long-lived objects built from a Config. Both the
// server and the admin commands run on top of them.
type Components struct {
	DB    *sql.DB
	Redis *redis.Client
	Repos repomanager.RepositoryManager
	Store revocation.Store

	Issuer   *auth.Issuer
	Verifier *auth.Verifier

	Auth     *services.AuthService
	Users    *services.UserService
	Hosts    *services.HostService
	Readings *services.ReadingService
}

// Build connects to the database and the revocation store and wires the
// services. The caller owns the result and must Close it.
func Build(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Components, error) {
	db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	c, err := newComponents(cfg, db, repomanager.NewPostgresRepositoryManager(), logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
	}
	return c, nil
}

func newComponents(cfg *config.Config, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) (*Components, error) {
	if logger == nil {
		logger = logging.Nop{}
	}

	store, rdb, err := newStore(cfg, db, rm)
	if err != nil {
		return nil, err
	}

	secret := []byte(cfg.SecretKey)
	issuer, err := auth.NewIssuer(auth.IssuerConfig{
		Secret:     secret,
		Algorithm:  cfg.Algorithm,
		AccessTTL:  cfg.AccessTokenValidityDuration,
		RefreshTTL: cfg.RefreshTokenValidityDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	verifier, err := auth.NewVerifier(auth.VerifierConfig{Secret: secret, Algorithm: cfg.Algorithm})
	if err != nil {
		return nil, fmt.Errorf("token verifier: %w", err)
	}

	authService := services.NewAuthService(services.AuthDeps{
		Users:    rm.Users(db),
		Hosts:    rm.Hosts(db),
		Store:    store,
		Issuer:   issuer,
		Verifier: verifier,
		Logger:   logger,
	}, services.AuthOptions{
		RenewBefore:  cfg.RenewBeforeExpiration,
		LogoutScope:  services.LogoutScope(cfg.LogoutScope),
		StoreTimeout: cfg.StoreTimeout,
	})

	return &Components{
		DB:       db,
		Redis:    rdb,
		Repos:    rm,
		Store:    store,
		Issuer:   issuer,
		Verifier: verifier,
		Auth:     authService,
		Users:    services.NewUserService(db, rm, authService, logger),
		Hosts:    services.NewHostService(rm.Hosts(db), authService, logger),
		Readings: services.NewReadingService(rm.Readings(db), authService, logger, time.Now),
	}, nil
}

// newStore picks the revocation store backend. The redis client, when one
// is created, is returned so that it can be closed.
func newStore(cfg *config.Config, db *sql.DB, rm repomanager.RepositoryManager) (revocation.Store, *redis.Client, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		return revocation.NewMemoryStore(), nil, nil
	case config.StoreBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return revocation.NewRedisStore(rdb), rdb, nil
	case config.StoreBackendPostgres, "":
		return rm.Revocations(db), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// PurgeExpired drops expired rows from a table-backed store. Redis and the
// memory store expire keys on their own and report zero.
func (c *Components) PurgeExpired(ctx context.Context) (int64, error) {
	ps, ok := c.Store.(*revocation.PostgresStore)
	if !ok {
		return 0, nil
	}
	return ps.PurgeExpired(ctx)
}

func (c *Components) Close() error {
	var errs []error
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
