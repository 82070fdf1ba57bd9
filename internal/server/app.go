// Package server wires configuration, storage and services together and
// runs the gRPC endpoint until the process is told to stop.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/commoni/commoni/internal/logging"
	"github.com/commoni/commoni/internal/server/config"

	gs "github.com/commoni/commoni/internal/server/grpc"
)

const purgeInterval = time.Hour

type App struct {
	config     *config.Config
	logger     logging.Logger
	logCloser  io.Closer
	components *Components
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, logCloser, err := logging.New(logging.Options{
		Backend: c.LogBackend,
		Level:   c.LogLevel,
		Format:  c.LogFormat,
		File:    c.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	components, err := Build(ctx, c, logger)
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}

	if err := components.Repos.RunMigrations(ctx, components.DB); err != nil {
		_ = components.Close()
		_ = logCloser.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &App{config: c, logger: logger, logCloser: logCloser, components: components}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	c := app.components
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, c.Auth, c.Hosts, c.Readings, c.Users)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeRevocations drops expired revocation rows until ctx is done.
func (app *App) purgeRevocations(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.components.PurgeExpired(ctx)
			if err != nil {
				app.logger.Warn(ctx, "purge expired revocations", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Debug(ctx, "purged expired revocations", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreBackend, "logout_scope", app.config.LogoutScope)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeRevocations(ctx, purgeInterval)
	}()

	wg.Wait()

	if err := app.components.Close(); err != nil {
		app.logger.Error(ctx, "close resources", "error", err)
	}
	app.logger.Info(ctx, "Stopped")

	if err := app.logCloser.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
	}
}
