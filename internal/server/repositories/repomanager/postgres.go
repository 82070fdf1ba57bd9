// Package repomanager provides the PostgreSQL RepositoryManager, wiring the
// repository constructors and the goose schema migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/commoni/commoni/internal/dbx"
	"github.com/commoni/commoni/internal/server/migrations"
	"github.com/commoni/commoni/internal/server/repositories/hosts"
	"github.com/commoni/commoni/internal/server/repositories/readings"
	"github.com/commoni/commoni/internal/server/repositories/users"
	"github.com/commoni/commoni/internal/server/revocation"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// DriverName is the database/sql driver registered by pgx.
const DriverName = "pgx"

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Hosts(db dbx.DBTX) hosts.Repository {
	return hosts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Readings(db dbx.DBTX) readings.Repository {
	return readings.NewPostgresRepository(db)
}

// Revocations returns the table-backed revocation store.
func (m *PostgresRepositoryManager) Revocations(db dbx.DBTX) *revocation.PostgresStore {
	return revocation.NewPostgresStore(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// Open connects to dsn through pgx and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}
