package repomanager

import (
	"context"
	"database/sql"

	"github.com/commoni/commoni/internal/dbx"
	"github.com/commoni/commoni/internal/server/repositories/hosts"
	"github.com/commoni/commoni/internal/server/repositories/readings"
	"github.com/commoni/commoni/internal/server/repositories/users"
	"github.com/commoni/commoni/internal/server/revocation"
)

// RepositoryManager vends repositories bound to a pool or a transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Hosts(db dbx.DBTX) hosts.Repository
	Readings(db dbx.DBTX) readings.Repository
	Revocations(db dbx.DBTX) *revocation.PostgresStore
}
