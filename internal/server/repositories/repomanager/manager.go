package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/wordmaster/internal/dbx"
	"github.com/dmitrijs2005/wordmaster/internal/server/repositories/snapshots"
	"github.com/dmitrijs2005/wordmaster/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, so the same
// service code runs against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Snapshots(db dbx.DBTX) snapshots.Repository
}
