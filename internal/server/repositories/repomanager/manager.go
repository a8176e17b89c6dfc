// Package repomanager vends the repositories that make up the credential
// store and exposes a schema migration hook.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/projectkeeper/internal/dbx"
	"github.com/dmitrijs2005/projectkeeper/internal/server/repositories/projects"
	"github.com/dmitrijs2005/projectkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Projects(db dbx.DBTX) projects.Repository
}
