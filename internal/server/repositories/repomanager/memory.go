package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/projectkeeper/internal/dbx"
	"github.com/dmitrijs2005/projectkeeper/internal/server/repositories/projects"
	"github.com/dmitrijs2005/projectkeeper/internal/server/repositories/users"
)

// InMemoryRepositoryManager vends process-local repositories. The DBTX
// arguments are ignored and every call returns the same instances, so data
// lives as long as the manager.
type InMemoryRepositoryManager struct {
	users    *users.InMemoryRepository
	projects *projects.InMemoryRepository
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return &InMemoryRepositoryManager{
		users:    users.NewInMemoryRepository(),
		projects: projects.NewInMemoryRepository(),
	}
}

// RunMigrations is a no-op; there is no schema.
func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Projects(dbx.DBTX) projects.Repository {
	return m.projects
}
