// Package projects persists owner-scoped projects.
package projects

import (
	"context"

	"github.com/dmitrijs2005/projectkeeper/internal/server/models"
)

// Repository is the project half of the credential store. It does not check
// ownership; callers do. Missing rows yield common.ErrorNotFound, an id
// collision on Create yields common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	FindByID(ctx context.Context, id string) (*models.Project, error)
	Update(ctx context.Context, id string, patch models.ProjectPatch) (*models.Project, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q models.ProjectQuery) ([]*models.Project, error)
	Count(ctx context.Context, userID string) (int, error)
}
