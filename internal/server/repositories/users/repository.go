// Package users persists user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/projectkeeper/internal/server/models"
)

// Repository is the user half of the credential store. Lookups return
// common.ErrorNotFound when nothing matches; Create returns
// common.ErrDuplicateUsername or common.ErrDuplicateEmail on uniqueness
// violations and common.ErrorAlreadyExists on an id collision.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.PublicUser, error)
}
