package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/projectkeeper/internal/common"
	"github.com/dmitrijs2005/projectkeeper/internal/server/models"
)

// InMemoryRepository keeps users in process memory. It enforces the same
// uniqueness rules as the Postgres schema.
type InMemoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]*models.User
	byUsername map[string]string
	byEmail    map[string]string
}

// NewInMemoryRepository returns an empty store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:       make(map[string]*models.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if _, ok := r.byUsername[user.UserName]; ok {
		return nil, common.ErrDuplicateUsername
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrDuplicateEmail
	}

	stored := *user
	stored.CreatedAt = time.Now().UTC()
	r.byID[stored.ID] = &stored
	r.byUsername[stored.UserName] = stored.ID
	r.byEmail[stored.Email] = stored.ID

	out := stored
	return &out, nil
}

func (r *InMemoryRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.byUsername, login)
}

func (r *InMemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.byEmail, email)
}

func (r *InMemoryRepository) GetUserByID(ctx context.Context, id string) (*models.PublicUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u.Public(), nil
}

func (r *InMemoryRepository) lookup(index map[string]string, key string) (*models.User, error) {
	id, ok := index[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *r.byID[id]
	return &out, nil
}
