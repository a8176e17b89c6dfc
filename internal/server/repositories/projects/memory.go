package projects

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/projectkeeper/internal/common"
	"github.com/dmitrijs2005/projectkeeper/internal/server/models"
)

// InMemoryRepository keeps projects in process memory.
type InMemoryRepository struct {
	mu       sync.RWMutex
	projects map[string]*models.Project
	now      func() time.Time
}

// NewInMemoryRepository returns an empty store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		projects: make(map[string]*models.Project),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[project.ID]; ok {
		return nil, common.ErrorAlreadyExists
	}

	stored := clone(project)
	if stored.Components == nil {
		stored.Components = []json.RawMessage{}
	}
	stored.CreatedAt = r.now()
	stored.UpdatedAt = stored.CreatedAt
	r.projects[stored.ID] = stored

	return clone(stored), nil
}

func (r *InMemoryRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(p), nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id string, patch models.ProjectPatch) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Components != nil {
		p.Components = slices.Clone(*patch.Components)
		if p.Components == nil {
			p.Components = []json.RawMessage{}
		}
	}
	p.UpdatedAt = r.now()

	return clone(p), nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.projects, id)
	return nil
}

func (r *InMemoryRepository) List(ctx context.Context, q models.ProjectQuery) ([]*models.Project, error) {
	r.mu.RLock()
	owned := make([]*models.Project, 0)
	for _, p := range r.projects {
		if p.UserID == q.UserID {
			owned = append(owned, clone(p))
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(owned, func(a, b *models.Project) int {
		c := compareBy(q.SortBy, a, b)
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if q.Order != models.SortAsc {
			c = -c
		}
		return c
	})

	if q.Offset >= len(owned) {
		return []*models.Project{}, nil
	}
	end := min(q.Offset+q.Limit, len(owned))
	return owned[q.Offset:end], nil
}

func (r *InMemoryRepository) Count(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.projects {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func compareBy(field string, a, b *models.Project) int {
	switch field {
	case models.SortByName:
		return strings.Compare(a.Name, b.Name)
	case models.SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
}

func clone(p *models.Project) *models.Project {
	out := *p
	out.Components = slices.Clone(p.Components)
	return &out
}
