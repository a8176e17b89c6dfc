package projects

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/projectkeeper/internal/common"
	"github.com/dmitrijs2005/projectkeeper/internal/server/models"
)

// newSteppingRepo returns a repository whose clock advances one second per call.
func newSteppingRepo() *InMemoryRepository {
	repo := NewInMemoryRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return repo
}

func TestInMemoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := newSteppingRepo()

	created, err := repo.Create(ctx, &models.Project{ID: "p1", UserID: "u1", Name: "P"})
	require.NoError(t, err)
	assert.Equal(t, []json.RawMessage{}, created.Components)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	_, err = repo.Create(ctx, &models.Project{ID: "p1", UserID: "u2", Name: "dup"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	name := "Renamed"
	updated, err := repo.Update(ctx, "p1", models.ProjectPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "u1", updated.UserID)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	found, err := repo.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, updated, found)

	require.NoError(t, repo.Delete(ctx, "p1"))
	assert.ErrorIs(t, repo.Delete(ctx, "p1"), common.ErrorNotFound)
	_, err = repo.FindByID(ctx, "p1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = repo.Update(ctx, "p1", models.ProjectPatch{})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestInMemoryRepository_ListFiltersSortsAndPages(t *testing.T) {
	ctx := context.Background()
	repo := newSteppingRepo()

	for i, name := range []string{"c", "a", "b"} {
		_, err := repo.Create(ctx, &models.Project{ID: fmt.Sprintf("p%d", i), UserID: "u1", Name: name})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &models.Project{ID: "other", UserID: "u2", Name: "z"})
	require.NoError(t, err)

	names := func(ps []*models.Project) []string {
		out := make([]string, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}

	byName, err := repo.List(ctx, models.ProjectQuery{UserID: "u1", Limit: 10, SortBy: models.SortByName, Order: models.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names(byName))

	newest, err := repo.List(ctx, models.ProjectQuery{UserID: "u1", Limit: 10, SortBy: models.SortByUpdatedAt, Order: models.SortDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, names(newest))

	page2, err := repo.List(ctx, models.ProjectQuery{UserID: "u1", Offset: 2, Limit: 2, SortBy: models.SortByName, Order: models.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, names(page2))

	past, err := repo.List(ctx, models.ProjectQuery{UserID: "u1", Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, past)

	n, err := repo.Count(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestInMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	_, err := repo.Create(ctx, &models.Project{ID: "p1", UserID: "u1", Name: "P", Components: []json.RawMessage{json.RawMessage(`1`)}})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, "p1")
	require.NoError(t, err)
	got.Name = "mutated"
	got.Components[0] = json.RawMessage(`2`)

	again, err := repo.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "P", again.Name)
	assert.JSONEq(t, `1`, string(again.Components[0]))
}
