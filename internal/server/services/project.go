package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/projectkeeper/internal/common"
	"github.com/dmitrijs2005/projectkeeper/internal/logging"
	"github.com/dmitrijs2005/projectkeeper/internal/server/models"
	"github.com/dmitrijs2005/projectkeeper/internal/server/repositories/projects"
)

// Listing and batch limits. Page sizes above MaxPageSize are clamped.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxBatchItems   = 100
)

// ListParams is an unnormalized listing request.
type ListParams struct {
	Page     int
	PageSize int
	SortBy   string
	Order    string
}

// ProjectService enforces that a project is visible and mutable only by the
// user who created it.
type ProjectService struct {
	repo          projects.Repository
	logger        logging.Logger
	maxBatchItems int
}

// NewProjectService returns a ProjectService over repo.
func NewProjectService(repo projects.Repository, logger logging.Logger) *ProjectService {
	return &ProjectService{
		repo:          repo,
		logger:        logger.With("module", "project_service"),
		maxBatchItems: MaxBatchItems,
	}
}

// Create stores a new project owned by ownerID. Missing components become an
// empty list.
func (s *ProjectService) Create(ctx context.Context, ownerID string, in models.ProjectInput) (*models.Project, error) {
	if err := validateProjectName(in.Name); err != nil {
		return nil, err
	}

	components := in.Components
	if components == nil {
		components = []json.RawMessage{}
	}

	p, err := s.repo.Create(ctx, &models.Project{
		ID:         uuid.NewString(),
		UserID:     ownerID,
		Name:       in.Name,
		Components: components,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating project: %w", err)
	}
	return p, nil
}

// List returns one page of the owner's projects. Out of range parameters are
// clamped rather than rejected.
func (s *ProjectService) List(ctx context.Context, ownerID string, params ListParams) (*models.ProjectPage, error) {
	page, size := normalizePage(params.Page, params.PageSize)

	q := models.ProjectQuery{
		UserID: ownerID,
		Offset: offsetFor(page, size),
		Limit:  size,
		SortBy: normalizeSortBy(params.SortBy),
		Order:  normalizeOrder(params.Order),
	}

	var (
		items []*models.Project
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.List(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error listing projects: %w", err)
	}

	if items == nil {
		items = []*models.Project{}
	}

	return &models.ProjectPage{
		Projects: items,
		Pagination: models.Pagination{
			Total:      total,
			Page:       page,
			PageSize:   size,
			TotalPages: (total + size - 1) / size,
		},
	}, nil
}

// Get returns a single project. A missing project is reported before an
// ownership mismatch.
func (s *ProjectService) Get(ctx context.Context, ownerID, id string) (*models.Project, error) {
	return s.owned(ctx, ownerID, id)
}

// Update applies patch to an owned project. Absent fields are kept.
func (s *ProjectService) Update(ctx context.Context, ownerID, id string, patch models.ProjectPatch) (*models.Project, error) {
	if patch.Name != nil {
		if err := validateProjectName(*patch.Name); err != nil {
			return nil, err
		}
	}

	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrProjectNotFound
		}
		return nil, fmt.Errorf("error updating project: %w", err)
	}
	return p, nil
}

// Remove deletes an owned project and returns its id.
func (s *ProjectService) Remove(ctx context.Context, ownerID, id string) (string, error) {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return "", err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrProjectNotFound
		}
		return "", fmt.Errorf("error deleting project: %w", err)
	}
	return id, nil
}

// BatchImport decodes and creates items one at a time in input order. An item
// that fails to decode, validate or store is counted and logged and does not
// stop the rest. Batches over the limit are refused before anything is created.
func (s *ProjectService) BatchImport(ctx context.Context, ownerID string, items []json.RawMessage) (*models.BatchImportResult, error) {
	if len(items) > s.maxBatchItems {
		return nil, common.ErrBatchTooLarge
	}

	res := &models.BatchImportResult{Projects: []models.ImportedProject{}}
	for i, raw := range items {
		var item models.ProjectInput
		if err := json.Unmarshal(raw, &item); err != nil {
			res.Failed++
			s.logger.Warn(ctx, "batch item malformed", "user_id", ownerID, "index", i, "error", err)
			continue
		}

		p, err := s.Create(ctx, ownerID, item)
		if err != nil {
			res.Failed++
			s.logger.Warn(ctx, "batch item failed", "user_id", ownerID, "index", i, "name", item.Name, "error", err)
			continue
		}
		res.Imported++
		res.Projects = append(res.Projects, models.ImportedProject{ID: p.ID, Name: p.Name})
	}

	s.logger.Info(ctx, "batch import finished", "user_id", ownerID, "imported", res.Imported, "failed", res.Failed)
	return res, nil
}

// owned loads id and checks it belongs to ownerID. Ids are uuids, so anything
// else cannot exist.
func (s *ProjectService) owned(ctx context.Context, ownerID, id string) (*models.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrProjectNotFound
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrProjectNotFound
		}
		return nil, fmt.Errorf("error finding project: %w", err)
	}
	if p.UserID != ownerID {
		return nil, common.ErrProjectForbidden
	}
	return p, nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

func offsetFor(page, size int) int {
	if page-1 > math.MaxInt/size {
		return math.MaxInt
	}
	return (page - 1) * size
}

func normalizeSortBy(field string) string {
	switch field {
	case models.SortByCreatedAt, models.SortByUpdatedAt, models.SortByName:
		return field
	default:
		return models.SortByUpdatedAt
	}
}

func normalizeOrder(order string) models.SortOrder {
	switch models.SortOrder(strings.ToLower(order)) {
	case models.SortAsc:
		return models.SortAsc
	default:
		return models.SortDesc
	}
}
