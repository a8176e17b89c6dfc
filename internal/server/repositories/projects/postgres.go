package projects

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/projectkeeper/internal/common"
	"github.com/dmitrijs2005/projectkeeper/internal/dbx"
	"github.com/dmitrijs2005/projectkeeper/internal/server/models"
)

// sortColumns whitelists the ORDER BY columns; nothing from the request is
// ever interpolated into SQL directly.
var sortColumns = map[string]string{
	models.SortByCreatedAt: "created_at",
	models.SortByUpdatedAt: "updated_at",
	models.SortByName:      "name",
}

// PostgresRepository implements project storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	components, err := encodeComponents(project.Components)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO projects (id, user_id, name, components)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query, project.ID, project.UserID, project.Name, components).
		Scan(&project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		if _, ok := dbx.UniqueViolation(err); ok {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return project, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	query :=
		`SELECT id, user_id, name, components, created_at, updated_at FROM projects
		 WHERE id = $1
		 `

	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.InvalidText(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// Update applies the non-nil patch fields and always bumps updated_at.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.ProjectPatch) (*models.Project, error) {
	var name, components sql.NullString
	if patch.Name != nil {
		name = sql.NullString{String: *patch.Name, Valid: true}
	}
	if patch.Components != nil {
		encoded, err := encodeComponents(*patch.Components)
		if err != nil {
			return nil, err
		}
		components = sql.NullString{String: encoded, Valid: true}
	}

	query :=
		`UPDATE projects SET
			name = COALESCE($2, name),
			components = COALESCE($3::jsonb, components),
			updated_at = now()
		 WHERE id = $1
		 RETURNING id, user_id, name, components, created_at, updated_at
		 `

	p, err := scanProject(r.db.QueryRowContext(ctx, query, id, name, components))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.InvalidText(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		if dbx.InvalidText(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// List returns one page of q.UserID's projects. Rows with equal sort keys are
// ordered by id in the same direction so paging is stable.
func (r *PostgresRepository) List(ctx context.Context, q models.ProjectQuery) ([]*models.Project, error) {
	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[models.SortByUpdatedAt]
	}
	direction := "DESC"
	if q.Order == models.SortAsc {
		direction = "ASC"
	}

	query := fmt.Sprintf(
		`SELECT id, user_id, name, components, created_at, updated_at FROM projects
		 WHERE user_id = $1
		 ORDER BY %s %s, id %s
		 LIMIT $2 OFFSET $3`, column, direction, direction)

	rows, err := r.db.QueryContext(ctx, query, q.UserID, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select projects: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Project, 0, q.Limit)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*models.Project, error) {
	var (
		p   models.Project
		raw []byte
	)
	if err := s.Scan(&p.ID, &p.UserID, &p.Name, &raw, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &p.Components); err != nil {
		return nil, fmt.Errorf("decode components: %w", err)
	}
	if p.Components == nil {
		p.Components = []json.RawMessage{}
	}
	return &p, nil
}

func encodeComponents(c []json.RawMessage) (string, error) {
	if c == nil {
		c = []json.RawMessage{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode components: %w", err)
	}
	return string(b), nil
}
