package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/projectkeeper/internal/client/client"
	"github.com/dmitrijs2005/projectkeeper/internal/server/models"
)

var (
	errMissingID   = errors.New("project id is required")
	errMissingFile = errors.New("file name is required")
	errEmptyImport = errors.New("import file contains no projects")
)

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

func firstArg(args []string, missing error) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", missing
	}
	return args[0], nil
}

func (a *App) List(ctx context.Context, args []string) error {
	var q client.ListQuery
	if len(args) > 0 {
		page, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid page %q", args[0])
		}
		q.Page = page
	}

	res, err := a.api.ListProjects(ctx, q)
	if err != nil {
		return err
	}

	if len(res.Projects) == 0 {
		printlnFn("No projects")
		return nil
	}
	for _, p := range res.Projects {
		printlnFn(fmt.Sprintf("%s  %-30s  %d components  updated %s",
			p.ID, p.Name, len(p.Components), p.UpdatedAt.Local().Format("2006-01-02 15:04")))
	}
	pg := res.Pagination
	printlnFn(fmt.Sprintf("page %d/%d, %d total", pg.Page, pg.TotalPages, pg.Total))
	return nil
}

func (a *App) Create(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Project name", a.out)
	if err != nil {
		return err
	}

	raw, err := getMultiline(a.reader, "Components as a JSON array (optional)", a.out)
	if err != nil {
		return err
	}
	in := models.ProjectInput{Name: name}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Components); err != nil {
			return fmt.Errorf("components must be a JSON array: %w", err)
		}
	}

	p, err := a.api.CreateProject(ctx, in)
	if err != nil {
		return err
	}
	printlnFn("Created project", p.ID)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := firstArg(args, errMissingID)
	if err != nil {
		return err
	}

	p, err := a.api.GetProject(ctx, id)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	printlnFn(string(b))
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	id, err := firstArg(args, errMissingID)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "New name", a.out)
	if err != nil {
		return err
	}

	p, err := a.api.RenameProject(ctx, id, name)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Renamed %s to %q", p.ID, p.Name))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := firstArg(args, errMissingID)
	if err != nil {
		return err
	}

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete project %s? (y/N)", id), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		printlnFn("Cancelled")
		return nil
	}

	deleted, err := a.api.DeleteProject(ctx, id)
	if err != nil {
		return err
	}
	printlnFn("Deleted project", deleted)
	return nil
}

// parseImportFile accepts either {"projects": [...]} or a bare array.
func parseImportFile(data []byte) ([]models.ProjectInput, error) {
	trimmed := strings.TrimSpace(string(data))

	var items []models.ProjectInput
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parse import file: %w", err)
		}
	} else {
		var wrapped struct {
			Projects []models.ProjectInput `json:"projects"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("parse import file: %w", err)
		}
		items = wrapped.Projects
	}

	if len(items) == 0 {
		return nil, errEmptyImport
	}
	return items, nil
}

func (a *App) Import(ctx context.Context, args []string) error {
	path, err := firstArg(args, errMissingFile)
	if err != nil {
		return err
	}

	data, err := readFile(path)
	if err != nil {
		return err
	}
	items, err := parseImportFile(data)
	if err != nil {
		return err
	}

	res, err := a.api.BatchImport(ctx, items)
	if err != nil {
		return err
	}
	for _, p := range res.Projects {
		printlnFn(fmt.Sprintf("  %s  %s", p.ID, p.Name))
	}
	printlnFn(fmt.Sprintf("Imported %d, failed %d", res.Imported, res.Failed))
	return nil
}
