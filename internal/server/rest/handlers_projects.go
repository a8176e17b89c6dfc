package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/projectkeeper/internal/common"
	"github.com/dmitrijs2005/projectkeeper/internal/server/auth"
	"github.com/dmitrijs2005/projectkeeper/internal/server/models"
	"github.com/dmitrijs2005/projectkeeper/internal/server/services"
)

type updateProjectRequest struct {
	Name       *string            `json:"name"`
	Components *[]json.RawMessage `json:"components"`
}

// batchImportRequest keeps items raw so one malformed item fails alone.
type batchImportRequest struct {
	Projects []json.RawMessage `json:"projects"`
}

type deletedProject struct {
	ID string `json:"id"`
}

func ownerID(r *http.Request) string {
	id, _ := auth.IdentityFromContext(r.Context())
	return id.UserID
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req models.ProjectInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := s.projects.Create(r.Context(), ownerID(r), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeOK(w, http.StatusCreated, "created", p)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := services.ListParams{
		Page:     atoiOrZero(q.Get("page")),
		PageSize: atoiOrZero(q.Get("pageSize")),
		SortBy:   q.Get("sortBy"),
		Order:    q.Get("order"),
	}

	page, err := s.projects.List(r.Context(), ownerID(r), params)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, "ok", page)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Get(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, "ok", p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req updateProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	patch := models.ProjectPatch{Name: req.Name, Components: req.Components}
	p, err := s.projects.Update(r.Context(), ownerID(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, "updated", p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := s.projects.Remove(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, "deleted", deletedProject{ID: id})
}

func (s *Server) handleBatchImport(w http.ResponseWriter, r *http.Request) {
	var req batchImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Projects == nil {
		writeError(w, r, common.NewValidationError("projects", "must be an array"))
		return
	}

	res, err := s.projects.BatchImport(r.Context(), ownerID(r), req.Projects)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.metrics.BatchImported(res.Imported, res.Failed)
	writeOK(w, http.StatusCreated, "imported", res)
}

// atoiOrZero parses a query value; anything unparsable becomes 0, which the
// service replaces with its default.
func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
