package models

import (
	"encoding/json"
	"time"
)

// Project is an owner-scoped resource. UserID is fixed at creation.
type Project struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	Name       string            `json:"name"`
	Components []json.RawMessage `json:"components"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// ProjectPatch carries a partial update; nil fields keep their stored value.
type ProjectPatch struct {
	Name       *string
	Components *[]json.RawMessage
}

// ProjectInput is one item of a create or batch-import request.
type ProjectInput struct {
	Name       string            `json:"name"`
	Components []json.RawMessage `json:"components,omitempty"`
}

// SortOrder is the direction of a project listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sortable project fields.
const (
	SortByCreatedAt = "createdAt"
	SortByUpdatedAt = "updatedAt"
	SortByName      = "name"
)

// ProjectQuery selects one page of an owner's projects. SortBy is always one
// of the SortBy* constants by the time it reaches a repository.
type ProjectQuery struct {
	UserID string
	Offset int
	Limit  int
	SortBy string
	Order  SortOrder
}

// Pagination describes the page returned by a listing.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// ProjectPage is a listing result.
type ProjectPage struct {
	Projects   []*Project `json:"projects"`
	Pagination Pagination `json:"pagination"`
}

// ImportedProject identifies a project created by a batch import.
type ImportedProject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BatchImportResult tallies a batch import. Projects keeps input order.
type BatchImportResult struct {
	Imported int               `json:"imported"`
	Failed   int               `json:"failed"`
	Projects []ImportedProject `json:"projects"`
}
