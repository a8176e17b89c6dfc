package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/projectkeeper/internal/server/models"
)

// LoginResult is the payload of a successful login.
type LoginResult struct {
	AccessToken string            `json:"accessToken"`
	ExpiresIn   int64             `json:"expiresIn"`
	User        models.PublicUser `json:"user"`
}

// ListQuery selects a page of projects. Zero values let the server choose.
type ListQuery struct {
	Page     int
	PageSize int
	SortBy   string
	Order    string
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// HTTPClient talks to the ProjectKeeper REST API. It unwraps the response
// envelope and keeps the access token from the last successful Login.
// It is not safe for concurrent use while the token changes.
type HTTPClient struct {
	baseURL     string
	http        *http.Client
	accessToken string
}

// NewHTTPClient returns a client for baseURL; every request is bounded by timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken replaces the bearer token; an empty token logs the client out.
func (c *HTTPClient) SetToken(token string) { c.accessToken = token }

// Token returns the current bearer token, empty when logged out.
func (c *HTTPClient) Token() string { return c.accessToken }

// Register creates an account. It does not log in.
func (c *HTTPClient) Register(ctx context.Context, username, email, password string) (*models.PublicUser, error) {
	req := map[string]string{"username": username, "email": email, "password": password}
	var u models.PublicUser
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates and stores the returned token for later calls.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	req := map[string]string{"username": username, "password": password}
	var res LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &res); err != nil {
		return nil, err
	}
	c.accessToken = res.AccessToken
	return &res, nil
}

// Verify returns the user the current token belongs to.
func (c *HTTPClient) Verify(ctx context.Context) (*models.PublicUser, error) {
	var u models.PublicUser
	if err := c.do(ctx, http.MethodGet, "/api/auth/verify", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListProjects fetches one page of the caller's projects.
func (c *HTTPClient) ListProjects(ctx context.Context, q ListQuery) (*models.ProjectPage, error) {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}

	path := "/api/projects"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var page models.ProjectPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateProject stores a new project.
func (c *HTTPClient) CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	var p models.Project
	if err := c.do(ctx, http.MethodPost, "/api/projects", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProject fetches a single project by id.
func (c *HTTPClient) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RenameProject changes only the name of a project.
func (c *HTTPClient) RenameProject(ctx context.Context, id, name string) (*models.Project, error) {
	var p models.Project
	req := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPut, "/api/projects/"+url.PathEscape(id), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProject removes a project and returns the deleted id.
func (c *HTTPClient) DeleteProject(ctx context.Context, id string) (string, error) {
	var res struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

// BatchImport creates items in order; the result reports per-batch tallies.
func (c *HTTPClient) BatchImport(ctx context.Context, items []models.ProjectInput) (*models.BatchImportResult, error) {
	if items == nil {
		items = []models.ProjectInput{}
	}
	req := map[string]any{"projects": items}
	var res models.BatchImportResult
	if err := c.do(ctx, http.MethodPost, "/api/projects/batch-import", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			// Proxies and the router's own 404/405 answer in plain text.
			if resp.StatusCode >= http.StatusBadRequest {
				return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
			}
			return fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: msg}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
