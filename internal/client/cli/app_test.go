package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/projectkeeper/internal/client/client"
	"github.com/dmitrijs2005/projectkeeper/internal/client/config"
	"github.com/dmitrijs2005/projectkeeper/internal/server/models"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	token string

	registered []string
	listQuery  client.ListQuery
	created    []models.ProjectInput
	renamed    [2]string
	deleted    []string
	imported   []models.ProjectInput

	loginErr error
	getErr   error
}

func (f *fakeAPI) SetToken(token string) { f.token = token }
func (f *fakeAPI) Token() string         { return f.token }

func (f *fakeAPI) Register(_ context.Context, username, email, password string) (*models.PublicUser, error) {
	f.registered = []string{username, email, password}
	return &models.PublicUser{ID: "u1", UserName: username, Email: email}, nil
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (*client.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.token = "tok-" + username
	return &client.LoginResult{AccessToken: f.token, ExpiresIn: 3600, User: models.PublicUser{ID: "u1", UserName: username}}, nil
}

func (f *fakeAPI) Verify(context.Context) (*models.PublicUser, error) {
	return &models.PublicUser{ID: "u1", UserName: "alice", Email: "a@x.io"}, nil
}

func (f *fakeAPI) ListProjects(_ context.Context, q client.ListQuery) (*models.ProjectPage, error) {
	f.listQuery = q
	return &models.ProjectPage{
		Projects:   []*models.Project{{ID: "p1", Name: "one", UpdatedAt: time.Now()}},
		Pagination: models.Pagination{Total: 1, Page: 1, PageSize: 20, TotalPages: 1},
	}, nil
}

func (f *fakeAPI) CreateProject(_ context.Context, in models.ProjectInput) (*models.Project, error) {
	f.created = append(f.created, in)
	return &models.Project{ID: "p1", Name: in.Name}, nil
}

func (f *fakeAPI) GetProject(_ context.Context, id string) (*models.Project, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &models.Project{ID: id, Name: "one", Components: []json.RawMessage{}}, nil
}

func (f *fakeAPI) RenameProject(_ context.Context, id, name string) (*models.Project, error) {
	f.renamed = [2]string{id, name}
	return &models.Project{ID: id, Name: name}, nil
}

func (f *fakeAPI) DeleteProject(_ context.Context, id string) (string, error) {
	f.deleted = append(f.deleted, id)
	return id, nil
}

func (f *fakeAPI) BatchImport(_ context.Context, items []models.ProjectInput) (*models.BatchImportResult, error) {
	f.imported = items
	res := &models.BatchImportResult{Imported: len(items)}
	for i, it := range items {
		res.Projects = append(res.Projects, models.ImportedProject{ID: string(rune('a' + i)), Name: it.Name})
	}
	return res, nil
}

func newTestApp(t *testing.T, input string) (*App, *fakeAPI, *[]string) {
	t.Helper()
	out := capturePrintln(t)

	origPw := getPassword
	getPassword = func(io.Writer) (string, error) { return "password123", nil }
	t.Cleanup(func() { getPassword = origPw })

	api := &fakeAPI{}
	return &App{
		config: &config.Config{ServerURL: "http://example"},
		api:    api,
		reader: rdr(input),
		out:    &bytes.Buffer{},
	}, api, out
}

func TestNewApp_UsesConfiguredServer(t *testing.T) {
	a := NewApp(&config.Config{ServerURL: "http://127.0.0.1:9", RequestTimeout: time.Second})
	require.NotNil(t, a.api)
	require.False(t, a.isLoggedIn())
	require.Empty(t, a.getStatus())
}

func TestApp_RegisterLoginLogout(t *testing.T) {
	a, api, out := newTestApp(t, "alice\nalice@example.com\nalice\n")
	ctx := context.Background()

	require.NoError(t, a.Register(ctx))
	require.Equal(t, []string{"alice", "alice@example.com", "password123"}, api.registered)
	require.False(t, a.isLoggedIn())

	require.NoError(t, a.Login(ctx))
	require.True(t, a.isLoggedIn())
	require.Equal(t, "(alice)", a.getStatus())
	require.Contains(t, *out, "Logged in as alice, session valid for 3600s")

	require.NoError(t, a.Whoami(ctx))
	require.Contains(t, *out, "alice <a@x.io> id=u1")

	require.NoError(t, a.Logout(ctx))
	require.False(t, a.isLoggedIn())
	require.Empty(t, a.getStatus())
}

func TestApp_LoginFailureKeepsLoggedOut(t *testing.T) {
	a, api, _ := newTestApp(t, "alice\n")
	api.loginErr = client.ErrUnauthorized

	err := a.Login(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
	require.False(t, a.isLoggedIn())
}

func TestApp_List(t *testing.T) {
	a, api, out := newTestApp(t, "")

	require.NoError(t, a.List(context.Background(), []string{"3"}))
	require.Equal(t, 3, api.listQuery.Page)
	require.Contains(t, *out, "page 1/1, 1 total")

	require.Error(t, a.List(context.Background(), []string{"x"}))
}

func TestApp_Create(t *testing.T) {
	a, api, _ := newTestApp(t, "Alpha\n[{\"type\":\"text\"}]\n\nBeta\n\n")
	ctx := context.Background()

	require.NoError(t, a.Create(ctx))
	require.NoError(t, a.Create(ctx))

	require.Len(t, api.created, 2)
	require.Equal(t, "Alpha", api.created[0].Name)
	require.Len(t, api.created[0].Components, 1)
	require.JSONEq(t, `{"type":"text"}`, string(api.created[0].Components[0]))
	require.Equal(t, "Beta", api.created[1].Name)
	require.Empty(t, api.created[1].Components)
}

func TestApp_Create_InvalidComponents(t *testing.T) {
	a, api, _ := newTestApp(t, "Alpha\n{not json\n\n")

	require.Error(t, a.Create(context.Background()))
	require.Empty(t, api.created)
}

func TestApp_ShowRenameDelete(t *testing.T) {
	a, api, out := newTestApp(t, "Renamed\nn\ny\n")
	ctx := context.Background()

	require.ErrorIs(t, a.Show(ctx, nil), errMissingID)
	require.NoError(t, a.Show(ctx, []string{"p1"}))
	require.Contains(t, (*out)[len(*out)-1], `"id": "p1"`)

	api.getErr = errors.New("not found")
	require.Error(t, a.Show(ctx, []string{"p1"}))

	require.NoError(t, a.Rename(ctx, []string{"p1"}))
	require.Equal(t, [2]string{"p1", "Renamed"}, api.renamed)

	require.NoError(t, a.Delete(ctx, []string{"p1"}))
	require.Empty(t, api.deleted)
	require.Contains(t, *out, "Cancelled")

	require.NoError(t, a.Delete(ctx, []string{"p1"}))
	require.Equal(t, []string{"p1"}, api.deleted)
}

func TestParseImportFile(t *testing.T) {
	items, err := parseImportFile([]byte(`{"projects":[{"name":"a"},{"name":"b","components":[1]}]}`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "b", items[1].Name)

	items, err = parseImportFile([]byte(` [{"name":"c"}]`))
	require.NoError(t, err)
	require.Equal(t, "c", items[0].Name)

	_, err = parseImportFile([]byte(`{"projects":[]}`))
	require.ErrorIs(t, err, errEmptyImport)

	_, err = parseImportFile([]byte(`nope`))
	require.Error(t, err)
}

func TestApp_Import(t *testing.T) {
	a, api, out := newTestApp(t, "")

	origRead := readFile
	readFile = func(name string) ([]byte, error) {
		if name != "projects.json" {
			return nil, errors.New("no such file")
		}
		return []byte(`[{"name":"a"},{"name":"b"}]`), nil
	}
	t.Cleanup(func() { readFile = origRead })

	ctx := context.Background()
	require.ErrorIs(t, a.Import(ctx, nil), errMissingFile)
	require.Error(t, a.Import(ctx, []string{"missing.json"}))

	require.NoError(t, a.Import(ctx, []string{"projects.json"}))
	require.Len(t, api.imported, 2)
	require.Contains(t, *out, "Imported 2, failed 0")
}
