package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/projectkeeper/internal/client/client"
	"github.com/dmitrijs2005/projectkeeper/internal/client/config"
	"github.com/dmitrijs2005/projectkeeper/internal/server/models"
)

// API is the server surface the CLI needs. *client.HTTPClient satisfies it.
type API interface {
	SetToken(token string)
	Token() string
	Register(ctx context.Context, username, email, password string) (*models.PublicUser, error)
	Login(ctx context.Context, username, password string) (*client.LoginResult, error)
	Verify(ctx context.Context) (*models.PublicUser, error)
	ListProjects(ctx context.Context, q client.ListQuery) (*models.ProjectPage, error)
	CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	RenameProject(ctx context.Context, id, name string) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) (string, error)
	BatchImport(ctx context.Context, items []models.ProjectInput) (*models.BatchImportResult, error)
}

// App is one interactive CLI session.
type App struct {
	config   *config.Config
	api      API
	userName string
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp wires an HTTP client for c.ServerURL to stdin and stdout.
func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		api:    client.NewHTTPClient(c.ServerURL, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.api.Token() != ""
}
