// Package rest exposes the identity and project services over HTTP.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/projectkeeper/internal/logging"
	"github.com/dmitrijs2005/projectkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/projectkeeper/internal/server/models"
	"github.com/dmitrijs2005/projectkeeper/internal/server/services"
)

// UserService is the identity surface the auth handlers call.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.PublicUser, error)
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
	VerifySession(ctx context.Context, userID string) (*models.PublicUser, error)
}

// ProjectService is the owner-scoped project surface. ownerID always comes
// from the session gate, never from the request body.
type ProjectService interface {
	Create(ctx context.Context, ownerID string, in models.ProjectInput) (*models.Project, error)
	List(ctx context.Context, ownerID string, params services.ListParams) (*models.ProjectPage, error)
	Get(ctx context.Context, ownerID, id string) (*models.Project, error)
	Update(ctx context.Context, ownerID, id string, patch models.ProjectPatch) (*models.Project, error)
	Remove(ctx context.Context, ownerID, id string) (string, error)
	BatchImport(ctx context.Context, ownerID string, items []json.RawMessage) (*models.BatchImportResult, error)
}

// Options configures the HTTP listener.
type Options struct {
	Addr            string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// Server is the HTTP front of ProjectKeeper: auth and project routes,
// /healthz and /metrics.
type Server struct {
	opts     Options
	users    UserService
	projects ProjectService
	tokens   TokenVerifier
	metrics  *metrics.Metrics
	logger   logging.Logger
	router   chi.Router
}

// NewServer builds the router; nothing listens until Run is called.
func NewServer(opts Options, us UserService, ps ProjectService, tokens TokenVerifier, m *metrics.Metrics, l logging.Logger) *Server {
	s := &Server{
		opts:     opts,
		users:    us,
		projects: ps,
		tokens:   tokens,
		metrics:  m,
		logger:   l.With("module", "http_server"),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(s.logger, s.metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
	})
	if s.opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}

	gate := Authenticate(s.tokens, s.metrics, s.logger)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.With(gate).Get("/verify", s.handleVerify)
	})

	r.Route("/api/projects", func(r chi.Router) {
		r.Use(gate)
		r.Post("/", s.handleCreateProject)
		r.Get("/", s.handleListProjects)
		r.Post("/batch-import", s.handleBatchImport)
		r.Get("/{id}", s.handleGetProject)
		r.Put("/{id}", s.handleUpdateProject)
		r.Delete("/{id}", s.handleDeleteProject)
	})

	return r
}

// fail logs internal errors and writes the error envelope.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if statusFor(err) == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, r, err)
}

// Run serves HTTP on the configured address until ctx is cancelled, then
// shuts down gracefully within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
		errCh <- srv.Serve(listen)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
