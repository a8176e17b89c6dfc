package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/projectkeeper/internal/common"
	"github.com/dmitrijs2005/projectkeeper/internal/logging"
	"github.com/dmitrijs2005/projectkeeper/internal/server/auth"
	"github.com/dmitrijs2005/projectkeeper/internal/server/metrics"
)

// TokenVerifier checks a bearer token and returns its identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Authenticate is the session gate: requests without a valid
// "Authorization: Bearer <token>" header are answered with 401, the rest
// continue with the identity attached to the context. Every rejection
// carries the same message; the reason goes to metrics and the debug log.
func Authenticate(tokens TokenVerifier, m *metrics.Metrics, l logging.Logger) func(http.Handler) http.Handler {
	reject := func(w http.ResponseWriter, r *http.Request, reason string) {
		m.AuthFailure(reason)
		l.Debug(r.Context(), "request rejected by session gate", "reason", reason, "path", r.URL.Path)
		writeError(w, r, common.ErrUnauthenticated)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.ParseBearer(r.Header.Get("Authorization"))
			if !ok {
				reject(w, r, "missing_token")
				return
			}

			id, err := tokens.Verify(token)
			if err != nil {
				if errors.Is(err, common.ErrTokenExpired) {
					reject(w, r, "token_expired")
				} else {
					reject(w, r, "invalid_token")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// accessLog logs and measures each request once the handler has finished.
func accessLog(logger logging.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			elapsed := time.Since(start)

			m.ObserveRequest(route, r.Method, status, elapsed)
			logger.Info(r.Context(), "http request",
				"method", r.Method,
				"route", route,
				"status", status,
				"duration", elapsed,
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
