package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/mwantia/docarchive/pkg/apperror"
	"github.com/mwantia/docarchive/pkg/db/models"
)

const requestIDHeader = "X-Request-ID"

type principalKey struct{}

// PrincipalFromContext returns the user resolved by the principal
// middleware.
func PrincipalFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(principalKey{}).(*models.User)
	return user
}

// requestID keeps a client supplied X-Request-ID or generates one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs and measures every request. Health checks are logged
// at DEBUG.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.metrics.ObserveRequest(r.Method, route, ww.Status(), duration)

		logger := s.log.With("request", middleware.GetReqID(r.Context()))
		if externalID := strings.TrimSpace(r.Header.Get(s.principalHeader)); externalID != "" {
			logger = logger.With("principal", externalID)
		}
		logf := logger.Info
		if route == "/health" || route == "/metrics" {
			logf = logger.Debug
		}
		logf("%s %s -> %d (%d bytes, %s)",
			r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), duration)
	})
}

// principal resolves the already authenticated user from the configured
// header. Unknown or inactive users are rejected.
func (s *Server) principal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		externalID := strings.TrimSpace(r.Header.Get(s.principalHeader))
		if externalID == "" {
			WriteProblem(w, http.StatusUnauthorized, "missing "+s.principalHeader+" header")
			return
		}

		user, err := s.store.GetUserByExternalID(r.Context(), externalID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				WriteProblem(w, http.StatusUnauthorized, "unknown principal")
				return
			}
			WriteError(w, r, err)
			return
		}
		if !user.Active {
			WriteProblem(w, http.StatusUnauthorized, "principal is inactive")
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
