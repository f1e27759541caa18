// Package api exposes the archive over HTTP: tree navigation, permission
// queries, folder provisioning, uploads and single file access.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/mwantia/docarchive/internal/service/explorer"
	"github.com/mwantia/docarchive/internal/service/files"
	"github.com/mwantia/docarchive/internal/service/folder"
	"github.com/mwantia/docarchive/internal/service/upload"
	"github.com/mwantia/docarchive/pkg/access"
	"github.com/mwantia/docarchive/pkg/db/store"
	"github.com/mwantia/docarchive/pkg/log"
	"github.com/mwantia/docarchive/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	DefaultPrincipalHeader = "X-Archive-User"
	DefaultRequestTimeout  = 5 * time.Minute

	// multipartMemory is kept in memory per upload, the rest spills to disk.
	multipartMemory = 32 << 20
)

type Options struct {
	Store    store.ArchiveStore
	Folders  *folder.Service
	Explorer *explorer.Service
	Uploads  *upload.Service
	Files    *files.Service
	Access   *access.Resolver
	Metrics  *metrics.Metrics
	Logger   log.LoggerService

	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer

	PrincipalHeader string
	RequestTimeout  time.Duration
	MaxUploadBytes  int64
}

type Server struct {
	store    store.ArchiveStore
	folders  *folder.Service
	explorer *explorer.Service
	uploads  *upload.Service
	files    *files.Service
	access   *access.Resolver
	metrics  *metrics.Metrics
	log      log.LoggerService
	validate *validator.Validate

	principalHeader string
	maxUploadBytes  int64
}

// NewRouter creates the chi router with all middleware and routes.
//
// Routes:
//   - GET /health, GET /metrics
//   - GET /api/v1/explorer/{root,node,children,breadcrumbs,permissions}
//   - POST /api/v1/folders/{professor-root,course-structure}
//   - POST /api/v1/files
//   - GET /api/v1/files/{id}, GET /api/v1/files/{id}/{download,preview}
//   - DELETE /api/v1/files/{id}
func NewRouter(opts Options) http.Handler {
	s := &Server{
		store:           opts.Store,
		folders:         opts.Folders,
		explorer:        opts.Explorer,
		uploads:         opts.Uploads,
		files:           opts.Files,
		access:          opts.Access,
		metrics:         opts.Metrics,
		log:             opts.Logger,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		principalHeader: opts.PrincipalHeader,
		maxUploadBytes:  opts.MaxUploadBytes,
	}
	if s.log == nil {
		s.log = log.Discard()
	}
	if s.principalHeader == "" {
		s.principalHeader = DefaultPrincipalHeader
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", s.health)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.principal)

		r.Route("/explorer", func(r chi.Router) {
			r.Get("/root", s.explorerRoot)
			r.Get("/node", s.explorerNode)
			r.Get("/children", s.explorerChildren)
			r.Get("/breadcrumbs", s.explorerBreadcrumbs)
			r.Get("/permissions", s.explorerPermissions)
		})

		r.Route("/folders", func(r chi.Router) {
			r.Post("/professor-root", s.createProfessorRoot)
			r.Post("/course-structure", s.createCourseStructure)
		})

		r.Route("/files", func(r chi.Router) {
			r.Post("/", s.uploadFiles)
			r.Get("/{id}", s.getFile)
			r.Get("/{id}/download", s.downloadFile)
			r.Get("/{id}/preview", s.previewFile)
			r.Delete("/{id}", s.deleteFile)
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Health(r.Context()); err != nil {
		s.log.Error("Health check failed: %v", err)
		WriteProblem(w, http.StatusServiceUnavailable, "database is unavailable")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
