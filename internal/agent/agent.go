package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mwantia/docarchive/internal/api"
	config "github.com/mwantia/docarchive/internal/config/server"
	"github.com/mwantia/docarchive/internal/service/explorer"
	"github.com/mwantia/docarchive/internal/service/files"
	"github.com/mwantia/docarchive/internal/service/folder"
	"github.com/mwantia/docarchive/internal/service/upload"
	"github.com/mwantia/docarchive/pkg/access"
	"github.com/mwantia/docarchive/pkg/db/store"
	"github.com/mwantia/docarchive/pkg/log"
	"github.com/mwantia/docarchive/pkg/metrics"
	"github.com/mwantia/docarchive/pkg/storage"
	"github.com/mwantia/fabric/pkg/container"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// multipartOverhead is added to the batch limit for form boundaries and fields.
const multipartOverhead = 1 << 20

type ArchiveAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg *config.BaseServerConfig
	sc  *container.ServiceContainer
	log log.LoggerService

	store    *store.GORMStore
	registry *prometheus.Registry
	handler  http.Handler
	server   *http.Server
}

func NewAgent(cfg *config.BaseServerConfig) *ArchiveAgent {
	return &ArchiveAgent{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService("docarchive", cfg.Log),
	}
}

func (a *ArchiveAgent) setupServices(ctx context.Context) error {
	a.log.Debug("Registering 'LoggerService'...")
	if err := container.Register[log.LoggerServiceImpl](a.sc,
		container.With[log.LoggerService](),
		container.WithInstance(a.log)); err != nil {
		return err
	}

	httpLog, err := log.FromContainer(ctx, a.sc, "logger:http")
	if err != nil {
		return err
	}

	a.log.Debug("Opening %s database...", a.cfg.Database.Type)
	st, err := OpenStore(ctx, a.cfg.Database)
	if err != nil {
		return err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	a.store = st

	disk, err := storage.NewDisk(a.cfg.Storage.UploadRoot)
	if err != nil {
		return err
	}
	a.log.Info("Serving archive from '%s'", disk.Root())

	a.registry = prometheus.NewRegistry()
	if a.cfg.Metrics.Enabled {
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m := metrics.New(a.registry)

	resolver := access.NewResolver(a.log.Named("access"), m)
	folders := folder.NewService(st, disk, resolver, m, a.log.Named("folder"))
	uploads := upload.NewService(upload.Config{
		MaxFileSize:       a.cfg.Upload.MaxFileSize,
		MaxFiles:          a.cfg.Upload.MaxFiles,
		MaxBatchSize:      a.cfg.Upload.MaxBatchSize,
		AllowedExtensions: a.cfg.Upload.AllowedExtensions,
	}, st, disk, folders, resolver, m, a.log.Named("upload"))

	opts := api.Options{
		Store:           st,
		Folders:         folders,
		Explorer:        explorer.NewService(st, folders, resolver, a.log.Named("explorer")),
		Uploads:         uploads,
		Files:           files.NewService(st, disk, resolver, m, a.log.Named("files")),
		Access:          resolver,
		Metrics:         m,
		Logger:          httpLog,
		PrincipalHeader: a.cfg.HTTP.PrincipalHeader,
		RequestTimeout:  config.Duration(a.cfg.HTTP.RequestTimeout, api.DefaultRequestTimeout),
		MaxUploadBytes:  a.cfg.Upload.MaxBatchSize + multipartOverhead,
	}
	if a.cfg.Metrics.Enabled {
		opts.Gatherer = a.registry
	}
	a.handler = api.NewRouter(opts)

	errs := container.Errors{}

	a.log.Debug("Registering 'ArchiveStore'...")
	errs.Add(container.Register[store.GORMStore](a.sc,
		container.With[store.ArchiveStore](),
		container.WithInstance(st)))

	a.log.Debug("Registering 'Gatherer'...")
	errs.Add(container.Register[prometheus.Registry](a.sc,
		container.With[prometheus.Gatherer](),
		container.WithInstance(a.registry)))

	return errs.Errors()
}

func (a *ArchiveAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a.mutex.Lock()

	if err := a.setupServices(ctx); err != nil {
		a.mutex.Unlock()
		a.close()
		return err
	}

	a.server = &http.Server{
		Addr:         a.cfg.HTTP.Address,
		Handler:      a.handler,
		ReadTimeout:  config.Duration(a.cfg.HTTP.ReadTimeout, 30*time.Second),
		WriteTimeout: config.Duration(a.cfg.HTTP.WriteTimeout, 5*time.Minute),
		IdleTimeout:  config.Duration(a.cfg.HTTP.IdleTimeout, 2*time.Minute),
	}

	errCh := make(chan error, 1)
	a.wait.Add(1)
	go func() {
		defer a.wait.Done()

		a.log.Info("Listening on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	a.mutex.Unlock()

	var serveErr error
	select {
	case <-ctx.Done():
		a.log.Info("Shutting down...")
	case serveErr = <-errCh:
		a.log.Error("HTTP server failed: %v", serveErr)
	}

	timeout := config.Duration(a.cfg.ShutdownTimeout, 60*time.Second)
	shutdown, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.server.Shutdown(shutdown); err != nil {
		a.log.Warn("Failed to drain HTTP connections: %v", err)
	}

	if err := a.sc.Cleanup(shutdown); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}

	a.wait.Wait()
	a.close()

	return serveErr
}

func (a *ArchiveAgent) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("Failed to close database: %v", err)
		}
	}
	if closer, ok := a.log.(interface{ Close() error }); ok {
		closer.Close()
	}
}
