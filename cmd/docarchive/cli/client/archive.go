package client

import (
	"context"
	"fmt"

	"github.com/mwantia/docarchive/internal/agent"
	"github.com/mwantia/docarchive/internal/service/explorer"
	"github.com/mwantia/docarchive/internal/service/folder"
	"github.com/mwantia/docarchive/pkg/access"
	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/mwantia/docarchive/pkg/db/store"
	"github.com/mwantia/docarchive/pkg/log"
	"github.com/mwantia/docarchive/pkg/metrics"
	"github.com/mwantia/docarchive/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"

	config "github.com/mwantia/docarchive/internal/config/server"
)

// archive is a read-side view of the configured database and upload root.
type archive struct {
	store    *store.GORMStore
	explorer *explorer.Service
}

func openArchive(ctx context.Context) (*archive, error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load server configuration: %w", err)
	}

	st, err := agent.OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	disk, err := storage.NewDisk(cfg.Storage.UploadRoot)
	if err != nil {
		st.Close()
		return nil, err
	}

	logger := log.NewLoggerService("docarchive", cfg.Log)
	m := metrics.New(prometheus.NewRegistry())
	resolver := access.NewResolver(logger.Named("access"), m)
	folders := folder.NewService(st, disk, resolver, m, logger.Named("folder"))

	return &archive{
		store:    st,
		explorer: explorer.NewService(st, folders, resolver, logger.Named("explorer")),
	}, nil
}

func (a *archive) Close() error {
	return a.store.Close()
}

// principal resolves --as to an active user.
func (a *archive) principal(ctx context.Context, externalID string) (*models.User, error) {
	if externalID == "" {
		return nil, fmt.Errorf("--as is required")
	}
	user, err := a.store.GetUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, fmt.Errorf("user %s is inactive", externalID)
	}
	return user, nil
}
