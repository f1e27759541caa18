package agent

import (
	"context"
	"fmt"

	config "github.com/mwantia/docarchive/internal/config/server"
	"github.com/mwantia/docarchive/pkg/db/store"
)

// StoreConfig maps the server database settings onto the store package.
func StoreConfig(cfg config.DatabaseServerConfig) *store.Config {
	return &store.Config{
		Type: store.DatabaseType(cfg.Type),
		SQLite: store.SQLiteConfig{
			Path: cfg.SQLite.Path,
		},
		Postgres: store.PostgresConfig{
			Host:         cfg.Postgres.Host,
			Port:         cfg.Postgres.Port,
			Database:     cfg.Postgres.Database,
			User:         cfg.Postgres.User,
			Password:     cfg.Postgres.Password,
			SSLMode:      cfg.Postgres.SSLMode,
			MaxOpenConns: cfg.Postgres.MaxOpenConns,
			MaxIdleConns: cfg.Postgres.MaxIdleConns,
		},
	}
}

// OpenStore opens and pings the configured database without migrating it.
func OpenStore(ctx context.Context, cfg config.DatabaseServerConfig) (*store.GORMStore, error) {
	st, err := store.New(StoreConfig(cfg))
	if err != nil {
		return nil, err
	}
	if err := st.Connect(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Type, err)
	}
	return st, nil
}
