package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and the settings that depend on each other.
func (cfg *BaseServerConfig) Validate() error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch cfg.Database.Type {
	case "sqlite":
		if cfg.Database.SQLite.Path == "" {
			return fmt.Errorf("invalid configuration: database.sqlite.path is required")
		}
	case "postgres":
		pg := cfg.Database.Postgres
		if pg.Host == "" || pg.Database == "" || pg.User == "" {
			return fmt.Errorf("invalid configuration: database.postgres requires host, database and user")
		}
	}

	durations := map[string]string{
		"shutdown_timeout":     cfg.ShutdownTimeout,
		"http.read_timeout":    cfg.HTTP.ReadTimeout,
		"http.write_timeout":   cfg.HTTP.WriteTimeout,
		"http.idle_timeout":    cfg.HTTP.IdleTimeout,
		"http.request_timeout": cfg.HTTP.RequestTimeout,
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid configuration: %s: %w", key, err)
		}
	}

	return nil
}

