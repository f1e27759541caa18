package server

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := GetServerDefault()
	require.NoError(t, cfg.Validate())
}

func TestLoadServerConfigAppliesOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("upload.max_files", 3)
	viper.Set("storage.upload_root", "/srv/archive")

	cfg, err := LoadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Upload.MaxFiles)
	assert.Equal(t, "/srv/archive", cfg.Storage.UploadRoot)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "X-Archive-User", cfg.HTTP.PrincipalHeader)
}

func TestValidateRejects(t *testing.T) {
	tests := map[string]func(*BaseServerConfig){
		"unknown database":      func(c *BaseServerConfig) { c.Database.Type = "oracle" },
		"empty upload root":     func(c *BaseServerConfig) { c.Storage.UploadRoot = "" },
		"zero file size":        func(c *BaseServerConfig) { c.Upload.MaxFileSize = 0 },
		"batch below file size": func(c *BaseServerConfig) { c.Upload.MaxBatchSize = c.Upload.MaxFileSize - 1 },
		"dotted extension":      func(c *BaseServerConfig) { c.Upload.AllowedExtensions = []string{".pdf"} },
		"no extensions":         func(c *BaseServerConfig) { c.Upload.AllowedExtensions = nil },
		"bad address":           func(c *BaseServerConfig) { c.HTTP.Address = "localhost" },
		"bad duration":          func(c *BaseServerConfig) { c.HTTP.ReadTimeout = "soon" },
		"bad log level":         func(c *BaseServerConfig) { c.Log.Level = "LOUD" },
		"postgres without host": func(c *BaseServerConfig) { c.Database.Type = "postgres"; c.Database.Postgres.Host = "" },
		"sqlite without path":   func(c *BaseServerConfig) { c.Database.SQLite.Path = "" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := GetServerDefault()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, Duration("5s", time.Minute))
	assert.Equal(t, time.Minute, Duration("", time.Minute))
	assert.Equal(t, time.Minute, Duration("nope", time.Minute))
}
