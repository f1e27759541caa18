package server

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type BaseServerConfig struct {
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Log      LogServerConfig      `mapstructure:"log"      yaml:"log"`
	Database DatabaseServerConfig `mapstructure:"database" yaml:"database"`
	Storage  StorageServerConfig  `mapstructure:"storage"  yaml:"storage"`
	Upload   UploadServerConfig   `mapstructure:"upload"   yaml:"upload"`
	HTTP     HTTPServerConfig     `mapstructure:"http"     yaml:"http"`
	Metrics  MetricsServerConfig  `mapstructure:"metrics"  yaml:"metrics"`
}

func LoadServerConfig() (*BaseServerConfig, error) {
	cfg := &BaseServerConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Duration parses a duration setting, using fallback if it is empty or
// malformed.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
