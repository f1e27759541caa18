package server

import (
	"context"
	"fmt"

	"github.com/mwantia/docarchive/internal/agent"
	"github.com/spf13/cobra"

	config "github.com/mwantia/docarchive/internal/config/server"
)

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the archive HTTP server",
		Long: `Start the archive HTTP server.

Pending database migrations are applied on startup. The server stops
gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			return agent.NewAgent(cfg).Serve(context.Background())
		},
	}

	return cmd
}
