package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/mwantia/docarchive/internal/agent"
	"github.com/mwantia/docarchive/internal/cli/output"
	"github.com/mwantia/docarchive/pkg/db/migrations"
	"github.com/mwantia/docarchive/pkg/db/store"
	"github.com/spf13/cobra"

	config "github.com/mwantia/docarchive/internal/config/server"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m *migrations.Migrator) error {
			pending, err := m.Pending(cmd.Context())
			if err != nil {
				return err
			}
			if err := m.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d schema version(s), archive schema is up to date\n", pending)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rollback",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m *migrations.Migrator) error {
			if err := m.Rollback(cmd.Context()); err != nil {
				if errors.Is(err, migrations.ErrNothingToRollback) {
					fmt.Fprintln(cmd.OutOrStdout(), "Archive schema is empty, nothing to roll back")
					return nil
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Rolled back the newest archive schema version")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m *migrations.Migrator) error {
			statuses, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}

			table := output.NewTableData("Version", "Description", "Applied")
			for _, s := range statuses {
				applied := "pending"
				if s.AppliedAt != nil {
					applied = humanize.Time(*s.AppliedAt)
				}
				table.AddRow(strconv.Itoa(s.Version), s.Description, applied)
			}
			return output.PrintTable(cmd.OutOrStdout(), table)
		}),
	})

	return cmd
}

func withMigrator(fn func(*cobra.Command, *migrations.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		return fn(cmd, migrations.NewMigrator(st.DB()))
	}
}

func openStore(cmd *cobra.Command) (*store.GORMStore, error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load server configuration: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return agent.OpenStore(ctx, cfg.Database)
}
