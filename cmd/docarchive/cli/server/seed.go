package server

import (
	"fmt"

	"github.com/mwantia/docarchive/internal/seed"
	"github.com/spf13/cobra"
)

func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load departments, users, calendar and courses from YAML",
		Long: `Load the university directory from a YAML fixture file.

Rows are matched by natural key (shortcut, external id, year code, course
code), so applying the same file twice creates nothing the second time.
The whole file is applied in one transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := seed.Load(args[0])
			if err != nil {
				return err
			}

			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			result, err := seed.Apply(cmd.Context(), st, fx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Created %d department(s), %d user(s), %d academic year(s), %d semester(s), %d course(s), %d assignment(s)\n",
				result.Departments, result.Users, result.AcademicYears, result.Semesters, result.Courses, result.Assignments)
			return nil
		},
	}

	return cmd
}
