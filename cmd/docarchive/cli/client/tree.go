package client

import (
	"context"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/mwantia/docarchive/internal/cli/output"
	"github.com/mwantia/docarchive/internal/service/explorer"
	"github.com/mwantia/docarchive/pkg/access"
	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/spf13/cobra"
)

type treeOptions struct {
	as     string
	format string
}

func NewTreeCommand() *cobra.Command {
	opts := &treeOptions{}

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Browse the virtual archive tree",
		Long: `Browse the virtual year/semester/professor/course/document-type tree
directly against the configured database, as the user given with --as.`,
	}

	cmd.PersistentFlags().StringVar(&opts.as, "as", "", "external id of the acting user")
	cmd.PersistentFlags().StringVarP(&opts.format, "output", "o", "table", "output format (table, json, yaml)")

	cmd.AddCommand(newTreeListCommand(opts))
	cmd.AddCommand(newTreeStatCommand(opts))
	cmd.AddCommand(newTreeCrumbsCommand(opts))
	cmd.AddCommand(newTreeCanCommand(opts))

	return cmd
}

func newTreeListCommand(opts *treeOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ls <path>",
		Short: "List the children of a node",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(ctx context.Context, a *archive, p *output.Printer, user *models.User, path string) error {
			nodes, err := a.explorer.GetChildren(ctx, path, user)
			if err != nil {
				return err
			}
			return p.PrintTo(nodeTable(nodes...), nodes)
		}),
	}
}

func newTreeStatCommand(opts *treeOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Show a single node",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(ctx context.Context, a *archive, p *output.Printer, user *models.User, path string) error {
			node, err := a.explorer.GetNode(ctx, path, user)
			if err != nil {
				return err
			}
			node.Children = nil
			return p.PrintTo(nodeTable(*node), node)
		}),
	}
}

func newTreeCrumbsCommand(opts *treeOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "crumbs <path>",
		Short: "Show the breadcrumb trail of a path",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(ctx context.Context, a *archive, p *output.Printer, user *models.User, path string) error {
			crumbs, err := a.explorer.Breadcrumbs(ctx, path, user)
			if err != nil {
				return err
			}

			table := output.NewTableData("Name", "Kind", "Path")
			for _, c := range crumbs {
				table.AddRow(c.Name, string(c.Kind), c.Path)
			}
			return p.PrintTo(table, crumbs)
		}),
	}
}

func newTreeCanCommand(opts *treeOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "can <path>",
		Short: "Show what the acting user may do on a path",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(ctx context.Context, a *archive, p *output.Printer, user *models.User, path string) error {
			decision, err := a.explorer.Permissions(ctx, path, user)
			if err != nil {
				return err
			}

			table := output.NewTableData("Read", "Write", "Delete")
			table.AddRow(
				strconv.FormatBool(decision.CanRead),
				strconv.FormatBool(decision.CanWrite),
				strconv.FormatBool(decision.CanDelete))
			return p.PrintTo(table, decision)
		}),
	}
}

type treeFunc func(ctx context.Context, a *archive, p *output.Printer, user *models.User, path string) error

func (opts *treeOptions) run(fn treeFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(opts.format)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := openArchive(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.principal(ctx, opts.as)
		if err != nil {
			return err
		}

		return fn(ctx, a, output.NewPrinter(cmd.OutOrStdout(), format), user, args[0])
	}
}

func nodeTable(nodes ...explorer.Node) *output.TableData {
	table := output.NewTableData("Name", "Kind", "Size", "Access", "Path")
	for _, n := range nodes {
		table.AddRow(n.Name, string(n.Kind), size(n), flags(n.Decision), n.Path)
	}
	return table
}

func size(n explorer.Node) string {
	if v, ok := n.Metadata["fileSize"].(int64); ok {
		return humanize.Bytes(uint64(v))
	}
	if v, ok := n.Metadata["fileCount"].(int); ok {
		return strconv.Itoa(v) + " file(s)"
	}
	return "-"
}

// flags renders a decision like a permission mask, e.g. "rw-".
func flags(d access.Decision) string {
	mask := []byte("---")
	if d.CanRead {
		mask[0] = 'r'
	}
	if d.CanWrite {
		mask[1] = 'w'
	}
	if d.CanDelete {
		mask[2] = 'd'
	}
	return string(mask)
}
