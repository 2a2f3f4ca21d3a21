package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alexanderjulianmartinez/dataprobe/internal/drift"
	"github.com/alexanderjulianmartinez/dataprobe/internal/sample"
	"github.com/alexanderjulianmartinez/dataprobe/internal/source"
	"github.com/alexanderjulianmartinez/dataprobe/pkg/types"
)

// runDiagnostic is the default command: ping, schema dump, row preview.
func runDiagnostic(cmd *cobra.Command, _ []string) error {
	a := appFrom(cmd.Context())
	ctx := cmd.Context()

	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	now, err := s.inspector.CheckConnection(ctx)
	if err != nil {
		return err
	}

	catalog, err := s.inspector.Inspect(ctx, s.schema)
	if err != nil {
		return err
	}

	result := &types.DiagnosticResult{
		RunID:      a.runID,
		Driver:     s.dialect.Name(),
		Schema:     catalog.Schema,
		ServerTime: now,
		Tables:     make([]types.Table, 0, len(catalog.Tables)),
	}
	for _, t := range catalog.Tables {
		result.Tables = append(result.Tables, types.Table{Name: t.Name, Columns: t.ColumnNames()})
	}

	table := a.cfg.Sample.Table
	if table == "" && len(catalog.Tables) > 0 {
		table = catalog.Tables[0].Name
	}
	if table != "" {
		limit := a.cfg.Sample.Limit
		if limit == 0 {
			limit = sample.DefaultLimit
		}
		rows, err := s.sampler.SampleRows(ctx, table, limit)
		if err != nil {
			return err
		}
		result.Sample = &types.Sample{Table: rows.Table, Columns: rows.Columns, Rows: rows.Rows}
	}

	a.logger.Debug("diagnostic complete", slog.Int("tables", len(result.Tables)))
	return a.renderer.Diagnostic(result)
}

func newPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity and print the server time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd.Context())
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			now, err := s.inspector.CheckConnection(cmd.Context())
			if err != nil {
				return err
			}
			return a.renderer.Connection(s.dialect.Name(), now)
		},
	}
}

func newTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the base tables of the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd.Context())
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			tables, err := s.inspector.ListTables(cmd.Context(), s.schema)
			if err != nil {
				return err
			}
			return a.renderer.Tables(s.inspector.Schema(s.schema), tables)
		},
	}
}

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [table]",
		Short: "Show the columns of every table, or of one table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())
			ctx := cmd.Context()
			s, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if len(args) == 0 {
				catalog, err := s.inspector.Inspect(ctx, s.schema)
				if err != nil {
					return err
				}
				return a.renderer.Catalog(catalog)
			}

			schema := s.inspector.Schema(s.schema)
			cols, err := s.inspector.ListColumns(ctx, schema, args[0])
			if err != nil {
				return err
			}
			// the catalog has no rows for tables that do not exist
			if len(cols) == 0 {
				return fmt.Errorf("%w: %q in schema %s", source.ErrTableNotFound, args[0], schema)
			}
			return a.renderer.Catalog(&source.Catalog{
				Schema: schema,
				Tables: []source.TableEntry{{Name: args[0], Columns: cols}},
			})
		},
	}
}

func newSampleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample <table>",
		Short: "Preview the first rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())

			limit, _ := cmd.Flags().GetInt("limit")
			if !cmd.Flags().Changed("limit") && a.cfg.Sample.Limit > 0 {
				limit = a.cfg.Sample.Limit
			}
			if limit <= 0 {
				return fmt.Errorf("%w: --limit must be positive, got %d", source.ErrInvalidLimit, limit)
			}

			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			rows, err := s.sampler.SampleRows(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return a.renderer.Sample(rows)
		},
	}
	cmd.Flags().IntP("limit", "n", sample.DefaultLimit, "maximum number of rows")
	return cmd
}

func newCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count <table>",
		Short: "Count the rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			n, err := s.sampler.CountRows(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.renderer.Count(args[0], n)
		},
	}
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the tables declared in the config against the database",
		Long: `check compares the tables listed under "tables" in the config file with the
live catalog. A missing table is BLOCK, a missing column WARN and an
undeclared column INFO. Any BLOCK issue makes the command fail.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd.Context())
			if len(a.cfg.Tables) == 0 {
				return fmt.Errorf("%w: no tables declared in config; pass --config <path>", source.ErrConfiguration)
			}

			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			catalog, err := s.inspector.Inspect(cmd.Context(), s.schema)
			if err != nil {
				return err
			}

			rep := drift.Validate(catalog, a.cfg.Tables)
			a.logger.Info("check finished", slog.Int("issues", len(rep.Issues)))
			if err := a.renderer.Check(rep); err != nil {
				return err
			}
			if rep.HasBlocking() {
				return ErrCheckFailed
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dataprobe v%s (%s)\n", Version, GitCommit)
		},
	}
}
