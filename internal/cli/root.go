// Package cli provides the dataprobe command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alexanderjulianmartinez/dataprobe/internal/config"
	"github.com/alexanderjulianmartinez/dataprobe/internal/report"
	"github.com/alexanderjulianmartinez/dataprobe/internal/source"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// appKey is used to store the per-run state in the command context.
type appKey struct{}

// app is what PersistentPreRunE prepares for every subcommand.
type app struct {
	opts     *Options
	cfg      *config.Config
	logger   *slog.Logger
	renderer *report.Renderer
	runID    string
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dataprobe",
		Short: "dataprobe - database connectivity and schema probe",
		Long: `dataprobe connects to a relational database, verifies connectivity,
lists tables and columns, and previews the first rows of a table.

Without a subcommand it runs the full diagnostic: ping, schema dump and a
row sample of sample.table (or the first table found).`,
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		RunE:          runDiagnostic,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./"+config.DefaultFile+" when present)")
	flags.String("dsn", "", "connection string (overrides DATABASE_URL and the config file)")
	flags.String("driver", "", "database driver: "+fmt.Sprint(config.SourceTypes)+" (default postgres)")
	flags.String("schema", "", "schema to inspect (default: the driver's default schema)")
	flags.Duration("timeout", 0, "per-statement timeout (default 5s)")
	flags.StringP("format", "o", report.FormatTable, "output format (table|json)")
	flags.BoolP("verbose", "v", false, "verbose logging")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return report.Formats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("driver", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return source.Dialects(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newPingCommand())
	rootCmd.AddCommand(newTablesCommand())
	rootCmd.AddCommand(newSchemaCommand())
	rootCmd.AddCommand(newSampleCommand())
	rootCmd.AddCommand(newCountCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newApp(cmd *cobra.Command) (*app, error) {
	opts, err := LoadOptions(cmd.Root().PersistentFlags())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrConfiguration, err)
	}

	renderer, err := report.NewRenderer(cmd.OutOrStdout(), opts.Format)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	runID := uuid.NewString()
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})).
		With(slog.String("run_id", runID))

	cfg, err := loadConfig(opts.Config, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		opts:     opts,
		cfg:      cfg,
		logger:   logger,
		renderer: renderer,
		runID:    runID,
	}, nil
}

// loadConfig reads the explicit config file, or ./dataprobe.yaml when it
// exists. No file at all yields an empty config.
func loadConfig(path string, logger *slog.Logger) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); errors.Is(err, fs.ErrNotExist) {
			return &config.Config{}, nil
		}
		path = config.DefaultFile
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded config", slog.String("path", path), slog.Int("tables", len(cfg.Tables)))
	return cfg, nil
}

func appFrom(ctx context.Context) *app {
	if a, ok := ctx.Value(appKey{}).(*app); ok {
		return a
	}
	return &app{
		opts:   &Options{Format: report.FormatTable},
		cfg:    &config.Config{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "dataprobe error: %v\n", err)
		return ExitCode(err)
	}
	return 0
}
