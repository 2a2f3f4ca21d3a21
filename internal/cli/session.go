package cli

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/alexanderjulianmartinez/dataprobe/internal/config"
	"github.com/alexanderjulianmartinez/dataprobe/internal/inspect"
	"github.com/alexanderjulianmartinez/dataprobe/internal/sample"
	"github.com/alexanderjulianmartinez/dataprobe/internal/source"

	// dialects register themselves
	_ "github.com/alexanderjulianmartinez/dataprobe/internal/source/mysql"
	_ "github.com/alexanderjulianmartinez/dataprobe/internal/source/postgres"
	_ "github.com/alexanderjulianmartinez/dataprobe/internal/source/sqlite"
)

// DefaultDriver is used when neither --driver nor source.type is set.
const DefaultDriver = "postgres"

// ErrCheckFailed is returned by `check` when a BLOCK issue was found.
var ErrCheckFailed = errors.New("check found blocking issues")

// session is one open connection plus the components that use it.
type session struct {
	db        *sql.DB
	dialect   source.Dialect
	schema    string
	inspector *inspect.Inspector
	sampler   *sample.Sampler
}

func (s *session) Close() error {
	return s.db.Close()
}

// open resolves the connection string, picks the dialect and connects.
// Flags win over the config file for driver, schema and timeout.
func (a *app) open(ctx context.Context) (*session, error) {
	driver := firstNonEmpty(a.opts.Driver, a.cfg.Source.Type, DefaultDriver)
	d, err := source.Lookup(driver)
	if err != nil {
		return nil, err
	}

	resolver := &config.Resolver{
		Providers: config.DefaultProviders(a.opts.DSN, a.cfg),
		Logger:    a.logger,
	}
	res, err := resolver.Resolve()
	if err != nil {
		return nil, err
	}

	dsn, dsnSchema := config.StripSchemaParam(res.DSN)
	schema := firstNonEmpty(a.opts.Schema, a.cfg.Source.Schema, dsnSchema)

	timeout := a.opts.Timeout
	if timeout == 0 {
		timeout = a.cfg.Source.Timeout
	}

	a.logger.Info("connecting",
		slog.String("driver", d.Name()),
		slog.String("dsn_from", res.Provider),
		slog.String("schema", schema))

	connectCtx, cancel := source.WithTimeout(ctx, (source.Options{Timeout: timeout}).StatementTimeout())
	defer cancel()
	db, err := source.Open(connectCtx, d, dsn, a.logger)
	if err != nil {
		return nil, err
	}

	opts := source.Options{Timeout: timeout, Logger: a.logger}
	inspector := inspect.NewInspector(db, d, opts)
	// sample the schema the catalog was read from, not whatever the search path picks
	return &session{
		db:        db,
		dialect:   d,
		schema:    schema,
		inspector: inspector,
		sampler:   sample.NewSampler(db, d, inspector.Schema(schema), opts),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Exit codes by error kind.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitConnection    = 3
	ExitTableNotFound = 4
)

// ExitCode maps an error returned by the command tree onto a process exit
// code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, source.ErrConfiguration), errors.Is(err, source.ErrInvalidLimit):
		return ExitConfiguration
	case errors.Is(err, source.ErrConnection):
		return ExitConnection
	case errors.Is(err, source.ErrTableNotFound):
		return ExitTableNotFound
	default:
		return ExitFailure
	}
}
