package source

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
)

// Open opens a handle limited to a single connection and verifies it with a
// ping. The handle is closed again when the ping fails, callers own it
// otherwise and must Close it.
func Open(ctx context.Context, d Dialect, dsn string, logger *slog.Logger) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: empty connection string", ErrConfiguration)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	logger.Debug("opening connection", slog.String("dialect", d.Name()), slog.String("driver", d.DriverName()))

	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s connection: %w", ErrConfiguration, d.Name(), err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %s ping failed: %w", ErrConnection, d.Name(), err)
	}
	return db, nil
}
