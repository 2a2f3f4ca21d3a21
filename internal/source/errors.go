package source

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the inspector, the sampler and the
// connection helpers wraps exactly one of these, match with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrConnection    = errors.New("connection error")
	ErrInvalidLimit  = errors.New("invalid limit")
	ErrTableNotFound = errors.New("table not found")
	ErrQuery         = errors.New("query failed")
)

// Classify wraps a driver error with the kind the dialect assigns to it.
// Both the kind and the original error stay reachable through errors.Is/As.
func Classify(d Dialect, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	kind := d.ClassifyError(err)
	if kind == nil {
		kind = ErrConnection
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Kind returns the error kind wrapped by err, or nil when err carries none.
func Kind(err error) error {
	for _, kind := range []error{ErrConfiguration, ErrInvalidLimit, ErrTableNotFound, ErrConnection, ErrQuery} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
