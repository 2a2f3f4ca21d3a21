package source

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Dialect)
)

// Register adds a dialect to the registry.
// Called by dialect packages in their init() functions.
func Register(d Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Name()] = d
}

// Lookup returns the dialect registered under name (case-insensitive).
func Lookup(name string) (Dialect, error) {
	registryMu.RLock()
	d, ok := registry[strings.ToLower(name)]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownDialectError{Name: name, Available: Dialects()}
	}
	return d, nil
}

// Dialects returns all registered dialect names (sorted).
func Dialects() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownDialectError is returned when an unregistered dialect is requested.
type UnknownDialectError struct {
	Name      string
	Available []string
}

func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("unknown source type %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// Unwrap makes the error match ErrConfiguration.
func (e *UnknownDialectError) Unwrap() error {
	return ErrConfiguration
}
