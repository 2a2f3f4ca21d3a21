package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/knadh/koanf/parsers/dotenv"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/alexanderjulianmartinez/dataprobe/internal/source"
)

// ErrNotProvided is returned by a Provider that has no connection string to
// offer. The resolver moves on to the next provider.
var ErrNotProvided = errors.New("connection string not provided")

// Provider is one source of a connection string.
type Provider interface {
	Name() string
	ConnectionString() (string, error)
}

// StaticProvider offers a fixed value, typically the --dsn flag.
type StaticProvider struct {
	Label string
	Value string
}

func (p StaticProvider) Name() string { return p.Label }

func (p StaticProvider) ConnectionString() (string, error) {
	if p.Value == "" {
		return "", ErrNotProvided
	}
	return p.Value, nil
}

// EnvProvider reads one environment variable.
type EnvProvider struct {
	Var string
}

func (p EnvProvider) Name() string { return "env " + p.Var }

func (p EnvProvider) ConnectionString() (string, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider(p.Var, ".", func(s string) string {
		if s != p.Var {
			return ""
		}
		return s
	}), nil); err != nil {
		return "", fmt.Errorf("load %s: %w", p.Var, err)
	}
	if v := k.String(p.Var); v != "" {
		return v, nil
	}
	return "", ErrNotProvided
}

// DotenvProvider reads one variable from a .env file without touching the
// process environment. A missing file is not an error.
type DotenvProvider struct {
	Path string
	Var  string
}

func (p DotenvProvider) Name() string { return p.Path + " " + p.Var }

func (p DotenvProvider) ConnectionString() (string, error) {
	if _, err := os.Stat(p.Path); errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotProvided
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(p.Path), dotenv.Parser()); err != nil {
		return "", fmt.Errorf("read %s: %w", p.Path, err)
	}
	if v := k.String(p.Var); v != "" {
		return v, nil
	}
	return "", ErrNotProvided
}

// JSONFileProvider reads a string key from a JSON document such as
// {"connection": "postgres://..."}. A missing file is not an error.
type JSONFileProvider struct {
	Path string
	Key  string
}

func (p JSONFileProvider) Name() string { return p.Path }

func (p JSONFileProvider) ConnectionString() (string, error) {
	if _, err := os.Stat(p.Path); errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotProvided
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(p.Path), kjson.Parser()); err != nil {
		return "", fmt.Errorf("read %s: %w", p.Path, err)
	}
	if v := k.String(p.Key); v != "" {
		return v, nil
	}
	return "", ErrNotProvided
}

// ConfigProvider offers source.dsn of a loaded YAML config.
type ConfigProvider struct {
	Config *Config
}

func (p ConfigProvider) Name() string { return "config source.dsn" }

func (p ConfigProvider) ConnectionString() (string, error) {
	if p.Config == nil || p.Config.Source.DSN == "" {
		return "", ErrNotProvided
	}
	return p.Config.Source.DSN, nil
}

// DefaultProviders is the lookup order used by the CLI: the --dsn flag,
// DATABASE_URL from the environment and then from ./.env, the YAML config,
// then the "connection" key of config.json.
func DefaultProviders(flagDSN string, cfg *Config) []Provider {
	return []Provider{
		StaticProvider{Label: "flag --dsn", Value: flagDSN},
		EnvProvider{Var: "DATABASE_URL"},
		DotenvProvider{Path: ".env", Var: "DATABASE_URL"},
		ConfigProvider{Config: cfg},
		JSONFileProvider{Path: "config.json", Key: "connection"},
	}
}

// Resolution is the winning connection string and where it came from.
type Resolution struct {
	DSN      string
	Provider string
}

type Resolver struct {
	Providers []Provider
	Logger    *slog.Logger
}

// Resolve asks each provider in order and returns the first connection
// string offered. A provider error other than ErrNotProvided stops the chain.
func (r *Resolver) Resolve() (*Resolution, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	for _, p := range r.Providers {
		dsn, err := p.ConnectionString()
		if errors.Is(err, ErrNotProvided) {
			logger.Debug("connection string not found", slog.String("provider", p.Name()))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: provider %s: %w", source.ErrConfiguration, p.Name(), err)
		}
		logger.Debug("connection string resolved", slog.String("provider", p.Name()))
		return &Resolution{DSN: dsn, Provider: p.Name()}, nil
	}
	return nil, fmt.Errorf("%w: no connection string: pass --dsn, set DATABASE_URL (environment or .env), or configure source.dsn", source.ErrConfiguration)
}
