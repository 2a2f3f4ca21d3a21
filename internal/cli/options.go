package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/alexanderjulianmartinez/dataprobe/internal/report"
)

// EnvPrefix is the prefix of environment variables mapped onto the global
// flags, e.g. DATAPROBE_SCHEMA for --schema.
const EnvPrefix = "DATAPROBE_"

// Options are the global settings of one invocation.
type Options struct {
	Config  string        `koanf:"config"`
	DSN     string        `koanf:"dsn"`
	Driver  string        `koanf:"driver"`
	Schema  string        `koanf:"schema"`
	Timeout time.Duration `koanf:"timeout"`
	Format  string        `koanf:"format"`
	Verbose bool          `koanf:"verbose"`
}

// LoadOptions layers defaults, DATAPROBE_* variables and explicitly set
// flags, in increasing priority.
func LoadOptions(flags *pflag.FlagSet) (*Options, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"format":  report.FormatTable,
		"verbose": false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return f.Name, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var opts Options
	if err := k.Unmarshal("", &opts); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return &opts, nil
}
