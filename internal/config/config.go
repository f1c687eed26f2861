// Package config loads padpainter settings from defaults, an optional YAML
// file, PADPAINTER_* environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/OpenTraceLab/padpainter/internal/logging"
	"github.com/OpenTraceLab/padpainter/pkg/kicad/libtable"
)

const (
	// EnvPrefix prefixes every environment override, e.g. PADPAINTER_BOARD.
	EnvPrefix = "PADPAINTER_"

	DefaultOutput    = "table"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "console"
)

// FileNames are looked up in the working directory when no --config is given.
var FileNames = []string{"padpainter.yaml", "padpainter.yml"}

// listKeys hold comma separated values when they come from the environment.
var listKeys = map[string]bool{
	"refs":      true,
	"units":     true,
	"functions": true,
	"states":    true,
}

// Config is the merged padpainter configuration.
type Config struct {
	Board      string `koanf:"board"`
	Netlist    string `koanf:"netlist"`
	ConfigHome string `koanf:"config_home"`

	Refs      []string `koanf:"refs"`
	Units     []string `koanf:"units"`
	PinNumber string   `koanf:"pin_number"`
	PinName   string   `koanf:"pin_name"`
	Functions []string `koanf:"functions"`
	States    []string `koanf:"states"`

	Output    string `koanf:"output"`
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
	Verbose   bool   `koanf:"verbose"`

	// FileUsed is the config file that was read, if any.
	FileUsed string `koanf:"-"`
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:       c.LogLevel,
		Format:      c.LogFormat,
		Development: c.Verbose,
	}
}

// findConfigFile finds the config file to use.
// Priority: explicit path > padpainter.yaml > padpainter.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range FileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"config_home": libtable.DefaultConfigHome(),
		"output":      DefaultOutput,
		"log_format":  DefaultLogFormat,
		"verbose":     false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: PADPAINTER_CONFIG_HOME -> config_home
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if key == "config" {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = used

	// An explicit level from any source wins over --verbose.
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
		if cfg.Verbose {
			cfg.LogLevel = "debug"
		}
	}

	// Paths in a config file are relative to the file, not the working directory.
	if used != "" {
		base := filepath.Dir(used)
		if !flagChanged(flags, "board") && os.Getenv(EnvPrefix+"BOARD") == "" {
			cfg.Board = resolvePathRelativeTo(cfg.Board, base)
		}
		if !flagChanged(flags, "netlist") && os.Getenv(EnvPrefix+"NETLIST") == "" {
			cfg.Netlist = resolvePathRelativeTo(cfg.Netlist, base)
		}
	}

	return &cfg, nil
}

func flagChanged(flags *pflag.FlagSet, name string) bool {
	return flags != nil && flags.Changed(name)
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
