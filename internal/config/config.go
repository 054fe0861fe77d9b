// Package config handles configuration loading and validation for mmv.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment variable read by mmv.
// Nested keys use a double underscore: MMV_JOURNAL__ENABLED=false.
const EnvPrefix = "MMV_"

// Color modes for output.color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound    ConfigErrorType = "FILE_NOT_FOUND"
	ParseError      ConfigErrorType = "PARSE_ERROR"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
)

// ConfigError represents an error that occurred during configuration loading.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		return fmt.Sprintf("configuration file not found: %s", e.Path)
	case ParseError:
		return fmt.Sprintf("invalid configuration file %s: %s", e.Path, e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

// JournalConfig controls the move journal.
type JournalConfig struct {
	Enabled   bool   `koanf:"enabled" toml:"enabled"`
	Directory string `koanf:"directory" toml:"directory"`
}

// OutputConfig controls terminal output.
type OutputConfig struct {
	Color string `koanf:"color" toml:"color"`
}

// Configuration holds all settings for mmv.
type Configuration struct {
	Force     bool          `koanf:"force" toml:"force"`
	DryRun    bool          `koanf:"dry_run" toml:"dry_run"`
	Verbosity int           `koanf:"verbosity" toml:"verbosity"`
	LogFile   string        `koanf:"log_file" toml:"log_file"`
	Journal   JournalConfig `koanf:"journal" toml:"journal"`
	Output    OutputConfig  `koanf:"output" toml:"output"`
}

// LoadOptions selects the sources merged by Load.
type LoadOptions struct {
	// Path is an explicit config file; it must exist. When empty the default
	// path is used if a file is present there.
	Path string
	// Flags holds values set on the command line, keyed like the config file.
	Flags map[string]interface{}
}

// DefaultPath returns $XDG_CONFIG_HOME/mmv/config.toml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "mmv", "config.toml")
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"force":             false,
		"dry_run":           false,
		"verbosity":         0,
		"log_file":          "",
		"journal.enabled":   true,
		"journal.directory": filepath.Join(xdg.StateHome, "mmv"),
		"output.color":      ColorAuto,
	}
}

// Load merges defaults, the config file, MMV_* environment variables and
// command-line flags, in increasing order of precedence.
func Load(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, &ConfigError{Type: ParseError, Path: "defaults", Message: err.Error()}
	}

	path, err := resolvePath(opts.Path)
	if err != nil {
		return nil, err
	}
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, &ConfigError{Type: ParseError, Path: path, Message: err.Error()}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, &ConfigError{Type: ParseError, Path: "environment", Message: err.Error()}
	}

	if len(opts.Flags) > 0 {
		if err := k.Load(confmap.Provider(opts.Flags, "."), nil); err != nil {
			return nil, &ConfigError{Type: ParseError, Path: "flags", Message: err.Error()}
		}
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, &ConfigError{Type: ParseError, Path: path, Message: err.Error()}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Configuration) Validate() error {
	if c.Verbosity < 0 {
		return &ConfigError{Type: ValidationError, Message: "verbosity cannot be negative"}
	}

	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return &ConfigError{
			Type:    ValidationError,
			Message: fmt.Sprintf("output.color must be one of auto, always, never (got %q)", c.Output.Color),
		}
	}

	if c.Journal.Enabled && c.Journal.Directory == "" {
		return &ConfigError{Type: ValidationError, Message: "journal.directory cannot be empty when the journal is enabled"}
	}
	return nil
}

// Marshal renders the configuration as TOML.
func Marshal(cfg *Configuration) ([]byte, error) {
	return gotoml.Marshal(cfg)
}

// envKey maps MMV_JOURNAL__ENABLED to journal.enabled and MMV_DRY_RUN to dry_run.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func resolvePath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", &ConfigError{Type: FileNotFound, Path: explicit}
			}
			return "", &ConfigError{Type: FileNotFound, Path: explicit, Message: err.Error()}
		}
		return explicit, nil
	}

	def := DefaultPath()
	if _, err := os.Stat(def); err == nil {
		return def, nil
	}
	return "", nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, &ConfigError{
			Type:    ParseError,
			Path:    path,
			Message: "unsupported format, use .toml, .yaml or .yml",
		}
	}
}
