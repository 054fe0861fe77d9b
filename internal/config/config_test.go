package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the XDG base directories at a temp dir so the user's real
// configuration never leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	// Registered first so it runs after the environment is restored.
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "state"))
	xdg.Reload()
	return home
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.False(t, cfg.Force)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, 0, cfg.Verbosity)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, filepath.Join(home, "state", "mmv"), cfg.Journal.Directory)
	assert.Equal(t, ColorAuto, cfg.Output.Color)
}

func TestLoadDefaultPathWhenPresent(t *testing.T) {
	isolate(t)
	writeConfig(t, DefaultPath(), "force = true\n[output]\ncolor = \"never\"\n")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.True(t, cfg.Force)
	assert.Equal(t, ColorNever, cfg.Output.Color)
}

func TestLoadExplicitTOMLAndYAML(t *testing.T) {
	home := isolate(t)

	tomlPath := filepath.Join(home, "mmv.toml")
	writeConfig(t, tomlPath, "verbosity = 2\n[journal]\nenabled = false\n")

	cfg, err := Load(LoadOptions{Path: tomlPath})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Verbosity)
	assert.False(t, cfg.Journal.Enabled)

	yamlPath := filepath.Join(home, "mmv.yaml")
	writeConfig(t, yamlPath, "dry_run: true\njournal:\n  directory: /tmp/mmv-journal\n")

	cfg, err = Load(LoadOptions{Path: yamlPath})
	require.NoError(t, err)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "/tmp/mmv-journal", cfg.Journal.Directory)
}

func TestLoadPrecedence(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "mmv.toml")
	writeConfig(t, path, "force = true\nverbosity = 1\ndry_run = true\n")

	t.Setenv("MMV_VERBOSITY", "3")
	t.Setenv("MMV_DRY_RUN", "false")
	t.Setenv("MMV_JOURNAL__ENABLED", "false")

	cfg, err := Load(LoadOptions{
		Path:  path,
		Flags: map[string]interface{}{"dry_run": true},
	})
	require.NoError(t, err)

	assert.True(t, cfg.Force, "file overrides default")
	assert.Equal(t, 3, cfg.Verbosity, "env overrides file")
	assert.False(t, cfg.Journal.Enabled, "nested env key")
	assert.True(t, cfg.DryRun, "flag overrides env")
}

func TestLoadErrors(t *testing.T) {
	home := isolate(t)

	tests := []struct {
		name     string
		file     string
		content  string
		expected ConfigErrorType
	}{
		{"missing explicit file", "missing.toml", "", FileNotFound},
		{"unsupported extension", "mmv.ini", "force=true", ParseError},
		{"invalid toml", "bad.toml", "force = = true", ParseError},
		{"invalid color", "color.toml", "[output]\ncolor = \"purple\"\n", ValidationError},
		{"negative verbosity", "verbosity.toml", "verbosity = -1\n", ValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(home, tt.file)
			if tt.content != "" {
				writeConfig(t, path, tt.content)
			}

			_, err := Load(LoadOptions{Path: path})
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.expected, cfgErr.Type)
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	home := isolate(t)

	cfg := &Configuration{
		Force:     true,
		Verbosity: 1,
		Journal:   JournalConfig{Enabled: true, Directory: "/var/tmp/mmv"},
		Output:    OutputConfig{Color: ColorAlways},
	}

	data, err := Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "force = true")
	assert.Contains(t, string(data), "[journal]")

	path := filepath.Join(home, "roundtrip.toml")
	writeConfig(t, path, string(data))

	loaded, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "force", envKey("MMV_FORCE"))
	assert.Equal(t, "dry_run", envKey("MMV_DRY_RUN"))
	assert.Equal(t, "journal.directory", envKey("MMV_JOURNAL__DIRECTORY"))
}
