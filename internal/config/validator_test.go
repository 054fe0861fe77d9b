package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func hasField(findings []ConfigValidationError, field string) bool {
	for _, f := range findings {
		if f.Field == field {
			return true
		}
	}
	return false
}

func TestValidateConfigCleanConfiguration(t *testing.T) {
	dir := t.TempDir()
	cfg := &Configuration{
		Journal: JournalConfig{Enabled: true, Directory: dir},
		Output:  OutputConfig{Color: ColorAuto},
	}

	result := ValidateConfig(cfg)
	if !result.Valid {
		t.Errorf("expected valid configuration, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got: %v", result.Warnings)
	}
}

func TestValidatePaths(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		cfg      Configuration
		field    string
		severity ValidationSeverity
		contains string
	}{
		{
			name:     "journal directory is a file",
			cfg:      Configuration{Journal: JournalConfig{Enabled: true, Directory: file}},
			field:    "journal.directory",
			severity: SeverityError,
			contains: "not a directory",
		},
		{
			name:     "journal directory will be created",
			cfg:      Configuration{Journal: JournalConfig{Enabled: true, Directory: filepath.Join(dir, "a", "b")}},
			field:    "journal.directory",
			severity: SeverityWarning,
			contains: "will be created",
		},
		{
			name:     "log file below a file",
			cfg:      Configuration{LogFile: filepath.Join(file, "mmv.log")},
			field:    "log_file",
			severity: SeverityError,
			contains: "not a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := ValidatePaths(&tt.cfg)
			if len(findings) != 1 {
				t.Fatalf("expected one finding, got %v", findings)
			}
			f := findings[0]
			if f.Field != tt.field {
				t.Errorf("Field = %q, want %q", f.Field, tt.field)
			}
			if f.Severity != tt.severity {
				t.Errorf("Severity = %q, want %q", f.Severity, tt.severity)
			}
			if !strings.Contains(f.Message, tt.contains) {
				t.Errorf("Message = %q, want it to contain %q", f.Message, tt.contains)
			}
		})
	}
}

func TestValidatePathsSkipsDisabledJournal(t *testing.T) {
	cfg := &Configuration{Journal: JournalConfig{Enabled: false, Directory: "/dev/null/impossible"}}
	if findings := ValidatePaths(cfg); len(findings) != 0 {
		t.Errorf("expected no findings for a disabled journal, got %v", findings)
	}
}

func TestValidateDefaultsWarnings(t *testing.T) {
	cfg := &Configuration{Force: true, DryRun: true, Journal: JournalConfig{Enabled: false}}

	result := ValidateConfig(cfg)
	if !result.Valid {
		t.Errorf("warnings must not invalidate the configuration: %v", result.Errors)
	}
	for _, field := range []string{"force", "dry_run", "journal.enabled"} {
		if !hasField(result.Warnings, field) {
			t.Errorf("expected a warning for %s, got %v", field, result.Warnings)
		}
	}
}
