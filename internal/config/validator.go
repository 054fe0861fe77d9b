package config

import (
	"os"
	"path/filepath"
)

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ConfigValidationError represents a single validation issue.
type ConfigValidationError struct {
	Field    string             // Config key with issue (e.g., "journal.directory")
	Message  string             // Human-readable description
	Severity ValidationSeverity // "error" or "warning"
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	Errors   []ConfigValidationError
	Warnings []ConfigValidationError
	Valid    bool // True if no errors (warnings OK)
}

// ValidateConfig checks the effective configuration against the local
// filesystem and returns all findings. Unlike Validate it never fails a load;
// it backs `mmv config --check`.
func ValidateConfig(cfg *Configuration) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ConfigValidationError{},
		Warnings: []ConfigValidationError{},
		Valid:    true,
	}

	findings := append(ValidatePaths(cfg), ValidateDefaults(cfg)...)
	for _, f := range findings {
		if f.Severity == SeverityError {
			result.Errors = append(result.Errors, f)
		} else {
			result.Warnings = append(result.Warnings, f)
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// ValidatePaths checks that the journal directory and the log file location
// exist or can be created.
func ValidatePaths(cfg *Configuration) []ConfigValidationError {
	var errors []ConfigValidationError

	if cfg.Journal.Enabled {
		errors = append(errors, checkDirectory("journal.directory", cfg.Journal.Directory)...)
	}
	if cfg.LogFile != "" {
		errors = append(errors, checkDirectory("log_file", filepath.Dir(cfg.LogFile))...)
	}
	return errors
}

// ValidateDefaults warns about settings that change the behaviour of every run.
func ValidateDefaults(cfg *Configuration) []ConfigValidationError {
	var warnings []ConfigValidationError

	if cfg.Force {
		warnings = append(warnings, ConfigValidationError{
			Field:    "force",
			Message:  "existing destinations are overwritten on every run",
			Severity: SeverityWarning,
		})
	}
	if cfg.DryRun {
		warnings = append(warnings, ConfigValidationError{
			Field:    "dry_run",
			Message:  "every run is a dry run; no file is moved",
			Severity: SeverityWarning,
		})
	}
	if !cfg.Journal.Enabled {
		warnings = append(warnings, ConfigValidationError{
			Field:    "journal.enabled",
			Message:  "journal disabled; runs cannot be undone",
			Severity: SeverityWarning,
		})
	}
	return warnings
}

// checkDirectory reports whether dir is a writable directory, or can be
// created below its nearest existing ancestor.
func checkDirectory(field, dir string) []ConfigValidationError {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return []ConfigValidationError{{
				Field:    field,
				Message:  "path exists but is not a directory: " + dir,
				Severity: SeverityError,
			}}
		}
		if !isDirectoryWritable(dir) {
			return []ConfigValidationError{{
				Field:    field,
				Message:  "directory is not writable: " + dir,
				Severity: SeverityError,
			}}
		}
		return nil
	}

	if !os.IsNotExist(err) {
		return []ConfigValidationError{{
			Field:    field,
			Message:  "error accessing directory: " + err.Error(),
			Severity: SeverityError,
		}}
	}

	ancestor := filepath.Dir(dir)
	for {
		info, err := os.Stat(ancestor)
		if err == nil {
			if !info.IsDir() {
				return []ConfigValidationError{{
					Field:    field,
					Message:  "parent path is not a directory: " + ancestor,
					Severity: SeverityError,
				}}
			}
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}

	if !isDirectoryWritable(ancestor) {
		return []ConfigValidationError{{
			Field:    field,
			Message:  "cannot create " + dir + ": " + ancestor + " is not writable",
			Severity: SeverityError,
		}}
	}
	return []ConfigValidationError{{
		Field:    field,
		Message:  "directory does not exist yet and will be created: " + dir,
		Severity: SeverityWarning,
	}}
}

// isDirectoryWritable checks if a directory is writable by attempting to create a temp file.
func isDirectoryWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".mmv_write_test")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
