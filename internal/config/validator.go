package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ConfigValidationError represents a single validation issue.
type ConfigValidationError struct {
	Field    string             // Config field with issue (e.g., "destDir")
	Message  string             // Human-readable description
	Severity ValidationSeverity // "error" or "warning"
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	Errors   []ConfigValidationError
	Warnings []ConfigValidationError
	Valid    bool // True if no errors (warnings OK)
}

// ValidateConfig checks the configuration against the filesystem and returns
// every finding, not just the first. Field-level problems reported by
// Validate are included as errors.
func ValidateConfig(cfg *Configuration) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ConfigValidationError{},
		Warnings: []ConfigValidationError{},
	}

	var findings []ConfigValidationError
	if err := cfg.Validate(); err != nil {
		findings = append(findings, ConfigValidationError{
			Field:    "configuration",
			Message:  err.Error(),
			Severity: SeverityError,
		})
	}
	findings = append(findings, ValidatePaths(cfg)...)

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

// ValidatePaths checks that the source directory exists and that the
// destination directory exists or can be created.
func ValidatePaths(cfg *Configuration) []ConfigValidationError {
	var errs []ConfigValidationError

	if cfg.SourceDir != "" {
		info, err := os.Stat(cfg.SourceDir)
		switch {
		case os.IsNotExist(err):
			errs = append(errs, ConfigValidationError{
				Field:    "sourceDir",
				Message:  "directory does not exist: " + cfg.SourceDir,
				Severity: SeverityError,
			})
		case os.IsPermission(err):
			errs = append(errs, ConfigValidationError{
				Field:    "sourceDir",
				Message:  "directory is not accessible: " + cfg.SourceDir,
				Severity: SeverityError,
			})
		case err != nil:
			errs = append(errs, ConfigValidationError{
				Field:    "sourceDir",
				Message:  "error accessing directory: " + err.Error(),
				Severity: SeverityError,
			})
		case !info.IsDir():
			errs = append(errs, ConfigValidationError{
				Field:    "sourceDir",
				Message:  "path is not a directory: " + cfg.SourceDir,
				Severity: SeverityError,
			})
		}
	}

	if cfg.DestDir != "" {
		if f := validateCreatableDir("destDir", cfg.DestDir); f != nil {
			errs = append(errs, *f)
		}
	}

	if cfg.SourceDir != "" && cfg.DestDir != "" && directoriesOverlap(cfg.SourceDir, cfg.DestDir) {
		errs = append(errs, ConfigValidationError{
			Field:    "destDir",
			Message:  fmt.Sprintf("destination %q overlaps source %q; episode folders will appear inside the source tree", cfg.DestDir, cfg.SourceDir),
			Severity: SeverityWarning,
		})
	}

	return errs
}

// validateCreatableDir accepts an existing directory, or a missing one whose
// nearest existing ancestor is a writable directory.
func validateCreatableDir(field, dir string) *ConfigValidationError {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return &ConfigValidationError{
				Field:    field,
				Message:  "path exists but is not a directory: " + dir,
				Severity: SeverityError,
			}
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return &ConfigValidationError{
			Field:    field,
			Message:  "error accessing directory: " + err.Error(),
			Severity: SeverityError,
		}
	}

	parent := filepath.Dir(filepath.Clean(dir))
	for {
		parentInfo, parentErr := os.Stat(parent)
		if parentErr == nil {
			if !parentInfo.IsDir() {
				return &ConfigValidationError{
					Field:    field,
					Message:  "parent path is not a directory: " + parent,
					Severity: SeverityError,
				}
			}
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			return &ConfigValidationError{
				Field:    field,
				Message:  "no existing parent directory for: " + dir,
				Severity: SeverityError,
			}
		}
		parent = next
	}

	if !isDirectoryWritable(parent) {
		return &ConfigValidationError{
			Field:    field,
			Message:  "parent directory is not writable: " + parent,
			Severity: SeverityError,
		}
	}
	return nil
}

// isDirectoryWritable checks if a directory is writable by attempting to create a temp file.
func isDirectoryWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".episodic_write_test*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

// directoriesOverlap checks if two directories overlap (one is parent/ancestor of the other).
func directoriesOverlap(dir1, dir2 string) bool {
	clean1 := filepath.Clean(dir1)
	clean2 := filepath.Clean(dir2)

	if clean1 == clean2 {
		return true
	}
	if strings.HasPrefix(clean2, clean1+string(filepath.Separator)) {
		return true
	}
	return strings.HasPrefix(clean1, clean2+string(filepath.Separator))
}
