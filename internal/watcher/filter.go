package watcher

import (
	"path/filepath"
	"strings"

	"episodic/internal/scanner"
)

// DefaultIgnorePatterns returns the default patterns for temporary files to ignore.
func DefaultIgnorePatterns() []string {
	return []string{
		"*.tmp",
		"*.part",
		"*.download",
		"*.crdownload", // Chrome partial downloads
		"*.partial",    // Generic partial file
		".~*",          // Hidden temp files (e.g., .~lock)
		".*.part",      // In-flight copies
	}
}

// FileFilter decides which source paths can change the outcome of a batch.
type FileFilter struct {
	extension string
	patterns  []string
}

// NewFileFilter creates a FileFilter accepting files with the given
// extension that match none of the ignore patterns. If patterns is nil,
// default patterns are used; an empty non-nil slice ignores nothing.
func NewFileFilter(extension string, patterns []string) *FileFilter {
	if patterns == nil {
		patterns = DefaultIgnorePatterns()
	}
	return &FileFilter{
		extension: extension,
		patterns:  patterns,
	}
}

// Accept reports whether path has the watched extension and is not ignored.
func (f *FileFilter) Accept(path string) bool {
	return scanner.MatchesExtension(filepath.Base(path), f.extension) && !f.ShouldIgnore(path)
}

// ShouldIgnore checks if a file path matches any of the ignore patterns.
// It matches against the filename (base name) only.
func (f *FileFilter) ShouldIgnore(path string) bool {
	filename := filepath.Base(path)

	for _, pattern := range f.patterns {
		if matched, err := filepath.Match(pattern, filename); err == nil && matched {
			return true
		}

		// A bare suffix such as ".tmp" matches any name ending in it.
		if strings.HasPrefix(pattern, ".") && !strings.ContainsAny(pattern, "*?[") {
			if strings.HasSuffix(strings.ToLower(filename), strings.ToLower(pattern)) {
				return true
			}
		}
	}
	return false
}

// Patterns returns the current ignore patterns.
func (f *FileFilter) Patterns() []string {
	result := make([]string, len(f.patterns))
	copy(result, f.patterns)
	return result
}
