// Package scanner collects the input files for an episodic run.
package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ScanErrorType represents the type of scanning error.
type ScanErrorType string

const (
	// DirectoryNotFound indicates the source directory does not exist or is not a directory.
	DirectoryNotFound ScanErrorType = "DIRECTORY_NOT_FOUND"
	// PermissionDenied indicates insufficient permissions to read the directory.
	PermissionDenied ScanErrorType = "PERMISSION_DENIED"
	// NoMatchingFiles indicates the directory holds no file with the requested extension.
	NoMatchingFiles ScanErrorType = "NO_MATCHING_FILES"
)

// ScanError represents an error that occurred while collecting input files.
type ScanError struct {
	Type ScanErrorType
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	if e.Err != nil {
		return string(e.Type) + ": " + e.Path + " (" + e.Err.Error() + ")"
	}
	return string(e.Type) + ": " + e.Path
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// IsNoInput reports whether err means there is nothing to organize:
// the source directory is missing or holds no matching file.
func IsNoInput(err error) bool {
	var scanErr *ScanError
	if !errors.As(err, &scanErr) {
		return false
	}
	return scanErr.Type == DirectoryNotFound || scanErr.Type == NoMatchingFiles
}

// FileEntry represents an input file found during scanning.
type FileEntry struct {
	Name     string // Filename only
	FullPath string // Absolute path
	Ext      string // Original extension including the dot, case preserved
}

// Stem returns the filename without its final extension.
func (f FileEntry) Stem() string {
	return strings.TrimSuffix(f.Name, f.Ext)
}

// NormalizeExtension lowercases ext and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// MatchesExtension reports whether name ends in ext, ignoring case.
func MatchesExtension(name, ext string) bool {
	want := NormalizeExtension(ext)
	if want == "" {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), want)
}

// Collect lists the regular files directly inside directory whose extension
// matches ext case-insensitively. Subdirectories are not descended into and
// symlinks are never followed. The result is in directory order; callers sort it.
func Collect(directory, ext string) ([]FileEntry, error) {
	info, err := os.Lstat(directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ScanError{Type: DirectoryNotFound, Path: directory, Err: err}
		}
		if os.IsPermission(err) {
			return nil, &ScanError{Type: PermissionDenied, Path: directory, Err: err}
		}
		return nil, err
	}

	// A symlinked source directory is resolved once; entries inside it still are not.
	if info.Mode()&os.ModeSymlink != 0 {
		info, err = os.Stat(directory)
		if err != nil {
			return nil, &ScanError{Type: DirectoryNotFound, Path: directory, Err: err}
		}
	}

	if !info.IsDir() {
		return nil, &ScanError{
			Type: DirectoryNotFound,
			Path: directory,
			Err:  errors.New("path is not a directory"),
		}
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		if os.IsPermission(err) {
			return nil, &ScanError{Type: PermissionDenied, Path: directory, Err: err}
		}
		return nil, err
	}

	var files []FileEntry
	for _, entry := range entries {
		if !MatchesExtension(entry.Name(), ext) {
			continue
		}

		fullPath := filepath.Join(directory, entry.Name())
		info, err := os.Lstat(fullPath)
		if err != nil {
			continue // Skip entries we can't stat
		}
		if !info.Mode().IsRegular() {
			continue
		}

		absPath, err := filepath.Abs(fullPath)
		if err != nil {
			absPath = fullPath
		}

		files = append(files, FileEntry{
			Name:     entry.Name(),
			FullPath: absPath,
			Ext:      filepath.Ext(entry.Name()),
		})
	}

	if len(files) == 0 {
		return nil, &ScanError{
			Type: NoMatchingFiles,
			Path: directory,
			Err:  errors.New("no files with extension " + NormalizeExtension(ext)),
		}
	}

	return files, nil
}
