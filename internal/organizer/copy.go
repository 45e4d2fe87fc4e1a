// Package organizer copies input files into their episode folders.
package organizer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyErrorType represents the type of copy error.
type CopyErrorType string

const (
	// SourceNotFound indicates the source file does not exist.
	SourceNotFound CopyErrorType = "SOURCE_NOT_FOUND"
	// PermissionDenied indicates insufficient permissions for the operation.
	PermissionDenied CopyErrorType = "PERMISSION_DENIED"
	// IOFailure covers every other read, write or rename failure.
	IOFailure CopyErrorType = "IO_FAILURE"
)

// CopyError represents an error that occurred while copying one file.
type CopyError struct {
	Type CopyErrorType
	Path string
	Err  error
}

func (e *CopyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Path)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

func classify(path string, err error) *CopyError {
	switch {
	case os.IsNotExist(err):
		return &CopyError{Type: SourceNotFound, Path: path, Err: err}
	case os.IsPermission(err):
		return &CopyError{Type: PermissionDenied, Path: path, Err: err}
	default:
		return &CopyError{Type: IOFailure, Path: path, Err: err}
	}
}

// CopyStats describes the bytes written by CopyFile.
type CopyStats struct {
	Bytes  int64
	SHA256 string
}

// CopyFile streams src into a temporary file next to dst and renames it over
// dst, so a failed copy never leaves a truncated destination behind. The
// destination takes the permission bits of the source.
func CopyFile(src, dst string) (CopyStats, error) {
	in, err := os.Open(src)
	if err != nil {
		return CopyStats{}, classify(src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return CopyStats{}, classify(src, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.part")
	if err != nil {
		if os.IsNotExist(err) {
			// The episode folder vanished after Prepare; that is a destination problem.
			return CopyStats{}, &CopyError{Type: IOFailure, Path: dst, Err: err}
		}
		return CopyStats{}, classify(dst, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), in)
	if err != nil {
		cleanup()
		return CopyStats{}, &CopyError{Type: IOFailure, Path: src, Err: err}
	}
	if written != info.Size() {
		cleanup()
		return CopyStats{}, &CopyError{
			Type: IOFailure,
			Path: src,
			Err:  fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written),
		}
	}

	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		cleanup()
		return CopyStats{}, classify(dst, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return CopyStats{}, &CopyError{Type: IOFailure, Path: dst, Err: err}
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return CopyStats{}, classify(dst, err)
	}

	return CopyStats{Bytes: written, SHA256: hex.EncodeToString(hasher.Sum(nil))}, nil
}
