// Package planner maps sorted input files to their numbered destination folders.
package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"episodic/internal/scanner"
	"episodic/internal/sortkey"
)

// FolderPrefix is prepended to the index of every destination folder.
const FolderPrefix = "episode_"

// Assignment is the resolved destination of one input file.
type Assignment struct {
	Source scanner.FileEntry
	Key    sortkey.Key
	Index  int    // Folder index, startIndex + position in sort order
	Dir    string // <destDir>/episode_<Index>
	Path   string // <Dir>/<newName><original extension>
}

// FolderName returns the destination folder name for index.
func FolderName(index int) string {
	return FolderPrefix + strconv.Itoa(index)
}

// Assign gives the file at position i of ranked the folder index startIndex+i.
// The destination keeps the source extension exactly as written, even though
// collection matched it case-insensitively.
func Assign(ranked []sortkey.Ranked, destDir, newName string, startIndex int) []Assignment {
	assignments := make([]Assignment, len(ranked))
	for i, r := range ranked {
		index := startIndex + i
		dir := filepath.Join(destDir, FolderName(index))
		assignments[i] = Assignment{
			Source: r.File,
			Key:    r.Key,
			Index:  index,
			Dir:    dir,
			Path:   filepath.Join(dir, newName+r.File.Ext),
		}
	}
	return assignments
}

// DirectoryError reports a destination folder that could not be created.
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("cannot create destination folder %s: %v", e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error {
	return e.Err
}

// Prepare creates every destination folder before any copying starts.
// It stops at the first folder that cannot be created.
func Prepare(assignments []Assignment) error {
	for _, a := range assignments {
		if err := os.MkdirAll(a.Dir, 0755); err != nil {
			return &DirectoryError{Path: a.Dir, Err: err}
		}
	}
	return nil
}
