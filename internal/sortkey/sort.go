package sortkey

import (
	"sort"

	"episodic/internal/scanner"
)

// Ranked pairs an input file with its derived key.
type Ranked struct {
	File scanner.FileEntry
	Key  Key
}

// Sort orders files by key, breaking ties by filename and then by full path.
// It returns a new slice and leaves files untouched. The first file whose key
// cannot be derived aborts the sort.
func Sort(files []scanner.FileEntry, digitLength int) ([]Ranked, error) {
	ranked := make([]Ranked, 0, len(files))
	for _, f := range files {
		key, err := Extract(f.Name, digitLength)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, Ranked{File: f, Key: key})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})

	return ranked, nil
}

func less(a, b Ranked) bool {
	if c := a.Key.Compare(b.Key); c != 0 {
		return c < 0
	}
	if a.File.Name != b.File.Name {
		return a.File.Name < b.File.Name
	}
	return a.File.FullPath < b.File.FullPath
}

// Files returns the entries of ranked in order.
func Files(ranked []Ranked) []scanner.FileEntry {
	out := make([]scanner.FileEntry, len(ranked))
	for i, r := range ranked {
		out[i] = r.File
	}
	return out
}
