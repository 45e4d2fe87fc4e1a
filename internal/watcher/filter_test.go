package watcher

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFileFilterAccept(t *testing.T) {
	f := NewFileFilter("mp4", nil)

	tests := []struct {
		path string
		want bool
	}{
		{"/src/episode_01.mp4", true},
		{"/src/EPISODE_02.MP4", true},
		{"/src/notes.txt", false},
		{"/src/clip.mp4.part", false},
		{"/src/clip.mp4.crdownload", false},
		{"/src/.clip.mp4.1234.part", false},
		{"/src/.~lock.clip.mp4", false},
		{"/src/clip.tmp", false},
	}
	for _, tt := range tests {
		if got := f.Accept(tt.path); got != tt.want {
			t.Errorf("Accept(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFileFilterCustomPatterns(t *testing.T) {
	f := NewFileFilter(".mkv", []string{"sample*", ".bak"})

	if f.Accept("/src/sample_01.mkv") {
		t.Error("glob pattern not applied")
	}
	if !f.ShouldIgnore("/src/old.BAK") {
		t.Error("bare suffix pattern not applied case-insensitively")
	}
	if !f.Accept("/src/show_01.mkv") {
		t.Error("regular file rejected")
	}
	if len(f.Patterns()) != 2 {
		t.Errorf("Patterns() = %v", f.Patterns())
	}
}

func TestEmptyPatternsIgnoreNothing(t *testing.T) {
	f := NewFileFilter("part", []string{})
	if !f.Accept("/src/file.part") {
		t.Error("empty pattern list should ignore nothing")
	}
}

func TestPartialDownloadsNeverAccepted(t *testing.T) {
	properties := gopter.NewProperties(nil)
	f := NewFileFilter("mp4", nil)

	properties.Property("names ending in a partial-download suffix are rejected", prop.ForAll(
		func(stem string, suffix string) bool {
			return !f.Accept("/src/" + stem + ".mp4" + suffix)
		},
		gen.Identifier(),
		gen.OneConstOf(".part", ".partial", ".crdownload", ".download", ".tmp"),
	))

	properties.TestingRun(t)
}
