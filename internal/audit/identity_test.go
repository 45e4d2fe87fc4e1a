package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCaptureThenVerifyMatches(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("a captured identity verifies against the same file", prop.ForAll(
		func(content string) bool {
			path := filepath.Join(t.TempDir(), "f.mp4")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return false
			}
			identity, err := CaptureIdentity(path)
			if err != nil {
				t.Logf("CaptureIdentity: %v", err)
				return false
			}
			if identity.Size != int64(len(content)) || len(identity.ContentHash) != 64 {
				return false
			}
			match, err := VerifyIdentity(path, *identity)
			return err == nil && match == IdentityMatches
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestVerifyIdentityMismatches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.mp4")
	os.WriteFile(path, []byte("abcd"), 0644)
	identity, err := CaptureIdentity(path)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		content *string
		want    IdentityMatch
	}{
		{"same size different content", strPtr("abce"), IdentityHashMismatch},
		{"different size", strPtr("abcdef"), IdentitySizeMismatch},
		{"removed", nil, IdentityNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.content == nil {
				os.Remove(path)
			} else {
				os.WriteFile(path, []byte(*tt.content), 0644)
			}
			got, err := VerifyIdentity(path, *identity)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("VerifyIdentity = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCaptureIdentityRejectsDirectory(t *testing.T) {
	if _, err := CaptureIdentity(t.TempDir()); err == nil {
		t.Error("expected an error for a directory")
	}
}

func strPtr(s string) *string { return &s }
