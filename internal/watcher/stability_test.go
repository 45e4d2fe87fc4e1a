package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWaitForStable_StableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	os.WriteFile(path, []byte("complete"), 0644)

	s := NewStabilityCheckerWithOptions(60*time.Millisecond, time.Second, 10*time.Millisecond)
	start := time.Now()
	if err := s.WaitForStable(context.Background(), path); err != nil {
		t.Fatalf("WaitForStable: %v", err)
	}
	if time.Since(start) < 60*time.Millisecond {
		t.Error("returned before the threshold elapsed")
	}
}

func TestWaitForStable_GrowingFileWaits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	os.WriteFile(path, []byte("a"), 0644)

	done := make(chan struct{})
	go func() {
		defer close(done)
		f, _ := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
		defer f.Close()
		for i := 0; i < 5; i++ {
			time.Sleep(20 * time.Millisecond)
			f.WriteString("more")
		}
	}()

	s := NewStabilityCheckerWithOptions(60*time.Millisecond, 2*time.Second, 10*time.Millisecond)
	if err := s.WaitForStable(context.Background(), path); err != nil {
		t.Fatalf("WaitForStable: %v", err)
	}
	<-done
	info, _ := os.Stat(path)
	if info.Size() != int64(1+5*len("more")) {
		t.Errorf("returned while the file was still growing: size %d", info.Size())
	}
}

func TestWaitForStable_Errors(t *testing.T) {
	dir := t.TempDir()
	s := NewStabilityCheckerWithOptions(time.Second, 50*time.Millisecond, 10*time.Millisecond)

	if err := s.WaitForStable(context.Background(), filepath.Join(dir, "missing.mp4")); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}

	path := filepath.Join(dir, "clip.mp4")
	os.WriteFile(path, []byte("x"), 0644)
	if err := s.WaitForStable(context.Background(), path); !errors.Is(err, ErrFileUnstable) {
		t.Errorf("timeout error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.WaitForStable(ctx, path); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled error = %v", err)
	}
}

func TestWaitForStable_ZeroThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	os.WriteFile(path, []byte("x"), 0644)

	if err := NewStabilityChecker(0).WaitForStable(context.Background(), path); err != nil {
		t.Errorf("WaitForStable: %v", err)
	}
}
