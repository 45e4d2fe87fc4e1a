package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"episodic/internal/config"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

type cliEnv struct {
	src   string
	dest  string
	audit string
}

func setupSource(t *testing.T, names ...string) cliEnv {
	t.Helper()
	base := t.TempDir()
	env := cliEnv{
		src:   filepath.Join(base, "src"),
		dest:  filepath.Join(base, "dest"),
		audit: filepath.Join(base, "audit"),
	}
	if err := os.Mkdir(env.src, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(env.src, name), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return env
}

func (e cliEnv) runArgs(extra ...string) []string {
	args := []string{"run", "-s", e.src, "-d", e.dest, "-n", "Show", "--audit-dir", e.audit}
	return append(args, extra...)
}

func TestFlagsOverrideConfigOnlyWhenSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "episodic.json")
	fileCfg := config.Default()
	fileCfg.SourceDir = "/from/file"
	fileCfg.DestDir = "/out"
	fileCfg.NewName = "FromFile"
	fileCfg.Extension = "mkv"
	fileCfg.Threads = 4
	if err := config.Save(fileCfg, path); err != nil {
		t.Fatal(err)
	}

	var flags batchFlags
	cmd := &cobra.Command{Use: "test"}
	flags.bind(cmd)
	if err := cmd.ParseFlags([]string{"--config", path, "-n", "FromFlag", "-r"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := flags.load(cmd)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.NewName != "FromFlag" || !cfg.ReplaceExisting {
		t.Errorf("explicit flags not applied: %+v", cfg)
	}
	if cfg.Extension != "mkv" || cfg.Threads != 4 || cfg.SourceDir != "/from/file" {
		t.Errorf("unset flags overrode the file: %+v", cfg)
	}
}

func TestLoadRejectsMissingRequiredSettings(t *testing.T) {
	var flags batchFlags
	cmd := &cobra.Command{Use: "test"}
	flags.bind(cmd)
	if err := cmd.ParseFlags([]string{"-s", "/in"}); err != nil {
		t.Fatal(err)
	}
	if _, err := flags.load(cmd); err == nil {
		t.Error("expected a validation error")
	}
}

func TestRunCommandOrganizesEpisodes(t *testing.T) {
	env := setupSource(t, "show ep10.mp4", "show ep2.mp4", "show ep1.mp4")

	out, _, err := runCLI(t, env.runArgs("-l", "2", "-t", "2")...)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Processed 3 files: 3 copied, 0 skipped, 0 failed")

	for index, name := range map[int]string{1: "show ep1.mp4", 2: "show ep2.mp4", 3: "show ep10.mp4"} {
		data, err := os.ReadFile(filepath.Join(env.dest, "episode_"+strconv.Itoa(index), "Show.mp4"))
		if err != nil {
			t.Fatalf("episode %d: %v", index, err)
		}
		if string(data) != name {
			t.Errorf("episode %d holds %q, want %q", index, data, name)
		}
	}

	out, _, err = runCLI(t, env.runArgs("-l", "2")...)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	requireContains(t, out, "Processed 3 files: 0 copied, 3 skipped, 0 failed")
}

func TestRunCommandDryRunTouchesNothing(t *testing.T) {
	env := setupSource(t, "a1.mp4", "a2.mp4")

	out, _, err := runCLI(t, env.runArgs("--dry-run")...)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	requireContains(t, out, "Dry run: 2 files planned, 2 to copy, 0 to skip")
	requireContains(t, out, filepath.Join(env.dest, "episode_2", "Show.mp4"))

	for _, dir := range []string{env.dest, env.audit} {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("%s was created by a dry run", dir)
		}
	}
}

func TestRunCommandRejectsNamesWithoutNumbers(t *testing.T) {
	env := setupSource(t, "episode1.mp4", "finale.mp4")

	if _, _, err := runCLI(t, env.runArgs("-l", "3")...); err == nil {
		t.Fatal("expected an error")
	}
	if _, err := os.Stat(filepath.Join(env.dest, "episode_1")); !os.IsNotExist(err) {
		t.Error("a folder was created before the error")
	}
}

func TestRunsAndUndoCommands(t *testing.T) {
	env := setupSource(t, "x1.mp4", "x2.mp4")

	if _, _, err := runCLI(t, env.runArgs()...); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, _, err := runCLI(t, "runs", "--audit-dir", env.audit)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	requireContains(t, out, "ORGANIZE")
	requireContains(t, out, "COMPLETED")

	out, _, err = runCLI(t, "undo", "--audit-dir", env.audit)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	requireContains(t, out, "2 removed, 0 skipped, 0 failed")

	if _, err := os.Stat(filepath.Join(env.dest, "episode_1")); !os.IsNotExist(err) {
		t.Error("episode folder left behind after undo")
	}

	out, _, err = runCLI(t, "runs", "--audit-dir", env.audit)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	requireContains(t, out, "UNDO")

	out, _, err = runCLI(t, "runs", "--stats", "--audit-dir", env.audit)
	if err != nil {
		t.Fatalf("runs --stats: %v", err)
	}
	requireContains(t, out, "Removed by undo")
	requireContains(t, out, env.dest)
}

func TestRunsWithEmptyLog(t *testing.T) {
	dir := t.TempDir()
	out, _, err := runCLI(t, "runs", "--audit-dir", dir)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	requireContains(t, out, "No runs recorded")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupSource(t, "e1.mp4")
	target := filepath.Join(t.TempDir(), "conf", "episodic.json")

	out, _, err := runCLI(t, "config", "init", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote default configuration")

	if _, _, err := runCLI(t, "config", "init", target); err == nil {
		t.Error("expected init to refuse an existing file")
	}

	if _, _, err := runCLI(t, "config", "validate", target); err == nil {
		t.Error("expected the default configuration to be incomplete")
	}

	cfg, err := config.Read(target)
	if err != nil {
		t.Fatal(err)
	}
	cfg.SourceDir = env.src
	cfg.DestDir = env.dest
	cfg.NewName = "Show"
	if err := config.Save(cfg, target); err != nil {
		t.Fatal(err)
	}

	out, _, err = runCLI(t, "config", "validate", target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}
