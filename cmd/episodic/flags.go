package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"episodic/internal/config"
	"episodic/internal/logging"
)

// batchFlags are the configuration overrides shared by run and watch.
type batchFlags struct {
	configPath string
	source     string
	dest       string
	name       string
	ext        string
	digits     int
	start      int
	replace    bool
	threads    int
	auditDir   string
	noAudit    bool
	logLevel   string
	logFormat  string
	logFile    string
	debounceMs int
	verbose    bool
}

func (f *batchFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "JSON configuration file")
	flags.StringVarP(&f.source, "source", "s", "", "Source directory containing the video files")
	flags.StringVarP(&f.dest, "dest", "d", "", "Destination directory for the episode folders")
	flags.StringVarP(&f.name, "name", "n", "", "File name (without extension) given to every copy")
	flags.StringVarP(&f.ext, "ext", "e", "mp4", "Extension of the files to organize")
	flags.IntVarP(&f.digits, "digits", "l", 0, "Digits taken from the first number in each name (0 = all)")
	flags.IntVarP(&f.start, "start", "i", 1, "Index of the first episode folder")
	flags.BoolVarP(&f.replace, "replace", "r", false, "Overwrite destinations that already exist")
	flags.IntVarP(&f.threads, "threads", "t", 1, "Number of files copied in parallel")
	flags.StringVar(&f.auditDir, "audit-dir", "", "Directory holding the audit log and run lock")
	flags.BoolVar(&f.noAudit, "no-audit", false, "Do not record the run in the audit log")
	flags.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&f.logFormat, "log-format", "", "Log format (console, json)")
	flags.StringVar(&f.logFile, "log-file", "", "Also append logs to this file")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Print one line per file")
}

// load reads the configuration file, if any, applies the flags the user set
// explicitly and validates the result.
func (f *batchFlags) load(cmd *cobra.Command) (*config.Configuration, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		cfg, err = config.Read(f.configPath)
		if err != nil {
			return nil, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("source") {
		cfg.SourceDir = f.source
	}
	if changed("dest") {
		cfg.DestDir = f.dest
	}
	if changed("name") {
		cfg.NewName = f.name
	}
	if changed("ext") {
		cfg.Extension = f.ext
	}
	if changed("digits") {
		cfg.DigitLength = f.digits
	}
	if changed("start") {
		cfg.StartIndex = f.start
	}
	if changed("replace") {
		cfg.ReplaceExisting = f.replace
	}
	if changed("threads") {
		cfg.Threads = f.threads
	}
	if changed("audit-dir") {
		cfg.Audit.LogDirectory = f.auditDir
	}
	if changed("no-audit") {
		cfg.Audit.Enabled = !f.noAudit
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}
	if changed("log-file") {
		cfg.Logging.File = f.logFile
	}
	if changed("debounce") {
		cfg.Watch.DebounceMs = f.debounceMs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Configuration, console io.Writer) (*slog.Logger, io.Closer, error) {
	logger, closer, err := logging.New(logging.Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Console:  console,
		FilePath: cfg.Logging.File,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, closer, nil
}
