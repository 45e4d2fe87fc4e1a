// Package main provides the CLI entry point for episodic.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCommand(), fang.WithVersion(appVersion())); err != nil {
		stop()
		os.Exit(1)
	}
}
