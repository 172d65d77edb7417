// Package main is the entry point for the itinerary command-line tool.
package main

import (
	"context"
	"os"

	"github.com/pkordes/campaign-itinerary/internal/app"
	"github.com/pkordes/campaign-itinerary/internal/cli"
	"github.com/pkordes/campaign-itinerary/internal/config"
)

var version = "dev"

func main() {
	cli.Version = version
	build := func(ctx context.Context) (*app.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		// Logs go to stderr so stdout carries only command output.
		return app.New(ctx, cfg, app.NewLogger(os.Stderr, cfg.LogLevel))
	}
	if err := cli.NewRootCmd(build).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
