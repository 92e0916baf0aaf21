package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pgmkit/xdsl2agrum/internal/app"
	"github.com/pgmkit/xdsl2agrum/internal/server"
)

// main is the entrypoint for the xdsl2agrum HTTP service.
func main() {
	cfg := server.ConfigFromEnv()
	logger := app.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)

	srv, err := server.New(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := srv.Listen(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
