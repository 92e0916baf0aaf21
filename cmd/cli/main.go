package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pgmkit/xdsl2agrum/internal/app"
	"github.com/pgmkit/xdsl2agrum/internal/cli"
)

// main is the entrypoint for the xdsl2agrum command.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Generated scripts and reports go to outW; log records go to logW
// so the artifact stream stays pipeable.
func run(outW, logW io.Writer, args []string) (err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		return parseErr
	}
	if shouldExit {
		return nil
	}

	// The pipeline panics on invariant violations, so recover here to turn
	// them into a clean exit message instead of a stack trace.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	converter := app.NewApp(outW, logW, appConfig)

	return converter.Run(context.Background())
}
