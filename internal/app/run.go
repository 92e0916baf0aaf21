package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pgmkit/xdsl2agrum/internal/convert"
	"github.com/pgmkit/xdsl2agrum/internal/ctxlog"
	"github.com/pgmkit/xdsl2agrum/internal/validate"
)

// Run executes the conversion based on the provided configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	data, err := os.ReadFile(a.config.InputPath)
	if err != nil {
		return fmt.Errorf("failed to read input document: %w", err)
	}
	a.logger.Debug("Input document read.", "path", a.config.InputPath, "bytes", len(data))

	a.logger.Info("🚀 Starting conversion...", "input", a.config.InputPath)
	net, err := convert.Parse(ctx, data)
	if err != nil {
		var report *validate.Report
		if errors.As(err, &report) {
			a.printReport(report)
			return fmt.Errorf("document is not convertible: %d problems found", len(report.Problems()))
		}
		return fmt.Errorf("failed to parse input document: %w", err)
	}

	if a.config.CheckOnly {
		fmt.Fprintf(a.outW, "%s: network '%s' is valid (%d nodes, %d arcs)\n",
			a.config.InputPath, net.ID, net.Len(), len(net.Arcs()))
		a.logger.Info("🏁 Validation finished.", "network", net.ID, "nodes", net.Len())
		return nil
	}

	artifact, err := convert.Generate(ctx, net, convert.ModeScript)
	if err != nil {
		return fmt.Errorf("failed to generate script: %w", err)
	}

	if a.config.OutputPath != "" {
		if err := os.WriteFile(a.config.OutputPath, []byte(artifact.Script), 0o644); err != nil {
			return fmt.Errorf("failed to write output script: %w", err)
		}
		a.logger.Info("🏁 Conversion finished.", "network", net.ID, "output", a.config.OutputPath)
		return nil
	}

	if _, err := io.WriteString(a.outW, artifact.Script); err != nil {
		return fmt.Errorf("failed to write output script: %w", err)
	}
	a.logger.Info("🏁 Conversion finished.", "network", net.ID, "output", "stdout")
	return nil
}

// printReport lists every validation problem on its own numbered line. The
// problems already carry their taxonomy codes in their text.
func (a *App) printReport(report *validate.Report) {
	problems := report.Problems()
	fmt.Fprintf(a.outW, "found %d problems in %s:\n", len(problems), a.config.InputPath)
	for i, problem := range problems {
		fmt.Fprintf(a.outW, "  %d. %v\n", i+1, problem)
	}
}
