// Package validate checks an extracted network for structural problems.
// It accumulates everything it finds instead of stopping at the first
// defect, so a single pass reports every reason a file cannot convert.
package validate

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/pgmkit/xdsl2agrum/internal/ctxlog"
	"github.com/pgmkit/xdsl2agrum/internal/dag"
	cerrors "github.com/pgmkit/xdsl2agrum/internal/errors"
	"github.com/pgmkit/xdsl2agrum/internal/model"
)

// Report is the outcome of one validation pass. A non-empty report means
// the network must not be converted. Report implements error so callers
// can return it directly and still recover the individual problems later
// through errors.As.
type Report struct {
	problems []error
}

// Add appends a problem to the report. Nil errors are ignored.
func (r *Report) Add(err error) {
	if err != nil {
		r.problems = append(r.problems, err)
	}
}

// Empty reports whether the pass found no problems.
func (r *Report) Empty() bool {
	return len(r.problems) == 0
}

// Problems returns the accumulated problems in the order they were found.
func (r *Report) Problems() []error {
	return r.problems
}

// Err collapses the report into a single error, nil when the report is
// empty.
func (r *Report) Err() error {
	return multierr.Combine(r.problems...)
}

// Error implements the error interface.
func (r *Report) Error() string {
	if err := r.Err(); err != nil {
		return err.Error()
	}
	return "validation passed"
}

// Unwrap exposes the individual problems to errors.Is and errors.As.
func (r *Report) Unwrap() []error {
	return r.problems
}

// Check runs every structural rule against net and returns the combined
// report. Problems already found upstream (typically during extraction)
// are passed in extra and folded in first, so callers see one
// consolidated list.
func Check(ctx context.Context, net *model.Network, extra ...error) *Report {
	log := ctxlog.FromContext(ctx)

	report := &Report{}
	for _, err := range extra {
		report.Add(err)
	}

	declared := make(map[string]bool, net.Len())
	for _, n := range net.Nodes {
		if declared[n.ID] {
			report.Add(cerrors.ErrDuplicateNodeID.GenWithStackByArgs(n.ID))
			continue
		}
		declared[n.ID] = true
	}

	// A self-loop is a cycle of length one; report it directly rather
	// than feeding it to the graph.
	for _, arc := range net.Arcs() {
		if !declared[arc.Parent] {
			report.Add(cerrors.ErrDanglingArc.GenWithStackByArgs(arc.Child, arc.Parent))
			continue
		}
		if arc.Parent == arc.Child {
			report.Add(cerrors.ErrCyclicGraph.GenWithStackByArgs(
				fmt.Sprintf("node '%s' lists itself as a parent", arc.Child)))
		}
	}

	// Longer cycles are found on the graph built from the arcs that
	// survived the checks above.
	g := dag.New()
	for _, n := range net.Nodes {
		g.AddNode(n.ID)
	}
	for _, arc := range net.Arcs() {
		if !declared[arc.Parent] || arc.Parent == arc.Child {
			continue
		}
		if err := g.AddEdge(arc.Parent, arc.Child); err != nil {
			report.Add(err)
		}
	}
	if err := g.DetectCycles(); err != nil {
		report.Add(cerrors.ErrCyclicGraph.GenWithStackByArgs(err.Error()))
	}

	// Table sizes. Decision nodes carry no table, and a node with an
	// undeclared parent has no defined expected size, so both are
	// skipped here.
	for _, n := range net.Nodes {
		if n.Kind == model.Decision {
			continue
		}
		if first, ok := net.Node(n.ID); ok && first != n {
			continue // duplicate declaration, already reported
		}
		shape, err := net.TableShape(n)
		if err != nil {
			continue
		}
		expected := model.AxisProduct(shape)
		if len(n.Table) != expected {
			report.Add(cerrors.ErrTableSizeMismatch.GenWithStackByArgs(n.ID, len(n.Table), expected))
		}
	}

	log.Debug("validation finished",
		"network", net.ID,
		"nodes", net.Len(),
		"problems", len(report.problems),
	)
	return report
}
