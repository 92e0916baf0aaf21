// Package convert wires the conversion pipeline end to end: parse the
// document, extract the network, validate it, order it, and emit the
// requested artifact. Each call owns its intermediate state; nothing is
// shared between conversions.
package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgmkit/xdsl2agrum/internal/ctxlog"
	"github.com/pgmkit/xdsl2agrum/internal/dag"
	"github.com/pgmkit/xdsl2agrum/internal/emit"
	"github.com/pgmkit/xdsl2agrum/internal/extract"
	"github.com/pgmkit/xdsl2agrum/internal/model"
	"github.com/pgmkit/xdsl2agrum/internal/validate"
	"github.com/pgmkit/xdsl2agrum/internal/xdsl"
)

// Mode selects the output artifact.
type Mode int

const (
	// ModeScript renders a standalone Python construction script.
	ModeScript Mode = iota
	// ModeDiagram materializes the in-memory diagram structure.
	ModeDiagram
)

func (m Mode) String() string {
	switch m {
	case ModeScript:
		return "script"
	case ModeDiagram:
		return "diagram"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps the CLI/wire spelling of an output mode to its value.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "script":
		return ModeScript, nil
	case "diagram":
		return ModeDiagram, nil
	default:
		return 0, fmt.Errorf("unknown output mode %q (want script or diagram)", s)
	}
}

// Artifact is the product of one conversion call. Exactly one of Script
// and Diagram is populated, per Mode. Network carries the source
// network's id for naming the artifact downstream.
type Artifact struct {
	Mode    Mode
	Network string
	Script  string
	Diagram *emit.Diagram
}

// Parse turns raw document bytes into a validated network. The returned
// error is either a fatal document error or a *validate.Report carrying
// every structural problem found; in both cases no network is returned.
func Parse(ctx context.Context, data []byte) (*model.Network, error) {
	doc, err := xdsl.ParseBytes(data)
	if err != nil {
		return nil, err
	}

	net, problems, err := extract.Network(ctx, doc)
	if err != nil {
		return nil, err
	}

	if report := validate.Check(ctx, net, problems...); !report.Empty() {
		return nil, report
	}
	return net, nil
}

// Generate produces the artifact for a network returned by Parse. Feeding
// an unvalidated network is a programming error: structural defects that
// validation would have rejected make Generate panic rather than emit a
// wrong artifact.
func Generate(ctx context.Context, net *model.Network, mode Mode) (*Artifact, error) {
	log := ctxlog.FromContext(ctx)

	g := dag.New()
	for _, n := range net.Nodes {
		g.AddNode(n.ID)
	}
	for _, arc := range net.Arcs() {
		if err := g.AddEdge(arc.Parent, arc.Child); err != nil {
			panic(fmt.Sprintf("convert: unvalidated network reached generation: %v", err))
		}
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		panic(fmt.Sprintf("convert: unvalidated network reached generation: %v", err))
	}

	log.Debug("emission order resolved.", "network", net.ID, "order", order)

	switch mode {
	case ModeScript:
		sink := emit.NewScriptSink()
		if err := emit.Emit(ctx, net, order, sink); err != nil {
			return nil, err
		}
		return &Artifact{Mode: ModeScript, Network: net.ID, Script: sink.String()}, nil

	case ModeDiagram:
		sink := emit.NewDiagramSink()
		if err := emit.Emit(ctx, net, order, sink); err != nil {
			return nil, err
		}
		return &Artifact{Mode: ModeDiagram, Network: net.ID, Diagram: sink.Diagram()}, nil

	default:
		return nil, fmt.Errorf("unknown output mode %v", mode)
	}
}

// Convert runs Parse and Generate in one call.
func Convert(ctx context.Context, data []byte, mode Mode) (*Artifact, error) {
	net, err := Parse(ctx, data)
	if err != nil {
		return nil, err
	}
	return Generate(ctx, net, mode)
}
