// Package emit turns a validated, ordered network into an output artifact.
// One traversal drives every output mode through the Sink interface: for
// each node in order it emits the construction directive, then the node's
// incoming arcs, then the reindexed table. No directive ever references a
// node that has not been constructed yet.
package emit

import (
	"context"
	"fmt"

	"github.com/pgmkit/xdsl2agrum/internal/ctxlog"
	"github.com/pgmkit/xdsl2agrum/internal/model"
	"github.com/pgmkit/xdsl2agrum/internal/reindex"
)

// Sink receives construction directives in emission order. Implementations
// build whatever artifact they like; the traversal guarantees a node's
// parents were added before any arc or table references them.
type Sink interface {
	Begin(networkID string) error
	AddChance(id string, states []string) error
	AddDecision(id string, states []string) error
	AddUtility(id string) error
	AddArc(parentID, childID string) error
	AssignCPT(id string, values []float64) error
	AssignUtility(id string, values []float64) error
	End() error
}

// Emit walks net in the given topological order and drives sink. The
// network must have passed validation: anything inconsistent found here is
// an invariant violation, returned as a plain error for the caller to
// treat as a bug.
func Emit(ctx context.Context, net *model.Network, order []string, sink Sink) error {
	log := ctxlog.FromContext(ctx)

	if len(order) != net.Len() {
		return fmt.Errorf("emission order covers %d of %d nodes", len(order), net.Len())
	}

	if err := sink.Begin(net.ID); err != nil {
		return err
	}

	for _, id := range order {
		n, ok := net.Node(id)
		if !ok {
			return fmt.Errorf("emission order names unknown node %q", id)
		}
		if err := emitNode(net, n, sink); err != nil {
			return err
		}
	}

	if err := sink.End(); err != nil {
		return err
	}

	log.Debug("emission complete.", "network", net.ID, "nodes", len(order))
	return nil
}

func emitNode(net *model.Network, n *model.Node, sink Sink) error {
	var err error
	switch n.Kind {
	case model.Chance:
		err = sink.AddChance(n.ID, n.States)
	case model.Decision:
		err = sink.AddDecision(n.ID, n.States)
	case model.Utility:
		err = sink.AddUtility(n.ID)
	default:
		err = fmt.Errorf("node %q has unknown kind %v", n.ID, n.Kind)
	}
	if err != nil {
		return err
	}

	for _, pid := range n.DistinctParents() {
		if err := sink.AddArc(pid, n.ID); err != nil {
			return err
		}
	}

	switch n.Kind {
	case model.Chance:
		shape, err := net.TableShape(n)
		if err != nil {
			return err
		}
		parentSizes := shape[:len(shape)-1]
		return sink.AssignCPT(n.ID, reindex.CPT(n.Table, parentSizes, len(n.States)))
	case model.Utility:
		return sink.AssignUtility(n.ID, reindex.Utility(n.Table, n.Weight))
	}
	return nil
}
