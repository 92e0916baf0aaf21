// Package extract walks a parsed document tree once and produces the
// intermediate network model: node records, parent lists and literal
// tables. It applies no structural validation beyond what it cannot
// represent; those problems accumulate for the validator's report.
package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pgmkit/xdsl2agrum/internal/ctxlog"
	cerrors "github.com/pgmkit/xdsl2agrum/internal/errors"
	"github.com/pgmkit/xdsl2agrum/internal/model"
	"github.com/pgmkit/xdsl2agrum/internal/xdsl"
)

// Element names that define nodes, and the children they carry.
const (
	elemChance    = "cpt"
	elemDecision  = "decision"
	elemUtility   = "utility"
	elemMAU       = "mau"
	elemDynamic   = "dynamic"
	attrDynamic   = "dynamic"
	elemState     = "state"
	elemParents   = "parents"
	elemProbs     = "probabilities"
	elemUtilities = "utilities"
	elemWeights   = "weights"
)

// Network builds the intermediate model from doc.
//
// The second return accumulates recoverable extraction problems (unknown
// node kinds, empty state spaces, temporal constructs) in document order;
// the caller folds them into the validation report. The final return is
// fatal: the document content itself could not be interpreted, and no
// partial network is produced.
func Network(ctx context.Context, doc *xdsl.Document) (*model.Network, []error, error) {
	logger := ctxlog.FromContext(ctx)

	nodesEl := doc.First("nodes")
	if nodesEl == nil {
		return nil, nil, cerrors.ErrMalformedDocument.GenWithStackByArgs("document has no nodes element")
	}

	id, _ := doc.Root.Attr("id")
	net := model.NewNetwork(id)

	var problems []error
	problems = append(problems, temporalProblems(doc)...)

	// Multi-attribute utility weights apply after all nodes exist; a mau
	// element names utility nodes, not a node of its own.
	weights := make(map[string]float64)

	for _, el := range nodesEl.Children {
		switch el.Name {
		case elemChance, elemDecision, elemUtility:
			node, err := extractNode(el)
			if err != nil {
				return nil, nil, err
			}
			if node.Kind != model.Utility && len(node.States) == 0 {
				problems = append(problems, cerrors.ErrEmptyStateSpace.GenWithStackByArgs(node.ID))
			}
			net.Add(node)

		case elemMAU:
			if err := extractWeights(el, weights); err != nil {
				return nil, nil, err
			}

		case elemDynamic:
			// Already reported by the temporal scan.

		default:
			nodeID, _ := el.Attr("id")
			problems = append(problems, cerrors.ErrUnknownNodeKind.GenWithStackByArgs(el.Name, nodeID))
		}
	}

	for uid, w := range weights {
		if n, ok := net.Node(uid); ok && n.Kind == model.Utility {
			n.Weight = w
		}
	}

	attachDisplay(doc, net)

	logger.Debug("extraction complete.",
		"network", net.ID,
		"nodes", net.Len(),
		"problems", len(problems),
	)
	return net, problems, nil
}

// extractNode reads one node-defining element: kind from the element name,
// states and parents in declaration order, table values in literal document
// order. Decision elements never carry a table.
func extractNode(el *xdsl.Element) (*model.Node, error) {
	nodeID, _ := el.Attr("id")

	node := &model.Node{
		ID:     nodeID,
		Weight: 1,
	}

	switch el.Name {
	case elemChance:
		node.Kind = model.Chance
	case elemDecision:
		node.Kind = model.Decision
	case elemUtility:
		node.Kind = model.Utility
	}

	for _, c := range el.Children {
		if c.Name != elemState {
			continue
		}
		label, _ := c.Attr("id")
		node.States = append(node.States, label)
	}

	if parents := el.ChildText(elemParents); parents != "" {
		node.Parents = strings.Fields(parents)
	}

	var tableEl *xdsl.Element
	switch node.Kind {
	case model.Chance:
		tableEl = el.Child(elemProbs)
	case model.Utility:
		tableEl = el.Child(elemUtilities)
	}
	if tableEl != nil {
		values, err := parseValues(tableEl.Text, nodeID)
		if err != nil {
			return nil, err
		}
		node.Table = values
	}

	return node, nil
}

// parseValues parses a whitespace-separated numeric sequence. An empty
// table element yields an empty (non-nil) table, which the size check
// rejects against any non-trivial axis product.
func parseValues(text, nodeID string) ([]float64, error) {
	fields := strings.Fields(text)
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, cerrors.ErrMalformedDocument.GenWithStackByArgs(
				fmt.Sprintf("invalid numeric literal %q in table of node %q", f, nodeID))
		}
		values = append(values, v)
	}
	return values, nil
}

// extractWeights reads a mau element into the weight map. Parent and weight
// lists zip pairwise; a later mau overrides earlier entries per node.
func extractWeights(el *xdsl.Element, weights map[string]float64) error {
	mauID, _ := el.Attr("id")
	parents := strings.Fields(el.ChildText(elemParents))
	fields := strings.Fields(el.ChildText(elemWeights))

	for i, pid := range parents {
		if i >= len(fields) {
			break
		}
		w, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return cerrors.ErrMalformedDocument.GenWithStackByArgs(
				fmt.Sprintf("invalid weight %q in mau node %q", fields[i], mauID))
		}
		weights[pid] = w
	}
	return nil
}

// temporalProblems scans for time-sliced constructs: a dynamic element
// anywhere, or a node-defining element flagged dynamic. Conversion never
// proceeds past validation when any are present.
func temporalProblems(doc *xdsl.Document) []error {
	var problems []error
	doc.Walk(func(el *xdsl.Element) {
		if el.Name == elemDynamic {
			problems = append(problems, cerrors.ErrUnsupportedTemporalConstruct.GenWithStackByArgs(elemDynamic))
			return
		}
		if v, ok := el.Attr(attrDynamic); ok {
			nodeID, _ := el.Attr("id")
			problems = append(problems, cerrors.ErrUnsupportedTemporalConstruct.GenWithStackByArgs(
				fmt.Sprintf("node %q marked dynamic=%q", nodeID, v)))
		}
	})
	return problems
}

// attachDisplay copies per-node name/position metadata from the genie
// extension block onto matching nodes. Unknown ids are display-only noise
// and are ignored.
func attachDisplay(doc *xdsl.Document, net *model.Network) {
	ext := doc.First("extensions")
	if ext == nil {
		return
	}
	var visit func(e *xdsl.Element)
	visit = func(e *xdsl.Element) {
		if e.Name == "node" {
			id, _ := e.Attr("id")
			if n, ok := net.Node(id); ok {
				n.Display = model.Display{
					Name:     e.ChildText("name"),
					Position: e.ChildText("position"),
				}
			}
			return
		}
		for _, c := range e.Children {
			visit(c)
		}
	}
	for _, c := range ext.Children {
		visit(c)
	}
}
