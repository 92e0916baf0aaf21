// Package model is the format-agnostic representation of a parsed network.
// The extract package populates it from a document tree; validation,
// ordering and emission consume it read-only. One Network serves exactly
// one conversion and is never shared across calls.
package model

import "fmt"

// Kind is the closed set of node variants a network may contain.
type Kind int

const (
	// Chance is a random variable with a state space and a CPT.
	Chance Kind = iota
	// Decision is a controllable choice with a state space and no table.
	Decision
	// Utility carries a payoff table over its parents and no own states.
	Utility
)

func (k Kind) String() string {
	switch k {
	case Chance:
		return "chance"
	case Decision:
		return "decision"
	case Utility:
		return "utility"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Display holds per-node presentation metadata from the document's
// extension block. Conversion logic ignores it; it rides along so callers
// inspecting the network still see it.
type Display struct {
	Name     string
	Position string
}

// Node is one declared network variable.
//
// Parents preserves the order the node itself lists its parents; that
// order (after collapsing repeats, see DistinctParents) defines the parent
// axes of Table and must never be re-sorted.
// Table holds the literal numeric sequence from the document (own-state
// axis innermost for chance nodes); nil means the document declared none.
// Weight scales utility values at emission (multi-attribute weighting);
// it is 1 for every other node and for unweighted utilities.
type Node struct {
	ID      string
	Kind    Kind
	States  []string
	Parents []string
	Table   []float64
	Weight  float64
	Display Display
}

// HasTable reports whether the document declared a table for the node.
func (n *Node) HasTable() bool {
	return n.Table != nil
}

// DistinctParents returns Parents with repeats removed, first occurrence
// order preserved. Declaring the same parent twice means one arc, so the
// table axes, the graph, and the emitted arcs all work from this view.
func (n *Node) DistinctParents() []string {
	if len(n.Parents) < 2 {
		return n.Parents
	}
	seen := make(map[string]bool, len(n.Parents))
	distinct := make([]string, 0, len(n.Parents))
	for _, p := range n.Parents {
		if seen[p] {
			continue
		}
		seen[p] = true
		distinct = append(distinct, p)
	}
	return distinct
}

// Arc is a directed parent → child dependency.
type Arc struct {
	Parent string
	Child  string
}

// Network is the intermediate graph for one conversion call.
type Network struct {
	// ID is the document's network identifier, passed through to emission.
	ID string
	// Nodes keeps declaration order; it may hold duplicate ids until
	// validation rejects them.
	Nodes []*Node

	index map[string]*Node
}

// NewNetwork returns an empty network.
func NewNetwork(id string) *Network {
	return &Network{
		ID:    id,
		index: make(map[string]*Node),
	}
}

// Add appends a node in declaration order. The first node with a given id
// wins the lookup index; a later duplicate stays in Nodes so the validator
// can report it.
func (g *Network) Add(n *Node) {
	g.Nodes = append(g.Nodes, n)
	if _, ok := g.index[n.ID]; !ok {
		g.index[n.ID] = n
	}
}

// Node returns the first-declared node with the given id.
func (g *Network) Node(id string) (*Node, bool) {
	n, ok := g.index[id]
	return n, ok
}

// Len returns the number of declared nodes, duplicates included.
func (g *Network) Len() int {
	return len(g.Nodes)
}

// Arcs lists the parent → child pairs in declaration order. Repeated
// declarations of the same pair collapse to one arc; dangling references
// are included, since the validator decides what to make of those.
func (g *Network) Arcs() []Arc {
	var arcs []Arc
	for _, n := range g.Nodes {
		for _, p := range n.DistinctParents() {
			arcs = append(arcs, Arc{Parent: p, Child: n.ID})
		}
	}
	return arcs
}

// TableShape resolves the axis sizes of n's table: parent state counts in
// listed order, plus the node's own state count for chance nodes. It fails
// when a parent is undeclared, since the product is then undefined.
func (g *Network) TableShape(n *Node) ([]int, error) {
	parents := n.DistinctParents()
	shape := make([]int, 0, len(parents)+1)
	for _, pid := range parents {
		p, ok := g.index[pid]
		if !ok {
			return nil, fmt.Errorf("parent %q of node %q is not declared", pid, n.ID)
		}
		shape = append(shape, len(p.States))
	}
	if n.Kind == Chance {
		shape = append(shape, len(n.States))
	}
	return shape, nil
}

// AxisProduct multiplies the sizes in shape; the empty shape yields 1,
// matching a parentless utility table holding a single value.
func AxisProduct(shape []int) int {
	product := 1
	for _, s := range shape {
		product *= s
	}
	return product
}
