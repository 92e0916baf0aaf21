package emit

import (
	"fmt"

	"github.com/pgmkit/xdsl2agrum/internal/model"
)

// DiagramNode is one constructed node of an in-memory diagram. Values
// holds the node's table in target axis order, already weighted for
// utility nodes; decision nodes carry none.
type DiagramNode struct {
	ID     string
	Kind   model.Kind
	States []string
	Values []float64
}

// Diagram is the in-memory output mode: the same construction sequence as
// the script, materialized as a queryable structure instead of text.
type Diagram struct {
	Name  string
	Nodes []*DiagramNode
	Arcs  []model.Arc

	byID map[string]*DiagramNode
}

// Node returns the diagram node with the given id.
func (d *Diagram) Node(id string) (*DiagramNode, bool) {
	n, ok := d.byID[id]
	return n, ok
}

// DiagramSink builds a Diagram from the construction sequence.
type DiagramSink struct {
	d *Diagram
}

// NewDiagramSink returns a sink whose Diagram accessor is valid once the
// traversal has finished.
func NewDiagramSink() *DiagramSink {
	return &DiagramSink{}
}

// Diagram returns the built diagram.
func (s *DiagramSink) Diagram() *Diagram {
	return s.d
}

func (s *DiagramSink) Begin(networkID string) error {
	s.d = &Diagram{
		Name: networkID,
		byID: make(map[string]*DiagramNode),
	}
	return nil
}

func (s *DiagramSink) AddChance(id string, states []string) error {
	return s.add(&DiagramNode{ID: id, Kind: model.Chance, States: states})
}

func (s *DiagramSink) AddDecision(id string, states []string) error {
	return s.add(&DiagramNode{ID: id, Kind: model.Decision, States: states})
}

func (s *DiagramSink) AddUtility(id string) error {
	return s.add(&DiagramNode{ID: id, Kind: model.Utility})
}

func (s *DiagramSink) add(n *DiagramNode) error {
	if _, ok := s.d.byID[n.ID]; ok {
		return fmt.Errorf("node %q constructed twice", n.ID)
	}
	s.d.Nodes = append(s.d.Nodes, n)
	s.d.byID[n.ID] = n
	return nil
}

func (s *DiagramSink) AddArc(parentID, childID string) error {
	if _, ok := s.d.byID[parentID]; !ok {
		return fmt.Errorf("arc references unconstructed node %q", parentID)
	}
	if _, ok := s.d.byID[childID]; !ok {
		return fmt.Errorf("arc references unconstructed node %q", childID)
	}
	s.d.Arcs = append(s.d.Arcs, model.Arc{Parent: parentID, Child: childID})
	return nil
}

func (s *DiagramSink) AssignCPT(id string, values []float64) error {
	return s.assign(id, values)
}

func (s *DiagramSink) AssignUtility(id string, values []float64) error {
	return s.assign(id, values)
}

func (s *DiagramSink) assign(id string, values []float64) error {
	n, ok := s.d.byID[id]
	if !ok {
		return fmt.Errorf("table assigned to unconstructed node %q", id)
	}
	n.Values = values
	return nil
}

func (s *DiagramSink) End() error {
	return nil
}
