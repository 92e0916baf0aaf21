package dag

import (
	"container/heap"
	"fmt"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:       id,
		parents:  make(map[string]*node),
		children: make(map[string]*node),
	}
	g.order = append(g.order, id)
}

// AddEdge creates a directed edge from parentID to childID. Declaring the
// same edge twice is a no-op. An error is returned if either node does not
// exist or if the edge would be a self-reference; callers treat self-loops
// as cycles before ever reaching this point.
func (g *Graph) AddEdge(parentID, childID string) error {
	if parentID == childID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", parentID, parentID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	parent, ok := g.nodes[parentID]
	if !ok {
		return fmt.Errorf("parent node not found: %s", parentID)
	}

	child, ok := g.nodes[childID]
	if !ok {
		return fmt.Errorf("child node not found: %s", childID)
	}

	if _, ok := parent.children[childID]; ok {
		return nil
	}

	child.parents[parentID] = parent
	parent.children[childID] = child
	parent.childOrder = append(parent.childOrder, childID)

	return nil
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// if a cycle is found, naming the first node involved in the detected
// cycle. Traversal follows insertion order, so the same input always
// reports the same node.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Classic depth-first search with two marker sets:
	// permanent: nodes fully visited and known safe.
	// temporary: nodes on the recursion stack of the current traversal.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			// A node already on the recursion stack closes a cycle.
			return fmt.Errorf("cycle detected involving node '%s'", n.id)
		}

		temporary[n.id] = true

		for _, childID := range n.childOrder {
			if err := visit(n.children[childID]); err != nil {
				return err
			}
		}

		delete(temporary, n.id)
		permanent[n.id] = true

		return nil
	}

	for _, id := range g.order {
		if !permanent[id] {
			if err := visit(g.nodes[id]); err != nil {
				return err
			}
		}
	}

	return nil
}

// TopologicalOrder returns the node ids such that every edge's parent
// precedes its child. Ties among simultaneously ready nodes break by
// insertion order, keeping the sequence byte-stable across runs. The
// caller is expected to have rejected cyclic graphs already; an error here
// signals a broken invariant, not bad input.
func (g *Graph) TopologicalOrder() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	position := make(map[string]int, len(g.order))
	for i, id := range g.order {
		position[id] = i
	}

	indegree := make(map[string]int, len(g.nodes))
	for id, n := range g.nodes {
		indegree[id] = len(n.parents)
	}

	ready := &indexHeap{}
	heap.Init(ready)
	for _, id := range g.order {
		if indegree[id] == 0 {
			heap.Push(ready, position[id])
		}
	}

	sorted := make([]string, 0, len(g.nodes))
	for ready.Len() > 0 {
		id := g.order[heap.Pop(ready).(int)]
		sorted = append(sorted, id)

		for _, childID := range g.nodes[id].childOrder {
			indegree[childID]--
			if indegree[childID] == 0 {
				heap.Push(ready, position[childID])
			}
		}
	}

	if len(sorted) != len(g.nodes) {
		return nil, fmt.Errorf("graph contains a cycle; %d of %d nodes ordered", len(sorted), len(g.nodes))
	}
	return sorted, nil
}

// indexHeap is a min-heap of insertion positions backing the ready queue.
type indexHeap []int

func (h indexHeap) Len() int            { return len(h) }
func (h indexHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)         { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
