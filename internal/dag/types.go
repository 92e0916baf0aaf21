package dag

import "sync"

// Graph is a directed graph over string node ids. All operations are
// concurrency-safe, though a conversion call builds and consumes its own
// instance single-threaded.
type Graph struct {
	// mutex protects the node structures during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order remembers insertion order; it drives deterministic traversal
	// and the declaration-order tie-break when ordering.
	order []string
}

// node is a single vertex. It is un-exported to force interaction through
// the string-id API rather than direct struct manipulation.
type node struct {
	id string
	// parents and children index the incident edges both ways; the maps
	// make duplicate edges idempotent.
	parents  map[string]*node
	children map[string]*node
	// childOrder keeps first-insertion order of children so traversals do
	// not depend on map iteration order.
	childOrder []string
}
