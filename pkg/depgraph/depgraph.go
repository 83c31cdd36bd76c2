// Package depgraph provides the dependency graph model built from Holmake
// build artifacts.
//
// Each artifact file contributes a Pair: the path of the compiled unit and
// the paths of the units it depends on. Build turns a sequence of pairs into
// a Graph of integer-id nodes with insertion-ordered dependency sets and an
// inverted dependents index.
//
// Node ids are dense in [0, NodeCount()) and assigned in first-discovery
// order while scanning the pairs: a pair's own path is seen first, then its
// dependency paths in listed order. Re-running Build over the same pair
// sequence yields identical ids, which keeps downstream output stable.
package depgraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph construction.
var (
	// ErrMissingLabel is returned when a referenced path has no entry in the
	// display-name mapping. The graph would be unrenderable, so construction
	// fails instead of producing a partial result.
	ErrMissingLabel = errors.New("no display name for path")
)

// Pair is one build-artifact record: a unit's path and the paths it depends
// on, in the order they appeared in the artifact file.
type Pair struct {
	Path string
	Deps []string
}

// Node is a single unit in the dependency graph.
type Node struct {
	ID int

	deps       *IDSet
	dependents *IDSet
}

// Dependencies returns the ids this node depends on, in insertion order.
func (n *Node) Dependencies() []int { return n.deps.Values() }

// DependencyCount returns the number of outgoing edges.
func (n *Node) DependencyCount() int { return n.deps.Len() }

// HasDependency reports whether n depends directly on id.
func (n *Node) HasDependency(id int) bool { return n.deps.Has(id) }

// RemoveDependency drops the direct edge to id, if present. The inverse
// dependents index is deliberately not updated; see Graph.Dependents.
func (n *Node) RemoveDependency(id int) { n.deps.Remove(id) }

// Dependents returns the ids of nodes that depended on n when the graph was
// built. The index is not maintained through edge removal, so after a
// transform it still reflects the construction-time graph.
func (n *Node) Dependents() []int { return n.dependents.Values() }

// Graph is a dependency graph over dense integer node ids.
type Graph struct {
	nodes  []*Node
	paths  []string
	pathID map[string]int
	labels map[string]string
}

// Build constructs a graph from artifact pairs and a path→display-name
// mapping.
//
// Ids are assigned in first-discovery order over the pair sequence. Multiple
// pairs for the same path merge their dependency lists in order (Holmake
// emits separate .ui and .uo records for one unit). Self-dependencies are
// dropped. Every referenced path must have a label; a missing label returns
// ErrMissingLabel and no graph.
func Build(pairs []Pair, labels map[string]string) (*Graph, error) {
	g := &Graph{
		pathID: make(map[string]int),
		labels: labels,
	}

	for _, p := range pairs {
		id := g.ensure(p.Path)
		for _, dep := range p.Deps {
			depID := g.ensure(dep)
			if depID == id {
				continue
			}
			g.nodes[id].deps.Add(depID)
		}
	}

	for _, path := range g.paths {
		if _, ok := labels[path]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingLabel, path)
		}
	}

	// Invert edges once, after all pairs are merged.
	for _, n := range g.nodes {
		for _, dep := range n.Dependencies() {
			g.nodes[dep].dependents.Add(n.ID)
		}
	}

	return g, nil
}

// ensure returns the id for path, allocating a new empty node on first sight.
func (g *Graph) ensure(path string) int {
	if id, ok := g.pathID[path]; ok {
		return id
	}
	id := len(g.paths)
	g.pathID[path] = id
	g.paths = append(g.paths, path)
	g.nodes = append(g.nodes, &Node{
		ID:         id,
		deps:       NewIDSet(),
		dependents: NewIDSet(),
	})
	return id
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the current number of direct dependency edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, n := range g.nodes {
		count += n.DependencyCount()
	}
	return count
}

// Nodes returns all nodes in ascending id order. The slice is shared; do not
// reorder it.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Node returns the node with the given id.
func (g *Graph) Node(id int) (*Node, bool) {
	if id < 0 || id >= len(g.nodes) {
		return nil, false
	}
	return g.nodes[id], true
}

// Path returns the path for a node id. Ids outside [0, NodeCount()) return
// the empty string.
func (g *Graph) Path(id int) string {
	if id < 0 || id >= len(g.paths) {
		return ""
	}
	return g.paths[id]
}

// ID returns the node id for a path.
func (g *Graph) ID(path string) (int, bool) {
	id, ok := g.pathID[path]
	return id, ok
}

// Label returns the display name for a path. Build guarantees every graph
// path has one.
func (g *Graph) Label(path string) string { return g.labels[path] }

// Paths returns all paths in id order. The slice is shared; treat it as
// read-only.
func (g *Graph) Paths() []string { return g.paths }

// CollectPaths returns every distinct path referenced by the pair sequence in
// first-discovery order (pair path first, then its dependencies). This is the
// same order Build assigns ids in, so the result aligns with node ids.
func CollectPaths(pairs []Pair) []string {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	for _, p := range pairs {
		add(p.Path)
		for _, dep := range p.Deps {
			add(dep)
		}
	}
	return paths
}
