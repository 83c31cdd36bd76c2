// Package transform provides in-place graph transformations.
package transform

import (
	"github.com/holgraph/holgraph/pkg/depgraph"
)

// RemoveTransitive removes every dependency edge that is implied by a longer
// path through the graph, leaving only direct edges that are not reachable
// another way.
//
// The procedure matches the historical Holmake visualizer exactly, including
// its order dependence: nodes are processed in ascending id order, and for
// each node a snapshot of its current dependency list is walked in order.
// Everything reachable from a direct dependency (the dependency's own
// closure, not the dependency itself) is removed from the node's direct set.
// Because later nodes see the already-thinned dependency lists of earlier
// ones, different id assignments can produce different (equally valid looking)
// results; id assignment is deterministic, so repeated runs agree.
//
// The walk assumes an acyclic graph. Cycles would make reachability
// ill-defined here; the caller is responsible for not feeding cyclic input.
//
// The dependents index is not updated and keeps its construction-time
// contents.
func RemoveTransitive(g *depgraph.Graph) {
	for _, node := range g.Nodes() {
		// Snapshot: removals during the walk must not change which direct
		// dependencies get their closures expanded.
		for _, dep := range node.Dependencies() {
			removeReachable(g, node, dep)
		}
	}
}

// removeReachable walks everything reachable from start in pre-order and
// removes each visited id, except start itself, from base's direct
// dependency set. A per-walk visited set bounds the work; since every path
// to an already-visited node removes the same ids, skipping revisits does
// not change the outcome on acyclic input.
func removeReachable(g *depgraph.Graph, base *depgraph.Node, start int) {
	visited := map[int]bool{start: true}
	stack := []int{start}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur != start {
			base.RemoveDependency(cur)
		}

		node, ok := g.Node(cur)
		if !ok {
			continue
		}
		deps := node.Dependencies()
		// Push in reverse so the first-listed dependency is expanded first.
		for i := len(deps) - 1; i >= 0; i-- {
			if !visited[deps[i]] {
				visited[deps[i]] = true
				stack = append(stack, deps[i])
			}
		}
	}
}
