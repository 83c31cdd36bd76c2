// Package dot serializes a dependency graph to Graphviz DOT text.
//
// The output format is fixed: it reproduces, byte for byte, the DOT documents
// emitted by the historical Holmake visualizer, so existing downstream
// tooling keeps working. Node declarations come first, then edges, with
// output-local identifiers n0, n1, ... assigned in first-encounter order.
package dot

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/holgraph/holgraph/pkg/depgraph"
)

// DefaultSeed is the historical default for the edge-color generator.
const DefaultSeed = 6737

// Options configures DOT serialization.
type Options struct {
	// Seed initializes the edge-color generator. The same seed over the same
	// graph yields identical output. Every value is a distinct seed; callers
	// wanting the historical default pass DefaultSeed.
	Seed int64
}

// Marshal renders g as a DOT document.
//
// Output-local node identifiers are assigned in first-encounter order while
// walking nodes by ascending internal id (the node's own path, then its
// surviving dependency paths). One random edge color is drawn per node in id
// order, whether or not the node has outgoing edges, so a fixed seed pins
// every color regardless of how reduction thinned the graph. Lines are
// joined with a single newline and the document has no trailing newline.
func Marshal(g *depgraph.Graph, opts Options) string {
	rng := rand.New(rand.NewSource(opts.Seed))

	// Collect referenced paths in declaration order.
	seen := make(map[string]bool)
	var order []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			order = append(order, p)
		}
	}
	for _, n := range g.Nodes() {
		add(g.Path(n.ID))
		for _, dep := range n.Dependencies() {
			add(g.Path(dep))
		}
	}

	lines := []string{"digraph G {", "", "# Nodes", ""}

	local := make(map[string]string, len(order))
	for i, p := range order {
		local[p] = fmt.Sprintf("n%d", i)
		lines = append(lines, fmt.Sprintf("n%d[label=\"%s\"]", i, g.Label(p)))
	}

	lines = append(lines, "", "# Edges", "")

	for _, n := range g.Nodes() {
		from := local[g.Path(n.ID)]
		color := randomColor(rng)
		for _, dep := range n.Dependencies() {
			lines = append(lines, fmt.Sprintf("%s -> %s[color=\"%s\"];", from, local[g.Path(dep)], color))
		}
	}

	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}

// randomColor draws one uppercase hex RGB color from rng.
func randomColor(rng *rand.Rand) string {
	return fmt.Sprintf("#%02X%02X%02X", rng.Intn(256), rng.Intn(256), rng.Intn(256))
}
