// Package names derives short display names for artifact paths.
//
// Holmake artifact paths are long absolute paths; for graph labels we want
// the shortest form that is still unambiguous. Paths under the HOL4 system
// library are rewritten to a stable "HOL4/..." form, project paths are
// rebased at the project marker, and plain filenames are used wherever they
// do not collide. Colliding filenames fall back to the last three path
// segments.
package names

import "strings"

// Default marker values for HOL/HolBA source trees.
const (
	DefaultRootMarker    = "$(HOLDIR)/sigobj/"
	DefaultRootLabel     = "HOL4"
	DefaultProjectMarker = "/HolBA/"
)

// Options configures path prettification.
type Options struct {
	// RootMarker identifies system-library paths. Everything up to and
	// including the marker is replaced by RootLabel.
	RootMarker string

	// RootLabel is the prefix substituted for RootMarker, joined to the
	// remainder with a slash.
	RootLabel string

	// ProjectMarker identifies project paths. The pretty form starts at the
	// path segment the marker opens (the marker's leading separator is
	// dropped).
	ProjectMarker string
}

// DefaultOptions returns the marker configuration for HOL/HolBA trees.
func DefaultOptions() Options {
	return Options{
		RootMarker:    DefaultRootMarker,
		RootLabel:     DefaultRootLabel,
		ProjectMarker: DefaultProjectMarker,
	}
}

// Prettify rewrites a raw artifact path into its pretty form. The root
// marker is applied first, then the project marker; paths containing
// neither pass through unchanged.
func (o Options) Prettify(path string) string {
	pretty := path
	if o.RootMarker != "" {
		if i := strings.Index(pretty, o.RootMarker); i >= 0 {
			pretty = o.RootLabel + "/" + pretty[i+len(o.RootMarker):]
		}
	}
	if o.ProjectMarker != "" {
		if i := strings.Index(pretty, o.ProjectMarker); i >= 0 {
			pretty = pretty[i+1:]
		}
	}
	return pretty
}

// Collisions returns the pretty-form filenames that occur more than once
// across paths, in the order the second occurrence was seen. Collisions are
// a diagnostic, not an error: Resolve disambiguates them.
func (o Options) Collisions(paths []string) []string {
	seen := make(map[string]bool)
	reported := make(map[string]bool)
	var out []string
	for _, p := range paths {
		name := filename(o.Prettify(p))
		if seen[name] && !reported[name] {
			reported[name] = true
			out = append(out, name)
		}
		seen[name] = true
	}
	return out
}

// Resolve maps every path to its display name and returns the collision set
// alongside.
//
// Display rules, in order:
//   - pretty forms under the root label keep their full pretty form, so
//     system-library units are always visibly marked
//   - a filename unique across all paths is used as-is
//   - colliding filenames use the last three segments of the pretty form
func (o Options) Resolve(paths []string) (map[string]string, []string) {
	collisions := o.Collisions(paths)
	collided := make(map[string]bool, len(collisions))
	for _, name := range collisions {
		collided[name] = true
	}

	mapping := make(map[string]string, len(paths))
	for _, p := range paths {
		pretty := o.Prettify(p)
		switch {
		case o.RootLabel != "" && strings.HasPrefix(pretty, o.RootLabel+"/"):
			mapping[p] = pretty
		case !collided[filename(pretty)]:
			mapping[p] = filename(pretty)
		default:
			mapping[p] = lastSegments(pretty, 3)
		}
	}
	return mapping, collisions
}

// filename returns the final slash-separated segment.
func filename(path string) string {
	segments := strings.Split(path, "/")
	return segments[len(segments)-1]
}

// lastSegments returns the last n slash-separated segments rejoined, or the
// whole path when it has fewer.
func lastSegments(path string, n int) string {
	segments := strings.Split(path, "/")
	if len(segments) > n {
		segments = segments[len(segments)-n:]
	}
	return strings.Join(segments, "/")
}
