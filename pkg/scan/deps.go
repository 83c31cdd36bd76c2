package scan

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// DefaultSuffixes selects the artifact files Holmake writes dependency lists
// into.
var DefaultSuffixes = []string{".uo"}

// DefaultExtensions are the build extensions stripped from dependency lines.
var DefaultExtensions = []string{".sml", ".sig", ".ui", ".uo"}

// Filter selects dependency lines. Exclude wins over Include: a line
// matching Exclude is dropped before Include is consulted.
type Filter struct {
	Exclude *regexp.Regexp
	Include *regexp.Regexp
}

// Keep reports whether a dependency line passes the filter.
func (f Filter) Keep(line string) bool {
	if f.Exclude != nil && f.Exclude.MatchString(line) {
		return false
	}
	if f.Include != nil && !f.Include.MatchString(line) {
		return false
	}
	return true
}

// StripExtensions removes every occurrence of each extension anywhere in s,
// not just at the end. Holmake lines embed extensions mid-string in some
// layouts, and the historical tooling strips by substring replacement; this
// keeps identifiers comparable across .ui/.uo records.
func StripExtensions(s string, extensions []string) string {
	for _, ext := range extensions {
		s = strings.ReplaceAll(s, ext, "")
	}
	return s
}

// ReadDependencies reads one artifact file and returns its dependency
// identifiers in file order. Each line is whitespace-trimmed and
// extension-stripped before filtering. Line content is otherwise not
// validated; a malformed line simply becomes an identifier.
func ReadDependencies(path string, extensions []string, filter Filter) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var deps []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := StripExtensions(strings.TrimSpace(scanner.Text()), extensions)
		if !filter.Keep(line) {
			continue
		}
		deps = append(deps, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return deps, nil
}
