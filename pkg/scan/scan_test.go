package scan

import (
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiscoverFiltersBySuffix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.uo", "")
	writeFile(t, dir, "b.ui", "")
	writeFile(t, dir, "sub/c.uo", "")
	writeFile(t, dir, "readme.txt", "")

	files, err := Discover(dir, []string{".uo"}, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	var names []string
	for _, f := range files {
		if !filepath.IsAbs(f) {
			t.Errorf("path %q is not absolute", f)
		}
		rel, _ := filepath.Rel(dir, f)
		names = append(names, rel)
	}
	want := []string{"a.uo", filepath.Join("sub", "c.uo")}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("files = %v, want %v", names, want)
	}
}

func TestDiscoverPathFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep/a.uo", "")
	writeFile(t, dir, "skip/b.uo", "")

	files, err := Discover(dir, []string{".uo"}, regexp.MustCompile(`/keep/`))
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 || !strings.Contains(files[0], "keep") {
		t.Errorf("files = %v, want only the keep/ entry", files)
	}
}

func TestDiscoverMultipleSuffixes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.uo", "")
	writeFile(t, dir, "b.ui", "")
	writeFile(t, dir, "c.sml", "")

	files, err := Discover(dir, []string{".uo", ".ui"}, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("files = %v, want 2 entries", files)
	}
}

func TestStripExtensions(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"fooTheory.uo", "fooTheory"},
		{"fooTheory.ui", "fooTheory"},
		{"dir.uo/fooTheory.sml", "dir/fooTheory"}, // anywhere, not just suffix
		{"bare", "bare"},
	}
	for _, tt := range tests {
		if got := StripExtensions(tt.in, DefaultExtensions); got != tt.want {
			t.Errorf("StripExtensions(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadDependencies(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "unit.uo", "  depA.uo\ndepB.ui\n\ndepC.sml\n")

	deps, err := ReadDependencies(path, DefaultExtensions, Filter{})
	if err != nil {
		t.Fatalf("ReadDependencies: %v", err)
	}

	// The blank line survives as an empty identifier; content is not
	// validated here.
	want := []string{"depA", "depB", "", "depC"}
	if !reflect.DeepEqual(deps, want) {
		t.Errorf("deps = %v, want %v", deps, want)
	}
}

func TestReadDependenciesExcludeBeforeInclude(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "unit.uo", "keep_this\nkeep_not\nother\n")

	deps, err := ReadDependencies(path, nil, Filter{
		Exclude: regexp.MustCompile(`not`),
		Include: regexp.MustCompile(`keep`),
	})
	if err != nil {
		t.Fatalf("ReadDependencies: %v", err)
	}
	if got, want := deps, []string{"keep_this"}; !reflect.DeepEqual(got, want) {
		t.Errorf("deps = %v, want %v", got, want)
	}
}

func TestReadDependenciesMissingFile(t *testing.T) {
	_, err := ReadDependencies(filepath.Join(t.TempDir(), "absent.uo"), nil, Filter{})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
