package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/holgraph/holgraph/pkg/errors"
)

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// writeArtifact writes an artifact file with one dependency per line.
func writeArtifact(t *testing.T, dir, name string, deps ...string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	content := strings.Join(deps, "\n")
	if len(deps) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "a.uo", filepath.Join(dir, "b.uo"), filepath.Join(dir, "c.uo"))
	writeArtifact(t, dir, "b.uo", filepath.Join(dir, "c.uo"))
	writeArtifact(t, dir, "c.uo")

	r := NewRunner(nil, discardLogger())
	result, err := r.Generate(context.Background(), Options{Root: dir})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if result.Files != 3 {
		t.Errorf("Files = %d, want 3", result.Files)
	}
	if result.Stats.NodeCount != 3 {
		t.Errorf("NodeCount = %d, want 3", result.Stats.NodeCount)
	}
	if result.Stats.EdgeCount != 3 {
		t.Errorf("EdgeCount = %d, want 3", result.Stats.EdgeCount)
	}
	if !strings.HasPrefix(result.DOT, "digraph G {") {
		t.Errorf("DOT does not start with header:\n%s", result.DOT)
	}
	// Filenames are unique here, so labels are bare names.
	if !strings.Contains(result.DOT, `label="a"`) {
		t.Errorf("DOT missing short label:\n%s", result.DOT)
	}
	if len(result.Collisions) != 0 {
		t.Errorf("Collisions = %v, want none", result.Collisions)
	}
}

func TestGenerateReduce(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "a.uo", filepath.Join(dir, "b.uo"), filepath.Join(dir, "c.uo"))
	writeArtifact(t, dir, "b.uo", filepath.Join(dir, "c.uo"))
	writeArtifact(t, dir, "c.uo")

	r := NewRunner(nil, discardLogger())
	result, err := r.Generate(context.Background(), Options{Root: dir, Reduce: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// The a -> c edge is implied through b and gets removed.
	if result.Stats.EdgeCount != 2 {
		t.Errorf("EdgeCount = %d, want 2", result.Stats.EdgeCount)
	}
}

func seedOf(v int64) *int64 { return &v }

func TestGenerateDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "a.uo", filepath.Join(dir, "b.uo"))
	writeArtifact(t, dir, "b.uo")

	r := NewRunner(nil, discardLogger())

	first, err := r.Generate(context.Background(), Options{Root: dir, Seed: seedOf(7)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := r.Generate(context.Background(), Options{Root: dir, Seed: seedOf(7)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if first.DOT != second.DOT {
		t.Error("same tree and seed must produce identical DOT")
	}
}

func TestGenerateSeedZeroIsNotTheDefault(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "a.uo", filepath.Join(dir, "b.uo"))
	writeArtifact(t, dir, "b.uo")

	r := NewRunner(nil, discardLogger())

	zero, err := r.Generate(context.Background(), Options{Root: dir, Seed: seedOf(0)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	unset, err := r.Generate(context.Background(), Options{Root: dir})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if zero.DOT == unset.DOT {
		t.Error("explicit seed 0 must not fall back to the default seed")
	}
}

func TestGenerateDebugPrintFiles(t *testing.T) {
	dir := t.TempDir()
	dep := filepath.Join(dir, "b.uo")
	writeArtifact(t, dir, "a.uo", dep)
	writeArtifact(t, dir, "b.uo")

	var buf strings.Builder
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})

	r := NewRunner(nil, discardLogger())
	_, err := r.Generate(context.Background(), Options{
		Root:            dir,
		DebugPrintFiles: true,
		Logger:          logger,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, filepath.Join(dir, "a")) {
		t.Errorf("dump missing artifact path:\n%s", out)
	}
	if !strings.Contains(out, "  - "+filepath.Join(dir, "b")) {
		t.Errorf("dump missing dependency line:\n%s", out)
	}
}

func TestGenerateCollisionFallback(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "tools/foo.uo")
	writeArtifact(t, dir, "core/foo.uo")

	r := NewRunner(nil, discardLogger())
	result, err := r.Generate(context.Background(), Options{Root: dir})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(result.Collisions) != 1 || result.Collisions[0] != "foo" {
		t.Errorf("Collisions = %v, want [foo]", result.Collisions)
	}
	if !strings.Contains(result.DOT, "tools/foo") || !strings.Contains(result.DOT, "core/foo") {
		t.Errorf("colliding names not disambiguated:\n%s", result.DOT)
	}
}

func TestGenerateDependencyFilters(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "a.uo", "keepMe", "dropMe")

	r := NewRunner(nil, discardLogger())
	result, err := r.Generate(context.Background(), Options{
		Root:        dir,
		ExcludeDeps: "drop",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if strings.Contains(result.DOT, "dropMe") {
		t.Errorf("excluded dependency survived:\n%s", result.DOT)
	}
	if !strings.Contains(result.DOT, "keepMe") {
		t.Errorf("kept dependency missing:\n%s", result.DOT)
	}
}

func TestGenerateRequiresRoot(t *testing.T) {
	r := NewRunner(nil, discardLogger())
	_, err := r.Generate(context.Background(), Options{})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestGenerateRejectsBadPattern(t *testing.T) {
	r := NewRunner(nil, discardLogger())
	_, err := r.Generate(context.Background(), Options{
		Root:        t.TempDir(),
		FilterFiles: "[",
	})
	if !errors.Is(err, errors.ErrCodeInvalidPattern) {
		t.Errorf("err = %v, want INVALID_PATTERN", err)
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{FormatDOT, FormatSVG, FormatPNG}); err != nil {
		t.Errorf("valid formats rejected: %v", err)
	}
	if err := ValidateFormats([]string{"pdf"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestRenderDOTPassthrough(t *testing.T) {
	r := NewRunner(nil, discardLogger())
	doc := "digraph G {\n}"

	artifacts, cached, err := r.Render(context.Background(), doc, []string{FormatDOT})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(artifacts[FormatDOT]) != doc {
		t.Errorf("dot artifact = %q", artifacts[FormatDOT])
	}
	if !cached {
		t.Error("dot-only render should count as fully cached")
	}
}
