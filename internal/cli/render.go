package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holgraph/holgraph/pkg/pipeline"
)

// renderCommand creates the render command: rasterize the dependency graph
// to SVG or PNG via Graphviz.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
		reduce     bool
	)

	cmd := &cobra.Command{
		Use:   "render <src-root|graph.dot>",
		Short: "Render the dependency graph to SVG or PNG",
		Long: `Render the dependency graph to SVG or PNG using Graphviz.

The argument is either a source tree (scanned like 'graph') or an existing
.dot file. Rendered artifacts are cached locally, keyed by the document
content, so re-rendering an unchanged tree is instant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], formats, output, noCache, reduce)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&reduce, "reduce", false, "remove transitive dependency edges before rendering")

	return cmd
}

// runRender obtains the DOT document (from a file or a fresh pipeline run)
// and writes the rendered artifacts.
func (c *CLI) runRender(ctx context.Context, input string, formats []string, output string, noCache, reduce bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	dotSrc, stats, err := c.obtainDOT(ctx, runner, input, reduce)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Rendering graph...")
	spinner.Start()

	artifacts, cacheHit, err := runner.Render(ctx, dotSrc, formats)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	base := basePath(output, input)
	printSuccess("Rendered dependency graph")
	for _, format := range formats {
		path := base + "." + format
		if output != "" && len(formats) == 1 {
			path = output
		}
		if err := os.WriteFile(path, artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(stats.NodeCount, stats.EdgeCount, 0, cacheHit)
	return nil
}

// obtainDOT reads input as a DOT file when it has a .dot extension, and runs
// the pipeline over it as a source tree otherwise.
func (c *CLI) obtainDOT(ctx context.Context, runner *pipeline.Runner, input string, reduce bool) (string, pipeline.Stats, error) {
	if filepath.Ext(input) == ".dot" {
		data, err := os.ReadFile(input)
		if err != nil {
			return "", pipeline.Stats{}, fmt.Errorf("read %s: %w", input, err)
		}
		return string(data), pipeline.Stats{}, nil
	}

	opts := c.pipelineOptions(input)
	opts.Reduce = reduce
	result, err := runner.Generate(ctx, opts)
	if err != nil {
		return "", pipeline.Stats{}, err
	}
	return result.DOT, result.Stats, nil
}

// basePath derives the base output path from the output and input paths.
// If output is empty, the input's extension is stripped; a bare source tree
// yields its directory name.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(filepath.Base(filepath.Clean(input)), filepath.Ext(input))
		if base == "" || base == "." || base == string(filepath.Separator) {
			base = "depgraph"
		}
		return base
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
