package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/holgraph/holgraph/pkg/pipeline"
)

// graphCommand creates the graph command, the primary entry point: scan a
// source tree and emit the dependency graph as a DOT document.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output      string
		reduce      bool
		debugFiles  bool
		filterFiles string
		excludeDeps string
		keepDeps    string
		suffixes    []string
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "graph <src-root>",
		Short: "Generate a Graphviz DOT dependency graph from build artifacts",
		Long: `Generate a Graphviz DOT dependency graph from Holmake build artifacts.

The source tree is scanned for artifact files (.uo by default); each file
lists the compiled units it depends on. Node labels are shortened to the
smallest unambiguous form. With --reduce, dependency edges implied by longer
paths are removed, which usually makes large graphs readable.

The DOT document goes to stdout unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions(args[0])
			opts.Reduce = reduce
			opts.DebugPrintFiles = debugFiles
			if cmd.Flags().Changed("filter-files") {
				opts.FilterFiles = filterFiles
			}
			if cmd.Flags().Changed("exclude-deps") {
				opts.ExcludeDeps = excludeDeps
			}
			if cmd.Flags().Changed("keep-deps") {
				opts.KeepDeps = keepDeps
			}
			if cmd.Flags().Changed("suffix") {
				opts.Suffixes = suffixes
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = &seed
			}
			return c.runGraph(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the DOT document to a file instead of stdout")
	cmd.Flags().BoolVar(&reduce, "reduce", false, "remove transitive dependency edges")
	cmd.Flags().BoolVar(&debugFiles, "debug-print-files", false, "dump every artifact and its dependencies to stderr")
	cmd.Flags().StringVar(&filterFiles, "filter-files", "", "only read artifact files whose path matches this regexp")
	cmd.Flags().StringVar(&excludeDeps, "exclude-deps", "", "drop dependencies matching this regexp")
	cmd.Flags().StringVar(&keepDeps, "keep-deps", "", "keep only dependencies matching this regexp")
	cmd.Flags().StringSliceVar(&suffixes, "suffix", nil, "artifact file suffixes (default .uo)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "edge-color seed (default from config)")

	return cmd
}

// runGraph executes the pipeline and writes the DOT document.
func (c *CLI) runGraph(ctx context.Context, opts pipeline.Options, output string) error {
	runner, err := c.newRunner(true) // graph emission never touches the render cache
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Generate(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Generated graph from %d artifacts", result.Files))

	if output == "" {
		// Diagnostics go to the logger (stderr); stdout carries only the
		// document, so the command pipes cleanly into dot(1).
		fmt.Println(result.DOT)
		return nil
	}

	if err := os.WriteFile(output, []byte(result.DOT), 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Wrote dependency graph")
	printFile(output)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Files, false)
	return nil
}
