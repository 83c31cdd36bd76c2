package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holgraph/holgraph/internal/server"
	"github.com/holgraph/holgraph/pkg/watch"
)

// serveCommand creates the serve command: an HTTP server that regenerates
// the graph whenever the source tree's artifacts change.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noWatch bool
		reduce  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve <src-root>",
		Short: "Serve the dependency graph over HTTP with live reload",
		Long: `Serve the dependency graph over HTTP.

The server renders the graph once at startup and then watches the source
tree: each Holmake run that touches artifact files triggers a regeneration.
Endpoints: / (viewer), /graph.svg, /graph.dot, /api/stats, /metrics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.Config.Serve.Addr = addr
			}
			return c.runServe(cmd.Context(), args[0], noWatch, reduce, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "serve a single snapshot without watching for changes")
	cmd.Flags().BoolVar(&reduce, "reduce", false, "remove transitive dependency edges")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, root string, noWatch, reduce, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.pipelineOptions(root)
	opts.Reduce = reduce

	srv := server.New(runner, opts, c.Config.Serve.Addr, c.Logger)

	prog := newProgress(c.Logger)
	if err := srv.Regenerate(ctx); err != nil {
		return err
	}
	prog.done("Initial graph ready")

	if !noWatch {
		w, err := watch.New(root, func(changed []string) {
			c.Logger.Info("artifacts changed", "count", len(changed))
			if err := srv.Regenerate(ctx); err != nil {
				c.Logger.Error("regeneration failed", "err", err)
			}
		}, watch.WithSuffixes(opts.Suffixes))
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		if err := w.Start(); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer w.Stop()
	}

	printInfo("Serving on %s", c.Config.Serve.Addr)
	return srv.ListenAndServe(ctx)
}
