package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gwmap/gwmap/pkg/cache"
	gwio "github.com/gwmap/gwmap/pkg/io"
	"github.com/gwmap/gwmap/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string
	formats   string
	mode      string
	threshold int
	noCache   bool
	refresh   bool
}

// renderCommand creates the render command for re-rendering an exported
// topology without re-analyzing the snapshot.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [topology.json]",
		Short: "Render diagrams from an exported topology",
		Long: `Render diagrams from an exported topology.

The render command takes a topology.json file (produced by 'analyze -f json')
and renders it to Mermaid, DOT or SVG without rebuilding the graph. This is
useful for trying different modes or formats on the same snapshot.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): mermaid (default), dot, svg (comma-separated)")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "diagram mode: auto (default), detailed, overview")
	cmd.Flags().IntVar(&opts.threshold, "threshold", 0, "gateway count above which auto mode picks overview")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache")

	return cmd
}

// runRender imports the topology and renders the requested formats.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.mode == "" {
		opts.mode = cfg.Mode
	}
	if opts.threshold == 0 {
		opts.threshold = cfg.Threshold
	}

	g, err := gwio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load topology %s: %w", input, err)
	}
	c.Logger.Info("loaded topology", "nodes", g.NodeCount(), "edges", g.EdgeCount())

	pipeOpts := pipeline.Options{
		Dir:       input, // used only for validation and output naming
		Formats:   parseFormats(opts.formats, cfg.Format),
		Mode:      opts.mode,
		Threshold: opts.threshold,
		Refresh:   opts.refresh,
		Logger:    c.Logger,
	}
	if err := pipeOpts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var topologyHash string
	if data, err := gwio.Marshal(g); err == nil {
		topologyHash = cache.Hash(data)
	}

	mode := runner.ResolveMode(g, pipeOpts)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s diagram...", mode))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, g, topologyHash, mode, pipeOpts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	toStdout, err := writeArtifacts(artifacts, pipeOpts.Formats, input, opts.output)
	if err != nil {
		return err
	}
	if !toStdout {
		printSuccess("Rendered %d format(s) in %s mode %s", len(pipeOpts.Formats), mode, cachedTag(cacheHit))
	}
	return nil
}
