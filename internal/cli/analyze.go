package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gwmap/gwmap/pkg/pipeline"
	"github.com/gwmap/gwmap/pkg/resource"
)

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	output      string // output file path (stdout if empty and single format)
	formats     string // comma-separated output formats
	mode        string // diagram mode: auto, detailed, overview
	threshold   int    // gateway count threshold for auto mode
	focus       string // namespace/name of a gateway to focus on
	showGrants  bool   // include ReferenceGrant nodes
	refresh     bool   // bypass the cache
	noCache     bool   // disable caching entirely
	interactive bool   // pick the focused gateway interactively
}

// analyzeCommand creates the analyze command, the main entry point.
// It loads a resource snapshot directory, builds the topology graph and
// renders it in the requested formats. The run summary is always printed.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze [dir]",
		Short: "Build and render the gateway topology from a resource snapshot",
		Long: `Build and render the gateway topology from a resource snapshot directory.

The directory holds one file per resource kind (gateways.txt, routes.txt, ...).
Missing files are treated as empty kinds. The topology is rendered in detailed
mode for small clusters and overview mode for large ones unless --mode forces
a choice.

Results are cached locally for faster subsequent runs.

Examples:
  gwmap analyze ./snapshot                        # Mermaid to stdout
  gwmap analyze ./snapshot -f svg -o topo.svg     # SVG to a file
  gwmap analyze ./snapshot -f mermaid,dot,json    # Multiple formats
  gwmap analyze ./snapshot --focus prod/edge      # Single gateway
  gwmap analyze ./snapshot -i                     # Pick gateway interactively`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd.Context(), cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): mermaid (default), dot, svg, json (comma-separated)")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "diagram mode: auto (default), detailed, overview")
	cmd.Flags().IntVar(&opts.threshold, "threshold", 0, "gateway count above which auto mode picks overview")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "focus on one gateway (namespace/name)")
	cmd.Flags().BoolVar(&opts.showGrants, "show-grants", false, "include ReferenceGrant nodes in the diagram")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick the focused gateway interactively")

	return cmd
}

// runAnalyze executes the full pipeline for the analyze command.
func (c *CLI) runAnalyze(ctx context.Context, cmd *cobra.Command, dir string, opts *analyzeOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	// Config supplies defaults for flags the user didn't set.
	if opts.mode == "" {
		opts.mode = cfg.Mode
	}
	if opts.threshold == 0 {
		opts.threshold = cfg.Threshold
	}
	if !cmd.Flags().Changed("show-grants") {
		opts.showGrants = cfg.ShowGrants
	}

	pipeOpts := pipeline.Options{
		Dir:        dir,
		Formats:    parseFormats(opts.formats, cfg.Format),
		Mode:       opts.mode,
		Threshold:  opts.threshold,
		Focus:      opts.focus,
		ShowGrants: opts.showGrants,
		Refresh:    opts.refresh,
		Logger:     c.Logger,
	}
	if err := pipeOpts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	if opts.interactive {
		focus, err := pickGateway(dir)
		if err != nil {
			return err
		}
		if focus == "" {
			printInfo("No gateway selected")
			return nil
		}
		pipeOpts.Focus = focus
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Analyzing topology...")
	spinner.Start()

	result, err := runner.Execute(ctx, pipeOpts)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return err
	}
	spinner.Stop()

	toStdout, err := writeArtifacts(result.Artifacts, pipeOpts.Formats, dir, opts.output)
	if err != nil {
		return err
	}

	// The summary is always printed; it moves to stderr when the diagram
	// occupies stdout.
	summaryOut := os.Stdout
	if toStdout {
		summaryOut = os.Stderr
	}
	writeSummary(summaryOut, result)

	return nil
}

// pickGateway loads the snapshot and lets the user choose a gateway.
// Returns "" when the user quits without selecting.
func pickGateway(dir string) (string, error) {
	snap, err := resource.LoadDir(dir)
	if err != nil {
		return "", err
	}
	if len(snap.Gateways) == 0 {
		return "", fmt.Errorf("no gateways in %s", dir)
	}
	return runGatewayPicker(gatewayItems(snap))
}
