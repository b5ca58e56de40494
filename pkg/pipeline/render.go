package pipeline

import (
	"context"
	"fmt"

	"github.com/gwmap/gwmap/pkg/graph"
	gwio "github.com/gwmap/gwmap/pkg/io"
	"github.com/gwmap/gwmap/pkg/render"
	"github.com/gwmap/gwmap/pkg/render/dot"
	"github.com/gwmap/gwmap/pkg/render/mermaid"
)

// renderArtifacts renders every requested format from the topology graph.
// The focus filter applies to the Mermaid renderer; DOT-based formats
// always show the full topology.
func renderArtifacts(ctx context.Context, g *graph.Graph, mode render.Mode, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	// DOT source is shared between the dot and svg formats.
	var dotSrc string
	needsDOT := false
	for _, format := range opts.Formats {
		if format == FormatDOT || format == FormatSVG {
			needsDOT = true
		}
	}
	if needsDOT {
		dotSrc = dot.ToDOT(g, dot.Options{Mode: mode})
	}

	for _, format := range opts.Formats {
		switch format {
		case FormatMermaid:
			diagram, err := mermaid.Render(g, mermaid.Options{Mode: mode, Focus: opts.Focus})
			if err != nil {
				return nil, fmt.Errorf("render mermaid: %w", err)
			}
			artifacts[format] = []byte(diagram)

		case FormatDOT:
			artifacts[format] = []byte(dotSrc)

		case FormatSVG:
			svg, err := dot.RenderSVG(ctx, dotSrc)
			if err != nil {
				return nil, fmt.Errorf("render svg: %w", err)
			}
			artifacts[format] = svg

		case FormatJSON:
			data, err := gwio.Marshal(g)
			if err != nil {
				return nil, fmt.Errorf("export json: %w", err)
			}
			artifacts[format] = data

		default:
			return nil, ValidateFormat(format)
		}
	}

	return artifacts, nil
}
