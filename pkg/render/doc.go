// Package render provides diagram rendering for topology graphs.
//
// # Overview
//
// This package holds the mode selector and the shared rendering contract;
// the actual emitters live in subpackages:
//
//   - [mermaid]: Mermaid flowchart output, the primary diagram format
//   - [dot]: Graphviz DOT output plus SVG conversion
//
// # Modes
//
// Two mutually exclusive layouts exist. Detailed mode renders the full
// depth per entry point (gateway subgraph with listeners, attached routes,
// their rules, weighted backends, live endpoints). Overview mode renders
// only four layers (classes, gateways, routes, backends) for topologies
// too large to read at full depth. [SelectMode] chooses between them from
// the gateway count.
//
// # Determinism
//
// Every emitter iterates the graph in sorted-by-ID order and contains no
// timestamps or random state: rendering the same graph twice produces
// byte-identical output. Golden tests depend on this.
//
// [mermaid]: github.com/gwmap/gwmap/pkg/render/mermaid
// [dot]: github.com/gwmap/gwmap/pkg/render/dot
package render
