// Package pkg provides the core libraries for gwmap topology visualization.
//
// # Overview
//
// gwmap turns flat listings of Gateway API resources into a topology graph
// and renders it as a diagram whose level of detail adapts to cluster size.
// The pkg directory is organized into these areas:
//
//  1. [resource] - Record parsing into typed, immutable snapshot entities
//  2. [topology] - Reference resolution and graph assembly with a run summary
//  3. [graph] - The validated topology graph structure
//  4. [render] - Diagram emitters (Mermaid, Graphviz DOT/SVG) and mode selection
//  5. [pipeline] - Orchestration (load → build → render) with caching
//  6. [cache] - File, Redis, MongoDB and null cache backends
//  7. [io] - Topology JSON export and import
//
// # Architecture
//
// The typical data flow through gwmap:
//
//	Snapshot directory (one file per resource kind)
//	         ↓
//	    [resource] package (parse records into a snapshot)
//	         ↓
//	    [topology] package (resolve references, build the graph)
//	         ↓
//	    [render] package (select mode, emit diagrams)
//	         ↓
//	    Mermaid/DOT/SVG/JSON output + run summary
//
// # Quick Start
//
// Run the complete pipeline:
//
//	import (
//	    "context"
//	    "github.com/gwmap/gwmap/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Dir:     "./cluster-snapshot",
//	    Formats: []string{"mermaid"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(string(result.Artifacts["mermaid"]))
//
// Or drive the stages individually:
//
//	snap, _ := resource.LoadDir("./cluster-snapshot")
//	g, summary, _ := topology.Build(snap, topology.Options{})
//	out, _ := mermaid.Render(g, mermaid.Options{Mode: render.ModeDetailed})
//
// # Main Packages
//
// [resource] - Pipe-delimited record parsing for GatewayClasses, Gateways,
// Routes (HTTP/GRPC/TCP/TLS), RouteRules with weighted backends, Backends,
// ReferenceGrants and Endpoints. Malformed records are counted and skipped,
// never fatal.
//
// [topology] - Resolution semantics: class references, route attachment,
// cross-namespace backend references gated by ReferenceGrants, endpoint
// readiness rollups. Every unresolved reference lands in the run summary.
//
// [graph] - Typed nodes and edges with integrity validation: duplicate node
// IDs and dangling edge endpoints are construction errors.
//
// [render] - Mode selection (detailed vs overview by gateway count) plus the
// Mermaid emitter and the Graphviz-backed DOT/SVG emitter. Output is
// deterministic: identical topologies produce byte-identical diagrams.
//
// [pipeline] - The load → build → render orchestration shared by the CLI and
// the HTTP API, with two-level caching (topology by snapshot hash, diagrams
// by topology hash).
//
// [cache] - Cache backends: file (CLI default), Redis and MongoDB (shared
// deployments), null (disabled). Content hashing and retry helpers.
//
// [io] - Topology export to JSON and re-import for later re-rendering.
//
// [config] - TOML configuration (cache backend selection, default format,
// detail threshold, server address).
//
// [errors] - Structured errors with machine-readable codes and input
// validation helpers.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/topology/...     # Specific package
//
// [resource]: https://pkg.go.dev/github.com/gwmap/gwmap/pkg/resource
// [topology]: https://pkg.go.dev/github.com/gwmap/gwmap/pkg/topology
// [graph]: https://pkg.go.dev/github.com/gwmap/gwmap/pkg/graph
// [render]: https://pkg.go.dev/github.com/gwmap/gwmap/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/gwmap/gwmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/gwmap/gwmap/pkg/cache
// [io]: https://pkg.go.dev/github.com/gwmap/gwmap/pkg/io
// [config]: https://pkg.go.dev/github.com/gwmap/gwmap/pkg/config
// [errors]: https://pkg.go.dev/github.com/gwmap/gwmap/pkg/errors
package pkg
