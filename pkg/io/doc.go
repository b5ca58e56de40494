// Package io provides JSON import and export for topology graphs.
//
// # Overview
//
// This package serializes topology graphs to and from a simple JSON
// format. The format is designed for:
//
//   - Integration with external tools that consume topology data
//   - Caching of built topologies for faster re-rendering
//   - Round-trip preservation: export, re-import, and render identically
//
// # JSON Format
//
// The format has two required top-level arrays:
//
//	{
//	  "nodes": [
//	    {"id": "gw_default_api_gateway", "type": "gateway", "label": "default/api-gateway"},
//	    {"id": "svc_default_api_service", "type": "backend", "label": "default/api-service"}
//	  ],
//	  "edges": [
//	    {"from": "gw_default_api_gateway", "to": "svc_default_api_service", "kind": "backend"}
//	  ]
//	}
//
// # Node Fields
//
// Required:
//   - id: Unique string identifier
//   - type: Node type (gatewayclass, gateway, listener, route, rule,
//     backend, endpoint, referencegrant)
//
// Optional:
//   - label: Display label (defaults to the id)
//   - meta: Freeform object for resource metadata
//
// # Metadata Keys
//
// The meta object can contain any data, but certain keys are recognized
// by the renderers:
//
//   - no_routes: Gateway has no attached routes (annotated in diagrams)
//   - weight: Backend reference weight on backend edges
//   - percent: Traffic share computed from weights
//   - port: Target port on backend edges
//
// # Import and Export
//
// Use [ImportJSON] / [ReadJSON] to read and [ExportJSON] / [WriteJSON] to
// write. Both directions validate graph integrity: duplicate node IDs and
// edges referencing unknown nodes are errors. [Marshal] returns the same
// encoding as bytes, which the pipeline hashes for cache keys. Node and
// edge order in the output is deterministic, so equal graphs marshal to
// identical bytes.
package io
