// Package mermaid renders topology graphs as Mermaid flowchart documents.
//
// The emitter walks the graph under the selected mode's layout rules:
// detailed mode produces one subgraph per gateway (with its listeners
// embedded) and full depth down to live endpoints; overview mode produces
// one subgraph per layer and collapses rule fan-out into direct
// route-to-backend edges. Rule-to-backend edges carry their computed
// integer percentage as the edge label; every other edge is labeled with
// its relationship kind. Each entity type gets one classDef, applied the
// same way in both modes.
package mermaid
