// Package resource defines the typed entities of a topology snapshot and
// the loader that produces them from raw collection records.
//
// The collection step (an external collaborator - typically a scripted
// cluster scan, a cached file, or a test fixture) emits one pipe-delimited
// record per physical resource, one file per kind. The loader's only job
// is type coercion and defaulting: records with the wrong field count are
// skipped and counted, never fatal and never silently dropped.
//
// Entities are immutable once loaded and hold no pointers to each other;
// all relationships are derived later by the resolver.
package resource
