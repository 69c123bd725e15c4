// Package state persists token tables outside the engine and moves them in
// and out of a running tokens.Engine.
//
// A Store loads and saves one table per Ref: a component's base table or one
// breakpoint override, namespaced by theme. The Loader orchestrates a
// component's refs:
//
//	Store -> Loader.Register -> engine.RegisterBase / RegisterOverride
//	engine.Store() -> Loader.Capture -> Store
//
// Meta carries storage-owned identity (SnapshotID, ETag) plus the override
// guard, so a captured component registers back with the same semantics.
// Mutate applies optimistic concurrency through ETag comparison.
package state
