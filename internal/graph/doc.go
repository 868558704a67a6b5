// Package graph implements the normalized node store: a node-indexed DAG
// with parent back-links, per-node copy-on-write across transactions, and
// two-layer (base + optimistic) indexing.
//
// # Nodes and identity
//
// A Node is identified by its pointer, not by an arena id — Go pointers
// already give the stable, comparable identity spec's design notes ask for
// from an "arena-allocated record keyed by integer id." Every mutating
// operation on a Node either updates it in place (same transaction) or
// produces a new Node and chains the old one forward via newerBase /
// newerOptimistic, per the copy-on-write discipline.
//
// # Indices
//
// Store holds two maps from store key to the head of that key's chain:
// baseIndex for committed (non-optimistic) state, optimisticIndex for the
// optimistic overlay. A lookup in optimistic mode checks optimisticIndex
// first and falls back to baseIndex; a lookup in base mode only ever
// consults baseIndex. Both the implicit root key ("QUERY" by default, or
// whatever rootId a caller supplies) and ordinary entity store keys live in
// the same two maps — there is nothing special about the root besides the
// convention that callers resolve it by a fixed key instead of by deriving
// one from response data.
//
// # Subscribers
//
// Every Node carries two subscriber buckets, baseSubscribers and
// optimisticSubscribers. A Set call that copy-on-writes a node folds the
// node's current subscribers into the transaction's pending notification
// set — base subscribers only when the transaction is itself non-optimistic,
// optimistic subscribers unconditionally (spec §4.2/§5).
package graph
