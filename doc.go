// Package atlas is a normalized, query-shaped object cache for hierarchical
// GraphQL-style query results. It ingests query responses, decomposes them
// into a graph of nodes keyed by entity identity (internal/graph), and
// reconstructs query-shaped views out of that graph on demand
// (internal/readengine), writing through a selection-directed traversal
// (internal/writeengine) that merges incoming data by entity key.
//
// A Store supports optimistic overlays — writes that land in a parallel
// index invisible to non-optimistic reads — and push-style subscriptions
// that re-deliver a query's view whenever the subgraph feeding it changes.
package atlas
