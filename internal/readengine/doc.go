// Package readengine builds immutable, query-shaped views over graph nodes
// (spec §4.4). A View is never materialized eagerly: ObjectView.Get and
// ArrayView.Get resolve one field or one element at a time, walking through
// matching fragments to find the selection that produced the requested
// name, translating it to a field store name, and projecting whatever the
// node store holds there — a scalar passed through untouched, a child node
// wrapped in another ObjectView, or an array node wrapped in an ArrayView
// carrying the same nested selection set down to every element.
//
// Go has no dynamic property interception, so "a view rejects every
// mutation" (spec §4.4/§7) is enforced by construction rather than by
// trapping writes at runtime: ObjectView and ArrayView expose only read
// methods (Get, Keys, Len, ToMap, ToSlice), never a setter, so there is
// nothing for a caller to even attempt to mutate through.
package readengine
