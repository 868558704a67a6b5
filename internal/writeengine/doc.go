// Package writeengine drives a selection-directed descent through an
// incoming response tree, invoking the node store to materialize or update
// graph nodes (spec §4.3).
//
// WriteSelectionSet chooses a working node (the one supplied by the caller,
// else one resolved by the data's own store key, else a freshly minted
// node), processes each collected field — scalar, object, or array — against
// it, and finally attaches a store-key index entry if the data is
// normalizable. Two writes that resolve to the same store key, even from
// unrelated top-level queries, converge on the same node: this is the
// mechanism behind spec's normalization property (testable property 4).
package writeengine
