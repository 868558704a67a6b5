package readengine

import (
	"fmt"
	"log"

	"github.com/helfer/atlas/internal/graph"
	"github.com/helfer/atlas/internal/language"
)

// ArrayView projects one array node through the nested selection set its
// owning field carried (spec §4.4). The same selectionSet applies at every
// depth of a nested array, exactly as writeengine.writeArrayNode recurses
// with the same field on the way in.
type ArrayView struct {
	node         *graph.Node
	selectionSet language.SelectionSet
	fragments    language.FragmentDefinitionList
	variables    map[string]any
}

// NewArrayView wraps an array node for reading through selectionSet.
func NewArrayView(node *graph.Node, selectionSet language.SelectionSet, fragments language.FragmentDefinitionList, variables map[string]any) *ArrayView {
	return &ArrayView{node: node, selectionSet: selectionSet, fragments: fragments, variables: variables}
}

// Len reports the array's dense length.
func (v *ArrayView) Len() int { return v.node.Len }

// Get projects element i: an explicit null stays nil, a nested array
// recurses into another ArrayView over the same selection set, an object
// element becomes an ObjectView, and a scalar element passes through
// untouched. An index the node never recorded a value for is the
// "unexpected undefined" anomaly of spec §4.4/§7 — logged as a diagnostic,
// not failed — and is distinct from an explicit null element.
func (v *ArrayView) Get(i int) (any, error) {
	if i < 0 || i >= v.node.Len {
		return nil, fmt.Errorf("array index %d out of range [0, %d)", i, v.node.Len)
	}
	raw, ok := v.node.Get(graph.Index(i))
	if !ok {
		log.Printf("readengine: unexpected undefined for array index %d", i)
		return nil, nil
	}
	if raw == nil {
		return nil, nil
	}
	return project(raw, v.selectionSet, v.fragments, v.variables), nil
}

// ToSlice materializes the view into a plain []any, recursing through
// nested views. Like ObjectView.ToMap, it exists for test assertions.
func (v *ArrayView) ToSlice() ([]any, error) {
	out := make([]any, v.Len())
	for i := range out {
		val, err := v.Get(i)
		if err != nil {
			return nil, err
		}
		out[i], err = flatten(val)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
