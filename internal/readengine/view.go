package readengine

import "github.com/helfer/atlas/internal/graph"
import "github.com/helfer/atlas/internal/language"

// View is implemented by ObjectView and ArrayView; it exists only so call
// sites can switch on what a field or element resolved to without a type
// assertion chain.
type View interface {
	view()
}

func (*ObjectView) view() {}
func (*ArrayView) view()  {}

// project turns a raw value held in the node store into what a caller
// reading through a view should see: nil stays nil, a scalar (including an
// opaque array with no nested selection) passes through untouched, a child
// object node becomes an ObjectView, and a child array node becomes an
// ArrayView carrying the same nested selection down to every element.
func project(raw any, selectionSet language.SelectionSet, fragments language.FragmentDefinitionList, variables map[string]any) any {
	if raw == nil {
		return nil
	}
	node, ok := raw.(*graph.Node)
	if !ok {
		return raw
	}
	if node.IsArray {
		return NewArrayView(node, selectionSet, fragments, variables)
	}
	return NewObjectView(node, selectionSet, fragments, variables)
}
