package readengine

import (
	"github.com/helfer/atlas/internal/graph"
	"github.com/helfer/atlas/internal/language"
)

// ReadRoot resolves rootKey in store for the given visibility and wraps it
// in an ObjectView over selectionSet. The second return value is false when
// the root itself has never been written, mirroring a cache miss rather
// than an empty object.
func ReadRoot(store *graph.Store, rootKey string, selectionSet language.SelectionSet, fragments language.FragmentDefinitionList, variables map[string]any, optimistic bool) (*ObjectView, bool) {
	node := store.GetByKey(rootKey, optimistic)
	if node == nil {
		return nil, false
	}
	return NewObjectView(node, selectionSet, fragments, variables), true
}
