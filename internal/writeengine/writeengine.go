package writeengine

import (
	"fmt"

	"github.com/helfer/atlas/internal/graph"
	"github.com/helfer/atlas/internal/language"
)

// Info carries the per-write context threaded through the whole descent.
type Info struct {
	Fragments language.FragmentDefinitionList
	Variables map[string]any
}

// missingField builds the sentinel-prefixed error spec §6/§7 calls for when
// a selection requires a field the data tree does not provide.
func missingField(name string) error {
	return &language.Error{Prefix: "Missing field ", Message: "Missing field " + name}
}

// WriteSelectionSet is the entry point of spec §4.3's writeSelectionSet. node
// may be nil, in which case the working node is resolved by data's store key
// or freshly minted.
func WriteSelectionSet(store *graph.Store, tx *graph.Transaction, node *graph.Node, selectionSet language.SelectionSet, data map[string]any, info *Info) (*graph.Node, error) {
	working := node
	if working == nil {
		if key, ok := graph.ComputeKey(data); ok {
			working = store.GetByKey(key, tx.IsOptimistic)
		}
		if working == nil {
			working = store.NewNode(tx)
		}
	}

	typename, _ := data["__typename"].(string)
	grouped, err := language.CollectFields(selectionSet, info.Fragments, typename, info.Variables)
	if err != nil {
		return nil, err
	}

	for _, cf := range grouped {
		for _, field := range cf.Fields {
			working, err = writeField(store, tx, working, field, data, info)
			if err != nil {
				return nil, err
			}
		}
	}

	if key, ok := graph.ComputeKey(data); ok {
		store.AttachKey(working, key, tx.IsOptimistic)
	}
	return working, nil
}

func writeField(store *graph.Store, tx *graph.Transaction, node *graph.Node, field *language.Field, data map[string]any, info *Info) (*graph.Node, error) {
	responseKey := field.Alias
	if responseKey == "" {
		responseKey = field.Name
	}

	raw, ok := data[responseKey]
	if !ok {
		return nil, missingField(responseKey)
	}

	storeName, err := language.GetStoreName(field, info.Variables)
	if err != nil {
		return nil, err
	}

	if field.SelectionSet == nil || raw == nil {
		return node.Set(store, storeName, raw, tx), nil
	}

	if arr, ok := raw.([]any); ok {
		return writeArrayNode(store, tx, node, storeName, field, arr, info)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("field %s: expected object, got %T", responseKey, raw)
	}

	var currentChild *graph.Node
	if existing, ok := node.Get(storeName); ok {
		if n, ok2 := existing.(*graph.Node); ok2 && !n.IsArray {
			currentChild = n
		}
	}
	child, err := WriteSelectionSet(store, tx, currentChild, field.SelectionSet, obj, info)
	if err != nil {
		return nil, err
	}
	parentAfterSet := node.Set(store, storeName, child, tx)
	child.AddParent(parentAfterSet, storeName)
	return parentAfterSet, nil
}

// writeArrayNode implements spec §4.3's writeArrayNode, recursing on itself
// for arbitrarily nested arrays — field.SelectionSet applies at every depth,
// only the container ("parent"/"key") changes on each recursive step.
func writeArrayNode(store *graph.Store, tx *graph.Transaction, parent *graph.Node, key string, field *language.Field, arrayData []any, info *Info) (*graph.Node, error) {
	var arrayNode *graph.Node
	if existing, ok := parent.Get(key); ok {
		if n, ok2 := existing.(*graph.Node); ok2 && n.IsArray {
			arrayNode = n
		}
	}
	if arrayNode == nil {
		arrayNode = graph.NewArray(store, tx)
	}

	for i, elem := range arrayData {
		idxKey := graph.Index(i)

		if nested, ok := elem.([]any); ok {
			next, err := writeArrayNode(store, tx, arrayNode, idxKey, field, nested, info)
			if err != nil {
				return nil, err
			}
			arrayNode = next
			continue
		}

		if elem == nil {
			arrayNode = arrayNode.Set(store, idxKey, elem, tx)
			continue
		}

		obj, ok := elem.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("array element %d: expected object, got %T", i, elem)
		}

		var currentChild *graph.Node
		if existing, ok := arrayNode.Get(idxKey); ok {
			if n, ok2 := existing.(*graph.Node); ok2 {
				currentChild = n
			}
		}
		child, err := WriteSelectionSet(store, tx, currentChild, field.SelectionSet, obj, info)
		if err != nil {
			return nil, err
		}
		arrayNodeAfterSet := arrayNode.Set(store, idxKey, child, tx)
		child.AddParent(arrayNodeAfterSet, idxKey)
		arrayNode = arrayNodeAfterSet
	}

	parentAfterSet := parent.Set(store, key, arrayNode, tx)
	arrayNode.AddParent(parentAfterSet, key)
	return parentAfterSet, nil
}
