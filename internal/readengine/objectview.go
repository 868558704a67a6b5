package readengine

import (
	"fmt"
	"log"

	"github.com/helfer/atlas/internal/graph"
	"github.com/helfer/atlas/internal/language"
)

// ObjectView projects one graph node through one selection set (spec §4.4).
// It is immutable and cheap to construct — no field is resolved until Get or
// Keys asks for it.
type ObjectView struct {
	node         *graph.Node
	selectionSet language.SelectionSet
	fragments    language.FragmentDefinitionList
	variables    map[string]any
}

// NewObjectView wraps node for reading through selectionSet.
func NewObjectView(node *graph.Node, selectionSet language.SelectionSet, fragments language.FragmentDefinitionList, variables map[string]any) *ObjectView {
	return &ObjectView{node: node, selectionSet: selectionSet, fragments: fragments, variables: variables}
}

func (v *ObjectView) typename() string {
	raw, ok := v.node.Get("__typename")
	if !ok {
		return ""
	}
	s, _ := raw.(string)
	return s
}

// Keys returns the response names the selection set exposes on this object,
// in query order, after resolving which fragments match the node's runtime
// __typename.
func (v *ObjectView) Keys() ([]string, error) {
	grouped, err := language.CollectFields(v.selectionSet, v.fragments, v.typename(), v.variables)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(grouped))
	for i, cf := range grouped {
		keys[i] = cf.ResponseName
	}
	return keys, nil
}

// Get resolves name (a response name, i.e. alias or field name) to its
// projected value. A store entry explicitly holding null exposes nil with no
// fuss. A store entry that was never written is a different thing: the
// selection asked for a field the graph simply doesn't have, which is the
// "unexpected undefined" case spec §4.4/§7 calls a projection anomaly — this
// revision logs it as a diagnostic and still returns (nil, nil) rather than
// failing the read.
func (v *ObjectView) Get(name string) (any, error) {
	grouped, err := language.CollectFields(v.selectionSet, v.fragments, v.typename(), v.variables)
	if err != nil {
		return nil, err
	}
	for _, cf := range grouped {
		if cf.ResponseName != name {
			continue
		}
		field := cf.Fields[0]
		storeName, err := language.GetStoreName(field, v.variables)
		if err != nil {
			return nil, err
		}
		raw, ok := v.node.Get(storeName)
		if !ok {
			log.Printf("readengine: unexpected undefined for field %q (store name %q) on %s", name, storeName, v.typename())
			return nil, nil
		}
		if raw == nil {
			return nil, nil
		}
		if field.SelectionSet == nil {
			return raw, nil
		}
		return project(raw, field.SelectionSet, v.fragments, v.variables), nil
	}
	return nil, fmt.Errorf("field %q is not in this selection set", name)
}

// ToMap materializes the view into a plain map[string]any/[]any tree,
// recursing through nested views. It exists for structural-equality
// assertions in tests, not as part of the read engine's normal path.
func (v *ObjectView) ToMap() (map[string]any, error) {
	keys, err := v.Keys()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		val, err := v.Get(k)
		if err != nil {
			return nil, err
		}
		out[k], err = flatten(val)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func flatten(val any) (any, error) {
	switch vv := val.(type) {
	case *ObjectView:
		return vv.ToMap()
	case *ArrayView:
		return vv.ToSlice()
	default:
		return val, nil
	}
}
