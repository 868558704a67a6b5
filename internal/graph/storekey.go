package graph

import "fmt"

// ComputeKey derives the store key for an incoming data object (spec §3):
// an explicit __id wins, else __typename:id, else the object is
// non-normalizable and ComputeKey reports false.
func ComputeKey(data map[string]any) (string, bool) {
	if id, ok := data["__id"]; ok && id != nil {
		return fmt.Sprint(id), true
	}
	typename, ok := data["__typename"].(string)
	if !ok || typename == "" {
		return "", false
	}
	id, ok := data["id"]
	if !ok || id == nil {
		return "", false
	}
	return typename + ":" + fmt.Sprint(id), true
}
