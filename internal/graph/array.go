package graph

import "strconv"

// parseArrayIndex reports whether storeName is the canonical string form of
// a non-negative integer array index.
func parseArrayIndex(storeName string) (int, bool) {
	idx, err := strconv.Atoi(storeName)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// NewArray mints a fresh, empty array node under tx.
func NewArray(store *Store, tx *Transaction) *Node {
	n := store.NewNode(tx)
	n.IsArray = true
	return n
}

// Index renders an array index as its store data key.
func Index(i int) string { return strconv.Itoa(i) }
