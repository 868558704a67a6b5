package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet_InPlace_WithinSameTransaction(t *testing.T) {
	s := NewStore()
	tx := s.NewTransaction(false)
	n := s.NewNode(tx)

	n2 := n.Set(s, "name", "a", tx)
	require.Same(t, n, n2, "same-transaction edits mutate in place")

	n3 := n2.Set(s, "name", "b", tx)
	require.Same(t, n, n3)
	v, ok := n.Get("name")
	require.True(t, ok)
	require.Equal(t, "b", v)
}

func TestSet_CopyOnWrite_AcrossTransactions(t *testing.T) {
	s := NewStore()
	tx1 := s.NewTransaction(false)
	n := s.NewNode(tx1)
	n = n.Set(s, "name", "a", tx1)

	tx2 := s.NewTransaction(false)
	n2 := n.Set(s, "name", "b", tx2)

	require.NotSame(t, n, n2, "cross-transaction edits copy-on-write")
	v, _ := n.Get("name")
	require.Equal(t, "a", v, "old version is immutable")
	v2, _ := n2.Get("name")
	require.Equal(t, "b", v2)
}

func TestSet_ReferentialShortCircuit(t *testing.T) {
	s := NewStore()
	tx1 := s.NewTransaction(false)
	n := s.NewNode(tx1)
	n = n.Set(s, "name", "a", tx1)

	tx2 := s.NewTransaction(false)
	n2 := n.Set(s, "name", "a", tx2)
	require.Same(t, n, n2, "setting an equal value is a no-op, even across transactions")
}

func TestCopyOnWrite_PropagatesToParents(t *testing.T) {
	s := NewStore()
	tx1 := s.NewTransaction(false)
	child := s.NewNode(tx1)
	parent := s.NewNode(tx1)
	parent = parent.Set(s, "child", child, tx1)
	child.AddParent(parent, "child")
	s.AttachKey(parent, "Root:1", false)

	tx2 := s.NewTransaction(false)
	newChild := child.Set(s, "x", 1, tx2)

	require.NotSame(t, child, newChild)
	newParent := s.GetByKey("Root:1", false)
	require.NotSame(t, parent, newParent, "parent must be copy-on-written when its child changes")
	v, ok := newParent.Get("child")
	require.True(t, ok)
	require.Same(t, newChild, v, "parent's pointer is re-pointed at the new child head")
}

func TestTwoIndexLayers_OptimisticFallsBackToBase(t *testing.T) {
	s := NewStore()
	tx := s.NewTransaction(false)
	n := s.NewNode(tx)
	n = n.Set(s, "phrase", "Half Empty", tx)
	s.AttachKey(n, "Glass:1", false)

	// No optimistic write has ever landed: optimistic visibility falls back to base.
	got := s.GetByKey("Glass:1", true)
	require.Same(t, n, got)

	otx := s.NewTransaction(true)
	on := n.Set(s, "phrase", "Half full", otx)
	s.AttachKey(on, "Glass:1", true)

	require.Same(t, n, s.GetByKey("Glass:1", false), "base reads never see the optimistic write")
	require.Same(t, on, s.GetByKey("Glass:1", true))
}

func TestSubscriberBuckets_BaseFiresOnlyOnNonOptimistic(t *testing.T) {
	s := NewStore()
	tx := s.NewTransaction(false)
	n := s.NewNode(tx)
	s.AttachKey(n, "K", false)

	s.Subscribe(n, "base-sub", false)
	s.Subscribe(n, "opt-sub", true)

	otx := s.NewTransaction(true)
	n.Set(s, "x", 1, otx)
	require.ElementsMatch(t, []any{"opt-sub"}, otx.Touched(), "optimistic write only wakes optimistic subscribers")

	btx := s.NewTransaction(false)
	n.Set(s, "y", 1, btx)
	require.ElementsMatch(t, []any{"base-sub", "opt-sub"}, btx.Touched(), "base write wakes both buckets")
}

func TestUnsubscribe_RemovesFromBothBuckets(t *testing.T) {
	s := NewStore()
	tx := s.NewTransaction(false)
	n := s.NewNode(tx)
	s.Subscribe(n, "sub", false)
	s.Subscribe(n, "sub", true)
	s.Unsubscribe(n, "sub")

	otx := s.NewTransaction(true)
	n.Set(s, "x", 1, otx)
	require.Empty(t, otx.Touched())
}

func TestArrayNode_NoHoles(t *testing.T) {
	s := NewStore()
	tx := s.NewTransaction(false)
	arr := NewArray(s, tx)
	arr = arr.Set(s, Index(0), "a", tx)
	arr = arr.Set(s, Index(1), "b", tx)
	require.Equal(t, 2, arr.Len)
}

func TestComputeKey(t *testing.T) {
	key, ok := ComputeKey(map[string]any{"__id": "opaque-1"})
	require.True(t, ok)
	require.Equal(t, "opaque-1", key)

	key, ok = ComputeKey(map[string]any{"__typename": "Stack", "id": 5})
	require.True(t, ok)
	require.Equal(t, "Stack:5", key)

	_, ok = ComputeKey(map[string]any{"name": "no identity"})
	require.False(t, ok)
}
