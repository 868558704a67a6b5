package graph

// Store owns every Node and the two indices (spec §3 "Ownership"). All
// mutation flows through a Transaction; callers outside this package never
// construct a Node directly.
type Store struct {
	baseIndex       map[string]*Node
	optimisticIndex map[string]*Node

	nextTxID uint64
}

func NewStore() *Store {
	return &Store{
		baseIndex:       make(map[string]*Node),
		optimisticIndex: make(map[string]*Node),
	}
}

// GetByKey resolves key's head node for the given visibility. In optimistic
// mode, the optimistic index is consulted first and base is the fallback;
// in base mode only the base index is consulted (spec §4.2).
func (s *Store) GetByKey(key string, optimistic bool) *Node {
	if optimistic {
		if n, ok := s.optimisticIndex[key]; ok {
			return n
		}
	}
	if n, ok := s.baseIndex[key]; ok {
		return n
	}
	return nil
}

// NewNode mints a node stamped with tx's id and optimism flag.
func (s *Store) NewNode(tx *Transaction) *Node {
	return newNode(tx.id, tx.IsOptimistic)
}

// NewTransaction allocates a transaction with a monotonically increasing id
// (spec §5: "writes are totally ordered by the monotonic transaction
// counter").
func (s *Store) NewTransaction(optimistic bool) *Transaction {
	s.nextTxID++
	return &Transaction{
		id:          s.nextTxID,
		IsOptimistic: optimistic,
		touched:      make(map[any]struct{}),
	}
}

// AttachKey stamps node with a store key and registers it in the
// appropriate index: base when the write is non-optimistic, optimistic when
// it is (spec §4.3, resolved per DESIGN.md against scenario S6).
func (s *Store) AttachKey(node *Node, key string, optimistic bool) {
	node.key = key
	node.hasKey = true
	s.reindex(key, optimistic, node)
}

func (s *Store) reindex(key string, optimistic bool, node *Node) {
	if optimistic {
		s.optimisticIndex[key] = node
	} else {
		s.baseIndex[key] = node
	}
}

// cloneForWrite produces the copy-on-write replacement for target under tx:
// same data (shallow copy), same key/array bookkeeping, stamped with tx.
func (s *Store) cloneForWrite(target *Node, tx *Transaction) *Node {
	n := s.NewNode(tx)
	for k, v := range target.data {
		n.data[k] = v
	}
	n.key = target.key
	n.hasKey = target.hasKey
	n.IsArray = target.IsArray
	n.Len = target.Len
	return n
}

// adoptParents re-parents replacement the way target's own parents were
// wired, copy-on-writing each parent in turn so the change propagates all
// the way to every root reachable from target (spec invariant 5).
func (s *Store) adoptParents(target, replacement *Node, tx *Transaction) {
	for _, link := range target.parents {
		newParent := link.parent.Set(s, link.key, replacement, tx)
		replacement.parents = append(replacement.parents, parentLink{parent: newParent, key: link.key})
	}
}

// collectSubscribers folds target's subscribers into tx's pending
// notification set. Base subscribers fire only for non-optimistic
// transactions; optimistic subscribers fire for every transaction (spec
// §4.2/§5).
func (s *Store) collectSubscribers(target *Node, tx *Transaction) {
	if !tx.IsOptimistic {
		for sub := range target.baseSubscribers {
			tx.touched[sub] = struct{}{}
		}
	}
	for sub := range target.optimisticSubscribers {
		tx.touched[sub] = struct{}{}
	}
}

// Subscribe pins sub to node's base or optimistic bucket.
func (s *Store) Subscribe(node *Node, sub any, optimistic bool) {
	if optimistic {
		node.optimisticSubscribers[sub] = struct{}{}
	} else {
		node.baseSubscribers[sub] = struct{}{}
	}
}

// Unsubscribe removes sub from both of node's buckets.
func (s *Store) Unsubscribe(node *Node, sub any) {
	delete(node.baseSubscribers, sub)
	delete(node.optimisticSubscribers, sub)
}
