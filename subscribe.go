package atlas

import (
	"context"
	"fmt"

	"github.com/helfer/atlas/internal/eventbus"
	"github.com/helfer/atlas/internal/events"
	"github.com/helfer/atlas/internal/graph"
	"github.com/helfer/atlas/internal/language"
	"github.com/helfer/atlas/internal/readengine"
)

// Subscriber is the callback bundle a caller hands to Observable.Subscribe
// (spec §4.5). Error and Complete are optional; a notification that would
// call a nil Error is silently dropped (spec §7 "if absent, the delivery is
// silently dropped").
type Subscriber struct {
	Next     func(view *readengine.ObjectView)
	Error    func(err error)
	Complete func()
}

// subscription is the opaque key pinned to a node's subscriber bucket
// (spec §3 "subscribers" sets) and recorded in the store's active-subscriber
// table (spec §4.5 step 3).
type subscription struct {
	query        *language.QueryDocument
	selectionSet language.SelectionSet
	fragments    language.FragmentDefinitionList
	rootKey      string
	variables    map[string]any
	optimistic   bool
	callbacks    Subscriber

	// pinnedNode is the node this subscription's bucket entry currently
	// lives on. A write that copy-on-writes that node repins the
	// subscription onto the new head (see Store.repin) — the node a
	// subscriber is pinned to is an implementation detail, not something
	// spec §4.2's "subscribers" set is meant to make the caller track.
	pinnedNode *graph.Node
}

// Observable is returned by Store.Observe; Subscribe may be called any
// number of times to attach independent subscribers to the same query.
type Observable struct {
	store *Store
	query *language.QueryDocument
	op    *language.OperationDefinition
	ctx   Context
}

// Observe resolves ctx.RootID (as Read does) and fails synchronously if it
// does not exist yet — stricter than Read by design (spec §4.5 step 1).
func (s *Store) Observe(query *language.QueryDocument, ctx Context) (*Observable, error) {
	op, err := language.GetOperation(query, "")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	root := s.graph.GetByKey(ctx.rootID(), ctx.IsOptimistic)
	s.mu.Unlock()
	if root == nil {
		return nil, fmt.Errorf("Cannot subscribe to non-existent node with id %s", ctx.rootID())
	}

	return &Observable{store: s, query: query, op: op, ctx: ctx}, nil
}

// Subscribe registers sub on the observable's root node and schedules a
// first read on the next dispatch loop turn (spec §4.5 steps 2-4). The
// returned function unsubscribes, synchronously removing sub from the
// active table and the node's bucket (spec §4.5 step 5); a notification
// already enqueued before the call may still fire and is tolerated.
func (o *Observable) Subscribe(cb Subscriber) (unsubscribe func()) {
	s := o.store
	sub := &subscription{
		query:        o.query,
		selectionSet: o.op.SelectionSet,
		fragments:    o.query.Fragments,
		rootKey:      o.ctx.rootID(),
		variables:    o.ctx.Variables,
		optimistic:   o.ctx.IsOptimistic,
		callbacks:    cb,
	}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	node := s.graph.GetByKey(sub.rootKey, sub.optimistic)
	if node != nil {
		s.graph.Subscribe(node, sub, sub.optimistic)
		sub.pinnedNode = node
	}
	s.mu.Unlock()

	evCtx := context.Background()
	eventbus.Publish(evCtx, events.SubscriberRegistered{RootKey: sub.rootKey, Optimistic: sub.optimistic})
	s.enqueue(notifyJob{sub: sub, txID: 0})

	return func() {
		s.mu.Lock()
		delete(s.subs, sub)
		if sub.pinnedNode != nil {
			s.graph.Unsubscribe(sub.pinnedNode, sub)
		}
		s.mu.Unlock()
	}
}

// repin moves sub's bucket entry from its currently pinned node to head,
// the node store.Write just established as the current node for sub's root
// key. Called under s.mu.
func (s *Store) repin(sub *subscription, head *graph.Node) {
	if head == sub.pinnedNode {
		return
	}
	if sub.pinnedNode != nil {
		s.graph.Unsubscribe(sub.pinnedNode, sub)
	}
	if head != nil {
		s.graph.Subscribe(head, sub, sub.optimistic)
	}
	sub.pinnedNode = head
}
