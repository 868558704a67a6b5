package atlas

import (
	"context"
	"sync"
	"time"

	"github.com/helfer/atlas/internal/eventbus"
	"github.com/helfer/atlas/internal/events"
	"github.com/helfer/atlas/internal/graph"
	"github.com/helfer/atlas/internal/language"
	"github.com/helfer/atlas/internal/readengine"
	"github.com/helfer/atlas/internal/reqid"
	"github.com/helfer/atlas/internal/writeengine"
)

// Store is the façade over the node store, write engine, and read engine
// (spec §2 "the remaining ~10%"). All mutating operations are serialized by
// mu, matching spec §5's single-threaded cooperative scheduling model — Go
// callers are free to call a Store from multiple goroutines, but the store
// itself never interleaves two writes.
type Store struct {
	mu    sync.Mutex
	graph *graph.Store

	subs map[*subscription]struct{}

	queue chan notifyJob
	done  chan struct{}
}

// NewStore allocates an empty Store and starts its subscriber-dispatch
// goroutine (spec §4.3/§4.5: notifications are deferred to "the next task
// turn" — here, the next trip around the dispatch loop).
func NewStore() *Store {
	s := &Store{
		graph: graph.NewStore(),
		subs:  make(map[*subscription]struct{}),
		queue: make(chan notifyJob, 256),
		done:  make(chan struct{}),
	}
	go s.dispatchLoop()
	return s
}

// Close stops the dispatch goroutine. Pending notifications already queued
// are delivered before Close returns; the Store must not be used afterward.
func (s *Store) Close() {
	close(s.queue)
	<-s.done
}

// Read resolves ctx.RootID for ctx.IsOptimistic visibility and returns an
// immutable view over it parameterized by query's operation selection set.
// The second return value is false on a cache miss (spec §4.4 step 1).
func (s *Store) Read(query *language.QueryDocument, ctx Context) (*readengine.ObjectView, bool, error) {
	op, err := language.GetOperation(query, "")
	if err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	view, ok := readengine.ReadRoot(s.graph, ctx.rootID(), op.SelectionSet, query.Fragments, ctx.Variables, ctx.IsOptimistic)
	return view, ok, nil
}

// ReadQuery is a convenience wrapper around Read using the default root and
// non-optimistic visibility (spec §6).
func (s *Store) ReadQuery(query *language.QueryDocument, variables map[string]any) (*readengine.ObjectView, bool, error) {
	return s.Read(query, Context{Variables: variables})
}

// Write normalizes dataTree into the graph under query's operation
// selection set and returns true iff the root reference actually changed
// (spec §6, testable property 3).
func (s *Store) Write(query *language.QueryDocument, dataTree map[string]any, ctx Context) (bool, error) {
	op, err := language.GetOperation(query, "")
	if err != nil {
		return false, err
	}

	evCtx, _ := reqid.NewContext(context.Background())
	start := time.Now()

	rootKey := ctx.rootID()
	eventbus.Publish(evCtx, events.WriteStart{RootKey: rootKey, Optimistic: ctx.IsOptimistic})

	// jobs is populated while mu is held and enqueued only after it's
	// released (below): enqueue blocks on a bounded channel, and the
	// dispatch loop's deliver() needs mu to drain that channel — holding mu
	// across a blocking send would deadlock the two goroutines against each
	// other once a single transaction's touched set outgrows the channel's
	// buffer.
	var jobs []notifyJob

	s.mu.Lock()
	tx := s.graph.NewTransaction(ctx.IsOptimistic)

	oldRoot := s.graph.GetByKey(rootKey, ctx.IsOptimistic)
	info := &writeengine.Info{Fragments: query.Fragments, Variables: ctx.Variables}
	newRoot, err := writeengine.WriteSelectionSet(s.graph, tx, oldRoot, op.SelectionSet, dataTree, info)
	if err != nil {
		s.mu.Unlock()
		eventbus.Publish(evCtx, events.WriteCommitted{TxID: tx.ID(), Optimistic: ctx.IsOptimistic, Duration: time.Since(start), Err: err})
		return false, err
	}
	s.graph.AttachKey(newRoot, rootKey, ctx.IsOptimistic)

	changed := newRoot != oldRoot

	touched := tx.Touched()
	for _, raw := range touched {
		sub, ok := raw.(*subscription)
		if !ok {
			continue
		}
		head := s.graph.GetByKey(sub.rootKey, sub.optimistic)
		s.repin(sub, head)
		jobs = append(jobs, notifyJob{sub: sub, txID: tx.ID(), node: head})
	}
	s.mu.Unlock()

	eventbus.Publish(evCtx, events.WriteCommitted{
		TxID: tx.ID(), Optimistic: ctx.IsOptimistic, Touched: len(touched), Duration: time.Since(start),
	})
	for _, job := range jobs {
		s.enqueue(job)
	}

	return changed, nil
}

// WriteQuery is a convenience wrapper around Write using the default root
// and non-optimistic routing (spec §6).
func (s *Store) WriteQuery(query *language.QueryDocument, data map[string]any, variables map[string]any) (bool, error) {
	return s.Write(query, data, Context{Variables: variables})
}
