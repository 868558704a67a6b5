package atlas

import (
	"context"
	"fmt"

	"github.com/helfer/atlas/internal/eventbus"
	"github.com/helfer/atlas/internal/events"
	"github.com/helfer/atlas/internal/graph"
	"github.com/helfer/atlas/internal/readengine"
)

// notifyJob is one unit of deferred subscriber work: re-read sub's query
// and deliver the result. node is the root head the job's transaction
// committed, so each notification reflects that transaction's state; a nil
// node (the first read after Subscribe) resolves the current head at
// delivery time. txID is carried through only for the emitted event; it has
// no effect on delivery.
type notifyJob struct {
	sub  *subscription
	txID uint64
	node *graph.Node
}

// enqueue posts job to the dispatch loop. The channel is buffered but never
// unbounded — a Store under sustained write pressure with slow subscriber
// callbacks will apply backpressure to the writer, same as any bounded
// queue would. Callers must never hold s.mu while calling enqueue: deliver
// needs s.mu to drain the channel, so a blocking send made under that same
// lock would deadlock the two goroutines against each other the moment a
// transaction's touched set outgrows the buffer (see Store.Write).
func (s *Store) enqueue(job notifyJob) {
	s.queue <- job
}

// dispatchLoop is the Store's single background goroutine: it drains queue
// strictly in the order jobs were enqueued, which is what gives spec §5's
// ordering guarantee ("a subscriber's notifications for T1 < T2 are
// enqueued in that order ... observed in that order") for free — one
// consumer, one FIFO channel, no reordering possible.
func (s *Store) dispatchLoop() {
	for job := range s.queue {
		s.deliver(job)
	}
	close(s.done)
}

func (s *Store) deliver(job notifyJob) {
	s.mu.Lock()
	_, live := s.subs[job.sub]
	node := job.node
	if node == nil {
		node = s.graph.GetByKey(job.sub.rootKey, job.sub.optimistic)
	}
	s.mu.Unlock()

	if !live {
		return
	}

	evCtx := context.Background()
	sub := job.sub

	if node == nil {
		if sub.callbacks.Error != nil {
			sub.callbacks.Error(fmt.Errorf("node was removed"))
		}
		eventbus.Publish(evCtx, events.SubscriberNotified{RootKey: sub.rootKey, TxID: job.txID, HadError: true})
		return
	}

	view := readengine.NewObjectView(node, sub.selectionSet, sub.fragments, sub.variables)
	if sub.callbacks.Next != nil {
		sub.callbacks.Next(view)
	}
	eventbus.Publish(evCtx, events.SubscriberNotified{RootKey: sub.rootKey, TxID: job.txID, HadError: false})
}
