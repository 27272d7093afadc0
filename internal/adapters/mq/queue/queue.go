// Package queue provides the mutation dispatch queue. Every state-changing
// operation (score entry, reset, comments, session switch, save, reload) is
// enqueued here and consumed by a single goroutine, so no two mutations ever
// run concurrently even though the HTTP host is multi-threaded.
package queue

import (
	"context"
	"sync"

	"github.com/evalrank/evalrank/pkg/metrics"
)

// defaultCapacity bounds the in-memory mutation queue.
const defaultCapacity = 1024

// Mutation is one state-changing operation awaiting dispatch.
type Mutation struct {
	// Name identifies the operation for logging.
	Name string
	// Apply performs the mutation. It runs on the dispatch goroutine.
	Apply func(ctx context.Context) error
	// Done receives Apply's result; buffered so dispatch never blocks.
	Done chan error
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a mutation to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, m Mutation) bool

	// Dequeue returns a channel that receives mutations in submission
	// order. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Mutation

	// Len returns the current number of queued mutations.
	Len(ctx context.Context) int

	// Close stops the queue. After closing, no new mutations can be
	// enqueued and the dequeue channel drains then closes.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	mutations chan Mutation
	capacity  int

	mu     sync.RWMutex
	closed bool
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum number of pending mutations.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// NewInMemoryQueue creates a new in-memory dispatch queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.mutations = make(chan Mutation, q.capacity)
	metrics.UpdateQueueDepth(0)
	return q
}

// Enqueue adds a mutation to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, m Mutation) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejection()
		return false
	}

	select {
	case q.mutations <- m:
		metrics.UpdateQueueDepth(len(q.mutations))
		return true
	case <-ctx.Done():
		metrics.RecordQueueRejection()
		return false
	default:
		metrics.RecordQueueRejection()
		return false
	}
}

// Dequeue returns the consumption channel.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Mutation {
	out := make(chan Mutation)
	go func() {
		defer close(out)
		for m := range q.mutations {
			select {
			case out <- m:
				metrics.UpdateQueueDepth(len(q.mutations))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued mutations.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.mutations)
}

// Close stops the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.mutations)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
