package engine

import (
	"sync"

	"github.com/roach88/mediacore/internal/msg"
)

// msgQueue is a thread-safe FIFO queue of messages.
//
// The queue is unbounded so that effects completing in bursts never block on
// enqueue (an effect goroutine that blocked here could deadlock the loop).
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop (prevents goroutine hangs on context cancellation).
type msgQueue struct {
	mu     sync.Mutex
	items  []msg.Msg
	closed bool
	signal chan struct{} // Signals availability (buffered, size 1)
}

// newMsgQueue creates an empty queue.
func newMsgQueue() *msgQueue {
	return &msgQueue{
		items:  make([]msg.Msg, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds a message to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *msgQueue) Enqueue(m msg.Msg) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.items = append(q.items, m)

	// Non-blocking: buffer of 1 coalesces multiple signals
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes and returns the front message without blocking.
// Returns (nil, false) if the queue is empty.
func (q *msgQueue) TryDequeue() (msg.Msg, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}

	m := q.items[0]

	// Nil out the slot so the backing array does not retain the message
	q.items[0] = nil

	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}

	return m, true
}

// Wait returns a channel that signals when messages may be available.
// The channel is closed when the queue is closed.
func (q *msgQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *msgQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close signals that no more messages will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *msgQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
