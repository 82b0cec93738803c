package dotplay

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

var (
	// ErrQueueClosed is returned when pushing to, or waiting on, a closed queue.
	ErrQueueClosed = errors.New("queue closed")
	errQueueFull   = errors.New("queue full")
)

// State is the lifecycle stage of a stream.
type State int

const (
	// Running means the producer may still enqueue frames.
	Running State = iota
	// Draining means the producer is exhausted but frames remain queued.
	Draining
	// Finished means the producer is exhausted and the queue is empty, or
	// the stream was aborted.
	Finished
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Item is one transformed frame waiting to be rendered. Frame points into a
// Pool slot that stays untouched until the item is popped.
type Item struct {
	Frame    *Gray
	PTS      int64
	TimeBase float64 // seconds per PTS unit
	Slot     int
}

// Timestamp returns the presentation time of the item.
func (it Item) Timestamp() time.Duration {
	return time.Duration(float64(it.PTS) * it.TimeBase * float64(time.Second))
}

// Queue is a bounded FIFO shared by one producer and one consumer. A single
// mutex guards it; notFull and notEmpty gate the two waits. The consumer
// peeks at the front while rendering and pops afterwards, so an item counts
// against the capacity until its frame has been drawn.
type Queue struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond

	items []Item // ring buffer
	head  int
	n     int

	closed    bool
	err       error
	highWater int
}

// NewQueue returns a queue holding at most capacity items.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	q := &Queue{items: make([]Item, capacity)}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// wake rouses every waiter so it can re-check its predicate. Taking the
// lock orders the broadcast after any waiter that has already checked ctx.
func (q *Queue) wake() {
	q.mu.Lock()
	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
	q.mu.Unlock()
}

// WaitNotFull blocks until the queue has room, the queue is closed, or ctx is done.
func (q *Queue) WaitNotFull(ctx context.Context) error {
	stop := context.AfterFunc(ctx, q.wake)
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for q.n >= len(q.items) && !q.closed {
		if err := ctx.Err(); err != nil {
			return err
		}
		q.notFull.Wait()
	}
	if q.closed {
		return ErrQueueClosed
	}
	return ctx.Err()
}

// Push appends item and wakes the consumer. Callers wait for room with
// WaitNotFull first.
func (q *Queue) Push(item Item) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	if q.n == len(q.items) {
		return errQueueFull
	}
	q.items[(q.head+q.n)%len(q.items)] = item
	q.n++
	q.highWater = max(q.highWater, q.n)
	q.notEmpty.Signal()
	return nil
}

// Peek blocks until an item is available and returns it without removing
// it. It returns io.EOF once the producer has finished and the queue is
// empty, or the producer's error if it failed.
func (q *Queue) Peek(ctx context.Context) (Item, error) {
	stop := context.AfterFunc(ctx, q.wake)
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for q.n == 0 && !q.closed {
		if err := ctx.Err(); err != nil {
			return Item{}, err
		}
		q.notEmpty.Wait()
	}
	if q.err != nil {
		return Item{}, q.err
	}
	if q.n == 0 {
		return Item{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}
	return q.items[q.head], nil
}

// Pop removes the front item and wakes the producer.
func (q *Queue) Pop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.n == 0 {
		return
	}
	q.items[q.head] = Item{}
	q.head = (q.head + 1) % len(q.items)
	q.n--
	q.notFull.Signal()
}

// Close marks the producer as done. A non-nil err aborts the stream: the
// consumer receives it from Peek instead of any remaining items. Only the
// first call has an effect.
func (q *Queue) Close(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.err = err
	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
}

// Len returns the number of in-flight items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return len(q.items)
}

// HighWater returns the largest number of items ever in flight at once.
func (q *Queue) HighWater() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.highWater
}

// State reports where the stream is in its lifecycle.
func (q *Queue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	switch {
	case !q.closed:
		return Running
	case q.n > 0 && q.err == nil:
		return Draining
	default:
		return Finished
	}
}
