package audio

import (
	"sync"
	"sync/atomic"
)

// commandQueue is an unbounded multi producer, single consumer FIFO.
//
// Producers take the lock to append. The audio callback only ever tries the
// lock; when a producer holds it the drain is skipped for this period and the
// commands are picked up by the next callback.
type commandQueue struct {
	mu      sync.Mutex
	items   []Command
	senders int
	stopped bool // the consumer is gone
}

func (q *commandQueue) push(cmd Command) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return ErrDisconnected
	}
	q.items = append(q.items, cmd)
	return nil
}

// drain appends every queued command to dst. disconnected reports that no
// sender is left and nothing was queued.
func (q *commandQueue) drain(dst []Command) (cmds []Command, disconnected bool) {
	if !q.mu.TryLock() {
		return dst, false
	}
	dst = append(dst, q.items...)
	for i := range q.items {
		q.items[i] = nil
	}
	q.items = q.items[:0]
	disconnected = q.senders == 0 && len(dst) == 0
	q.mu.Unlock()
	return dst, disconnected
}

func (q *commandQueue) addSender() {
	q.mu.Lock()
	q.senders++
	q.mu.Unlock()
}

func (q *commandQueue) dropSender() {
	q.mu.Lock()
	q.senders--
	q.mu.Unlock()
}

func (q *commandQueue) stop() {
	q.mu.Lock()
	q.stopped = true
	q.items = nil
	q.mu.Unlock()
}

// Sender is one producer on the engine's command queue. Send never blocks on
// the audio goroutine. Every Sender, including clones, must be closed; once
// all of them are, the audio callback stops the stream.
type Sender struct {
	q      *commandQueue
	load   func(path string)
	closed atomic.Bool
}

func newSender(q *commandQueue, load func(string)) *Sender {
	q.addSender()
	return &Sender{q: q, load: load}
}

func (s *Sender) Send(cmd Command) error {
	if s.closed.Load() {
		return ErrSenderClosed
	}
	if lm, ok := cmd.(LoadMusic); ok && nil != s.load {
		s.load(lm.Path)
		return nil
	}
	return s.q.push(cmd)
}

// Clone returns another producer for the same queue.
func (s *Sender) Clone() *Sender {
	return newSender(s.q, s.load)
}

func (s *Sender) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.q.dropSender()
	}
}
