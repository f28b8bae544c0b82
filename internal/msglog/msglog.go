// Package msglog provides the in-memory conversation message log.
package msglog

import (
	"sync"

	"github.com/flowmindhq/flowmind/internal/domain"
)

// Log is a fixed-size circular buffer of message records. Once full, new
// appends overwrite the oldest record, capping real memory use instead of
// relying on query-time truncation.
type Log struct {
	buf  []domain.Message
	size int
	head int // next write position
	tail int // oldest record
	full bool

	subs map[chan domain.Message]struct{}
	mu   sync.RWMutex
}

// New creates a message log with the given capacity.
// Capacities <= 0 fall back to 1000 records.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Log{
		buf:  make([]domain.Message, capacity),
		size: capacity,
		subs: make(map[chan domain.Message]struct{}),
	}
}

// Append adds a record to the log, overwriting the oldest record when the
// buffer is full, and notifies subscribers. Append order is FIFO.
func (l *Log) Append(m domain.Message) {
	l.mu.Lock()
	if l.full {
		l.tail = (l.tail + 1) % l.size
	}
	l.buf[l.head] = m
	l.head = (l.head + 1) % l.size
	if l.head == l.tail {
		l.full = true
	}
	for ch := range l.subs {
		select {
		case ch <- m:
		default:
			// Slow subscriber: drop rather than block the append path.
		}
	}
	l.mu.Unlock()
}

// Recent returns up to the last n records in original append order.
func (l *Log) Recent(n int) []domain.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	all := l.snapshot()
	if n < len(all) {
		return all[len(all)-n:]
	}
	return all
}

// All returns every retained record in append order.
func (l *Log) All() []domain.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot()
}

// Len returns the number of retained records.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	switch {
	case l.full:
		return l.size
	case l.head >= l.tail:
		return l.head - l.tail
	default:
		return l.size - l.tail + l.head
	}
}

// Subscribe registers a channel that receives every record appended after
// the call. The channel should be buffered; records are dropped when it is
// full.
func (l *Log) Subscribe() chan domain.Message {
	ch := make(chan domain.Message, 64)
	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()
	return ch
}

// SnapshotAndSubscribe captures up to the last n records and registers a
// subscription under one lock, so every record lands in exactly one of the
// two: no append can slip between the snapshot and the subscription.
func (l *Log) SnapshotAndSubscribe(n int) ([]domain.Message, chan domain.Message) {
	ch := make(chan domain.Message, 64)
	l.mu.Lock()
	defer l.mu.Unlock()

	all := l.snapshot()
	if n < len(all) {
		all = all[len(all)-n:]
	}
	l.subs[ch] = struct{}{}
	return all, ch
}

// Unsubscribe removes a subscription and closes its channel.
func (l *Log) Unsubscribe(ch chan domain.Message) {
	l.mu.Lock()
	if _, ok := l.subs[ch]; ok {
		delete(l.subs, ch)
		close(ch)
	}
	l.mu.Unlock()
}

// snapshot copies the retained records in order. Caller holds the lock.
func (l *Log) snapshot() []domain.Message {
	if !l.full && l.head == l.tail {
		return []domain.Message{}
	}

	if !l.full && l.head > l.tail {
		out := make([]domain.Message, l.head-l.tail)
		copy(out, l.buf[l.tail:l.head])
		return out
	}

	// Wrap-around: tail -> end, then start -> head.
	out := make([]domain.Message, 0, l.size)
	out = append(out, l.buf[l.tail:]...)
	out = append(out, l.buf[:l.head]...)
	return out
}
