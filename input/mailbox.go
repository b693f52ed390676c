package input

import (
	"context"
	"errors"
	"sync"
)

var ErrMailboxClosed = errors.New("mailbox closed")

// Mailbox hands events from the reader to the single worker goroutine.
//
// It keeps at most one unprocessed point after the last marker: a newer
// point overwrites it and the loss is counted. Markers are queued in full
// and keep their position relative to points.
type Mailbox struct {
	mu      sync.Mutex
	queue   []Event
	dropped uint64
	closed  bool
	notify  chan struct{}
}

func NewMailbox() *Mailbox {
	return &Mailbox{notify: make(chan struct{}, 1)}
}

// Post queues ev. It never blocks and returns false once the mailbox is
// closed.
func (m *Mailbox) Post(ev Event) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}

	n := len(m.queue)
	if !ev.Marker() && n > 0 && !m.queue[n-1].Marker() {
		m.queue[n-1] = ev
		m.dropped++
	} else {
		m.queue = append(m.queue, ev)
	}
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return true
}

// TryNext pops the oldest event without waiting.
func (m *Mailbox) TryNext() (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return Event{}, false
	}
	ev := m.queue[0]
	m.queue[0] = Event{}
	m.queue = m.queue[1:]
	if len(m.queue) == 0 {
		m.queue = m.queue[:0:0]
	}
	return ev, true
}

// Next waits for the oldest event. Events queued before Close are still
// delivered; afterwards Next returns ErrMailboxClosed.
func (m *Mailbox) Next(ctx context.Context) (Event, error) {
	for {
		if ev, ok := m.TryNext(); ok {
			return ev, nil
		}

		m.mu.Lock()
		closed := m.closed
		m.mu.Unlock()
		if closed {
			return Event{}, ErrMailboxClosed
		}

		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case <-m.notify:
		}
	}
}

// Close stops accepting events and wakes a waiting worker.
func (m *Mailbox) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Dropped returns how many points were overwritten before the worker saw
// them.
func (m *Mailbox) Dropped() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
