package bridge

import (
	"sync/atomic"

	"artnet2magichome/internal/mapping"
)

// Mailbox is a bounded frame queue that never blocks the sender: when it
// is full the oldest frame is thrown away to make room for the newest.
// It expects a single sender.
type Mailbox struct {
	ch       chan mapping.Frame
	received uint64
	dropped  uint64
}

// NewMailbox конструктор.
func NewMailbox(depth int) *Mailbox {
	if depth < 1 {
		depth = 1
	}
	return &Mailbox{ch: make(chan mapping.Frame, depth)}
}

// Push queues f and reports whether an older frame was discarded.
func (m *Mailbox) Push(f mapping.Frame) bool {
	atomic.AddUint64(&m.received, 1)
	dropped := false
	for {
		select {
		case m.ch <- f:
			return dropped
		default:
		}
		select {
		case <-m.ch:
			atomic.AddUint64(&m.dropped, 1)
			dropped = true
		default:
		}
	}
}

// Frames is the receive side for the worker.
func (m *Mailbox) Frames() <-chan mapping.Frame {
	return m.ch
}

// Received returns the number of frames pushed.
func (m *Mailbox) Received() uint64 {
	return atomic.LoadUint64(&m.received)
}

// Dropped returns the number of frames replaced before processing.
func (m *Mailbox) Dropped() uint64 {
	return atomic.LoadUint64(&m.dropped)
}
