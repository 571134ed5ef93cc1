// Package notify provides the application's single event channel.
//
// The channel is unbounded and multi-producer/single-consumer: popups,
// the chat transport reader and anything else holding a Sender can post
// without blocking, and the Bubble Tea loop drains events in send order
// through Next.
package notify

import (
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrClosed is returned by Send after the channel has been closed
var ErrClosed = errors.New("notification channel closed")

// Event is anything posted on the channel. It is delivered to the Bubble
// Tea loop as a tea.Msg.
type Event = tea.Msg

// Closed asks the owner of the popup with the given ID to dismiss it
type Closed struct {
	ID string
}

// Channel is an unbounded FIFO of events
type Channel struct {
	mu     sync.Mutex
	queue  []Event
	closed bool
	wake   chan struct{}
}

// New creates an empty open channel
func New() *Channel {
	return &Channel{
		wake: make(chan struct{}, 1),
	}
}

// Sender returns a write-only handle to the channel
func (c *Channel) Sender() Sender {
	return Sender{ch: c}
}

func (c *Channel) send(ev Event) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.queue = append(c.queue, ev)
	// wake is only closed under mu, so this cannot race with Close.
	select {
	case c.wake <- struct{}{}:
	default:
	}
	c.mu.Unlock()
	return nil
}

// TryRecv pops the oldest event without blocking
func (c *Channel) TryRecv() (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return nil, false
	}
	ev := c.queue[0]
	c.queue[0] = nil
	c.queue = c.queue[1:]
	return ev, true
}

// Recv blocks until an event is available. ok is false once the channel is
// closed and drained.
func (c *Channel) Recv() (Event, bool) {
	for {
		if ev, ok := c.TryRecv(); ok {
			return ev, true
		}

		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return nil, false
		}

		<-c.wake
	}
}

// Len returns the number of undelivered events
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Close stops further sends. Queued events can still be received.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.wake)
}

// Next returns a command that waits for the next event. The loop re-arms it
// after handling each event, so exactly one waiter is outstanding.
func (c *Channel) Next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := c.Recv()
		if !ok {
			return nil
		}
		return ev
	}
}

// Sender is a write-only handle. The zero value discards sends.
type Sender struct {
	ch *Channel
}

// Send posts ev without blocking
func (s Sender) Send(ev Event) error {
	if s.ch == nil {
		return ErrClosed
	}
	return s.ch.send(ev)
}
