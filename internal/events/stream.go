package events

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/cratuity/internal/debuglog"
)

// DefaultBuffer is the channel capacity used when NewStream is given 0.
const DefaultBuffer = 64

// Stream is a multi-producer, single-consumer ordered channel of events.
// Publish blocks while the buffer is full; nothing is dropped or coalesced.
type Stream struct {
	ch        chan Event
	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewStream creates a stream with the given buffer size.
func NewStream(buffer int) *Stream {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Stream{
		ch:   make(chan Event, buffer),
		quit: make(chan struct{}),
	}
}

// Publish enqueues an event. It returns false if the stream was closed first.
func (s *Stream) Publish(ev Event) bool {
	select {
	case <-s.quit:
		return false
	default:
	}

	select {
	case s.ch <- ev:
		return true
	case <-s.quit:
		return false
	}
}

// Next waits up to timeout for the next event. ok is false on timeout or
// once the stream is closed.
func (s *Stream) Next(timeout time.Duration) (Event, bool) {
	select {
	case <-s.quit:
		return nil, false
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev := <-s.ch:
		return ev, true
	case <-timer.C:
		return nil, false
	case <-s.quit:
		return nil, false
	}
}

// StartTicker publishes a Tick every interval until the stream is closed.
func (s *Stream) StartTicker(interval time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case at := <-ticker.C:
				if !s.Publish(Tick{At: at}) {
					return
				}
			case <-s.quit:
				return
			}
		}
	}()
}

// Bridge forwards events to send, typically a tea.Program's Send, re-polling
// every pollTimeout until ctx is cancelled or the stream is closed.
func (s *Stream) Bridge(ctx context.Context, pollTimeout time.Duration, send func(tea.Msg)) {
	debuglog.Debugf("event bridge started (poll %s)", pollTimeout)
	defer debuglog.Debugf("event bridge stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		default:
		}

		ev, ok := s.Next(pollTimeout)
		if !ok {
			continue
		}
		send(ev)
	}
}

// Close stops the ticker and unblocks producers and the consumer. It is safe
// to call more than once.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
	s.wg.Wait()
}
