package vision

import (
	"sync"
	"time"
)

// DefaultTickInterval is one display refresh at 60 Hz.
const DefaultTickInterval = time.Second / 60

// Scheduler runs a callback once, later. The returned function cancels the
// callback if it has not started yet.
type Scheduler interface {
	Schedule(fn func()) (cancel func())
}

type frameCallback struct {
	fn        func()
	cancelled bool
}

// FrameScheduler queues callbacks until the host's refresh loop calls Pump,
// once per displayed frame.
type FrameScheduler struct {
	mu    sync.Mutex
	queue []*frameCallback
}

// NewFrameScheduler creates an empty frame scheduler.
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{}
}

// Schedule queues fn for the next Pump.
func (s *FrameScheduler) Schedule(fn func()) func() {
	cb := &frameCallback{fn: fn}
	s.mu.Lock()
	s.queue = append(s.queue, cb)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		cb.cancelled = true
		s.mu.Unlock()
	}
}

// Pump runs every callback queued before the call and returns how many ran.
// Callbacks scheduled while pumping wait for the next Pump.
func (s *FrameScheduler) Pump() int {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	ran := 0
	for _, cb := range queue {
		s.mu.Lock()
		cancelled := cb.cancelled
		s.mu.Unlock()
		if cancelled {
			continue
		}
		cb.fn()
		ran++
	}
	return ran
}

// Pending returns the number of live callbacks waiting for Pump.
func (s *FrameScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, cb := range s.queue {
		if !cb.cancelled {
			n++
		}
	}
	return n
}

// TickerScheduler runs callbacks on a timer, for hosts without a display loop.
type TickerScheduler struct {
	interval time.Duration
}

// NewTickerScheduler creates a scheduler firing after interval. A
// non-positive interval selects DefaultTickInterval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &TickerScheduler{interval: interval}
}

// Schedule runs fn on its own goroutine after the interval.
func (s *TickerScheduler) Schedule(fn func()) func() {
	t := time.AfterFunc(s.interval, fn)
	return func() { t.Stop() }
}
