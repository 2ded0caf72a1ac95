package console

import (
	"sync"
	"time"
)

// DebounceDelay is the quiet period after the last keystroke before a search
// is dispatched.
const DebounceDelay = 400 * time.Millisecond

// Searcher buffers keystrokes and dispatches at most one search per quiet
// period. Every dispatch carries a monotonically increasing sequence number;
// completions for anything but the latest sequence must be discarded, which
// closes the last-response-wins race between overlapping requests.
type Searcher struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	seq   uint64

	// dispatch runs outside the lock after the quiet period elapses.
	dispatch func(term string, seq uint64)
}

// NewSearcher creates a Searcher with the standard delay.
func NewSearcher(dispatch func(term string, seq uint64)) *Searcher {
	return &Searcher{delay: DebounceDelay, dispatch: dispatch}
}

// NewSearcherWithDelay creates a Searcher with a custom quiet period.
func NewSearcherWithDelay(delay time.Duration, dispatch func(term string, seq uint64)) *Searcher {
	return &Searcher{delay: delay, dispatch: dispatch}
}

// Input registers a keystroke: any pending dispatch is cancelled and a new
// one is scheduled after the quiet period.
func (s *Searcher) Input(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.fire(term)
	})
}

// Flush dispatches term immediately, cancelling any pending timer. Used for
// explicit reloads that bypass the quiet period.
func (s *Searcher) Flush(term string) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.fire(term)
}

// Cancel drops any pending dispatch and invalidates all in-flight sequence
// numbers. Called on view switch and logout.
func (s *Searcher) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
}

// Current reports whether seq is still the latest dispatched sequence. A
// completion handler must drop its result when this returns false.
func (s *Searcher) Current(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq == seq
}

func (s *Searcher) fire(term string) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.timer = nil
	s.mu.Unlock()
	s.dispatch(term, seq)
}
