package ui

import "sync/atomic"

// Scheduler coalesces redraw requests. Any number of RequestRedraw calls
// between two flushes result in a single repaint, which always runs later
// through post, never inside the requesting call.
type Scheduler struct {
	pending atomic.Bool
	post    func(func())
	repaint func()

	requests atomic.Uint64
	repaints atomic.Uint64
}

// NewScheduler returns a scheduler that hands flushes to post (for Fyne,
// fyne.Do) and calls repaint from there.
func NewScheduler(post func(func()), repaint func()) *Scheduler {
	return &Scheduler{post: post, repaint: repaint}
}

// RequestRedraw marks the frame stale. Safe to call from any goroutine.
func (s *Scheduler) RequestRedraw() {
	s.requests.Add(1)
	if s.pending.CompareAndSwap(false, true) {
		s.post(s.flush)
	}
}

// Pending reports whether a repaint has been requested but not yet run.
func (s *Scheduler) Pending() bool { return s.pending.Load() }

// Stats returns the number of redraw requests and repaints so far.
func (s *Scheduler) Stats() (requests, repaints uint64) {
	return s.requests.Load(), s.repaints.Load()
}

func (s *Scheduler) flush() {
	s.pending.Store(false)
	s.repaints.Add(1)
	if s.repaint != nil {
		s.repaint()
	}
}
