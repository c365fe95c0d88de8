package instruments

import "time"

// Stopwatch is a free-running elapsed-time counter. While active it holds an
// anchor instant; the accumulated time is recomputed from the anchor on every
// update, so missed updates cannot drift.
type Stopwatch struct {
	elapsed time.Duration
	anchor  *time.Time
}

// IsActive reports whether the stopwatch is counting.
func (s *Stopwatch) IsActive() bool {
	return s.anchor != nil
}

// Elapsed returns the accumulated time as of the last update.
func (s *Stopwatch) Elapsed() time.Duration {
	return s.elapsed
}

// StartPause freezes a running stopwatch or resumes a paused one. Resuming
// re-anchors so the elapsed time continues seamlessly.
func (s *Stopwatch) StartPause(now time.Time) {
	if s.anchor != nil {
		s.elapsed = now.Sub(*s.anchor)
		s.anchor = nil
		return
	}
	anchor := now.Add(-s.elapsed)
	s.anchor = &anchor
}

// Reset zeroes the elapsed time. A running stopwatch keeps running from zero.
func (s *Stopwatch) Reset(now time.Time) {
	s.elapsed = 0
	if s.anchor != nil {
		anchor := now
		s.anchor = &anchor
	}
}

// Toggle is the single-control behavior: start when fresh, reset-and-run
// when paused with elapsed time, pause when running.
func (s *Stopwatch) Toggle(now time.Time) {
	if !s.IsActive() && s.elapsed > 0 {
		s.Reset(now)
		s.StartPause(now)
		return
	}
	s.StartPause(now)
}

// Update recomputes the elapsed time while active.
func (s *Stopwatch) Update(now time.Time) {
	if s.anchor != nil {
		s.elapsed = now.Sub(*s.anchor)
	}
}
