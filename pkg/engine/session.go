package engine

import "sync/atomic"

// Session guards a logical query session (one search box, one table)
// against stale asynchronous results. The engine itself gives no ordering
// guarantee across dispatches: when criteria change while a dispatch is in
// flight, both the stale and the fresh result eventually resolve. Callers
// take a generation with Issue before dispatching and apply a result only
// if Current still holds for that generation.
type Session struct {
	gen atomic.Uint64
}

// Issue advances the session and returns the new generation.
func (s *Session) Issue() uint64 {
	return s.gen.Add(1)
}

// Current reports whether gen is still the latest issued generation.
func (s *Session) Current(gen uint64) bool {
	return s.gen.Load() == gen
}
