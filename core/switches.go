package core

import "sync/atomic"

// Switches holds the process-wide silence flags. They compose with each
// logger's and handler's own silenced flag by logical OR.
type Switches struct {
	all     atomic.Bool
	console atomic.Bool
}

// Silence silences every logger and handler when all is true, and only
// console handlers otherwise.
func (s *Switches) Silence(all bool) {
	if all {
		s.all.Store(true)
		return
	}
	s.console.Store(true)
}

// Unsilence clears both flags.
func (s *Switches) Unsilence() {
	s.all.Store(false)
	s.console.Store(false)
}

// All reports whether everything is silenced. A nil receiver is never
// silenced.
func (s *Switches) All() bool {
	return s != nil && s.all.Load()
}

// Console reports whether console output is silenced, either directly or
// through All.
func (s *Switches) Console() bool {
	return s != nil && (s.console.Load() || s.all.Load())
}
