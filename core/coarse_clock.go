package core

import (
	"sync"
	"sync/atomic"
	"time"
)

// CoarseResolution is how often the coarse clock refreshes.
const CoarseResolution = 500 * time.Microsecond

var (
	coarseOnce sync.Once
	coarseNow  atomic.Pointer[time.Time]
)

// StartCoarseClock starts the goroutine that refreshes CoarseNow. It is
// safe to call repeatedly; the goroutine lives for the whole process.
func StartCoarseClock() {
	coarseOnce.Do(func() {
		t := time.Now()
		coarseNow.Store(&t)
		go func() {
			ticker := time.NewTicker(CoarseResolution)
			for range ticker.C {
				t := time.Now()
				coarseNow.Store(&t)
			}
		}()
	})
}

// CoarseNow returns the cached time, or time.Now when the coarse clock
// was never started.
func CoarseNow() time.Time {
	if t := coarseNow.Load(); t != nil {
		return *t
	}
	return time.Now()
}
