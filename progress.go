package knngraph

import (
	"time"

	"golang.org/x/time/rate"
)

// ProgressFunc receives the identity of the node a builder just finished and
// the cumulative number of similarity evaluations of the current build.
//
// Concurrent builders call it from several goroutines, one call at a time,
// with non-decreasing evaluation counts.
type ProgressFunc func(id NodeID, evaluations int64)

// ThrottleProgress forwards the first event and afterwards at most one event
// per interval to fn. Dropped events are not replayed. A non-positive
// interval returns fn unchanged.
func ThrottleProgress(fn ProgressFunc, interval time.Duration) ProgressFunc {
	if fn == nil || interval <= 0 {
		return fn
	}
	s := &rate.Sometimes{First: 1, Interval: interval}
	return func(id NodeID, evaluations int64) {
		s.Do(func() { fn(id, evaluations) })
	}
}

// LogProgress returns a progress sink that logs at info level through l, at
// most once per interval.
func LogProgress(l *Logger, interval time.Duration) ProgressFunc {
	if l == nil {
		l = NoopLogger()
	}
	return ThrottleProgress(l.LogProgress, interval)
}
