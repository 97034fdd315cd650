package repository

import "time"

// QueryObserver receives per-query timings from the repositories. The
// metrics service implements it; a nil observer disables instrumentation.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

type queryTimer struct {
	observer QueryObserver
}

// observe reports the elapsed time since start under the given label.
// Meant to be deferred at the top of a query method.
func (t queryTimer) observe(label string, start time.Time) {
	if t.observer == nil {
		return
	}
	t.observer.ObserveDBQuery(label, time.Since(start))
}
