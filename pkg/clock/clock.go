package clock

import "time"

// Clock provides the current time. It is injected wherever year
// classification or snapshot timestamps depend on wall-clock time, so that
// boundary transitions (e.g. a year turning historical on January 1st) are
// deterministically testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns a Clock backed by the system wall clock in UTC.
func System() Clock { return systemClock{} }

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

// Fixed returns a Clock frozen at t.
func Fixed(t time.Time) Clock { return fixedClock{t: t} }
