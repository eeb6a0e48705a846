package clock

import "time"

// Clock abstracts time.Now so TTL-based sweeps can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns a Clock backed by the wall clock (UTC).
func System() Clock {
	return systemClock{}
}

// Fixed is a Clock pinned to a settable instant, for tests.
type Fixed struct {
	Current time.Time
}

func (f *Fixed) Now() time.Time {
	return f.Current
}

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.Current = f.Current.Add(d)
}
