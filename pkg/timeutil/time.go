package timeutil

import "time"

// Clock returns the current instant. Inject a fixed clock in tests.
type Clock func() time.Time

// SystemClock reads the wall clock in the process's local time zone
func SystemClock() time.Time {
	return time.Now()
}

// ClockIn returns a system clock that reports time in loc
func ClockIn(loc *time.Location) Clock {
	if loc == nil {
		return SystemClock
	}
	return func() time.Time {
		return time.Now().In(loc)
	}
}

// FixedClock returns a clock that always reports t
func FixedClock(t time.Time) Clock {
	return func() time.Time {
		return t
	}
}

// LoadLocation resolves a time zone name. "" and "Local" map to the process time zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}
