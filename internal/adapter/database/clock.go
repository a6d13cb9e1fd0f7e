package database

import "time"

// Precision is the resolution every store keeps timestamps at.
const Precision = time.Microsecond

// Clock returns the current time. Stores take one so tests can pin it.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now()
}

// Normalize converts t to UTC at store precision.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(Precision)
}

// NormalizeUp converts t to UTC at store precision, rounding up any
// remainder. Used for lower range bounds so nothing earlier than t matches.
func NormalizeUp(t time.Time) time.Time {
	truncated := Normalize(t)

	if truncated.Before(t) {
		return truncated.Add(Precision)
	}

	return truncated
}

// NextUpdate returns the updated_at value for a write that happens at now on
// a row last written at previous. The result is always after previous.
func NextUpdate(previous, now time.Time) time.Time {
	now = Normalize(now)

	if !now.After(previous) {
		return Normalize(previous).Add(Precision)
	}

	return now
}
