package model

import (
	"fmt"
	"time"
)

// Interval is a half-open time range [Start, End): Start is inclusive
// and End is exclusive, so back-to-back intervals never overlap.  All
// timestamps are expected in UTC.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two half-open intervals intersect.  The
// predicate is s1 < e2 && s2 < e1; equality at the boundary is not an
// overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Contains reports whether t falls inside the interval.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Duration returns End minus Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Shift returns the interval moved forward by d, keeping its length.
func (iv Interval) Shift(d time.Duration) Interval {
	return Interval{Start: iv.Start.Add(d), End: iv.End.Add(d)}
}

// Validate rejects malformed intervals before any storage query runs.
// An interval is malformed when Start is not strictly before End.
func (iv Interval) Validate() error {
	if !iv.Start.Before(iv.End) {
		return fmt.Errorf("interval start %s must be before end %s",
			iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
	}
	return nil
}

// UTC normalizes both endpoints to UTC.
func (iv Interval) UTC() Interval {
	return Interval{Start: iv.Start.UTC(), End: iv.End.UTC()}
}
