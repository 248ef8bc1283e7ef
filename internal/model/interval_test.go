package model

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2025, time.June, 10, hour, min, 0, 0, time.UTC)
}

func TestIntervalOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{
			name: "identical",
			a:    Interval{Start: at(10, 0), End: at(12, 0)},
			b:    Interval{Start: at(10, 0), End: at(12, 0)},
			want: true,
		},
		{
			name: "partial overlap",
			a:    Interval{Start: at(10, 0), End: at(12, 0)},
			b:    Interval{Start: at(11, 0), End: at(13, 0)},
			want: true,
		},
		{
			name: "containment",
			a:    Interval{Start: at(9, 0), End: at(14, 0)},
			b:    Interval{Start: at(10, 0), End: at(12, 0)},
			want: true,
		},
		{
			name: "back to back",
			a:    Interval{Start: at(10, 0), End: at(12, 0)},
			b:    Interval{Start: at(12, 0), End: at(13, 0)},
			want: false,
		},
		{
			name: "disjoint",
			a:    Interval{Start: at(8, 0), End: at(9, 0)},
			b:    Interval{Start: at(10, 0), End: at(12, 0)},
			want: false,
		},
		{
			name: "one minute shared",
			a:    Interval{Start: at(10, 0), End: at(12, 1)},
			b:    Interval{Start: at(12, 0), End: at(13, 0)},
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Errorf("a.Overlaps(b) = %v, want %v", got, tc.want)
			}
			// Overlap is symmetric.
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Errorf("b.Overlaps(a) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIntervalContains(t *testing.T) {
	iv := Interval{Start: at(10, 0), End: at(12, 0)}
	if !iv.Contains(at(10, 0)) {
		t.Error("start is inclusive")
	}
	if !iv.Contains(at(11, 30)) {
		t.Error("interior point not contained")
	}
	if iv.Contains(at(12, 0)) {
		t.Error("end is exclusive")
	}
	if iv.Contains(at(9, 59)) {
		t.Error("point before start contained")
	}
}

func TestIntervalValidate(t *testing.T) {
	ok := Interval{Start: at(10, 0), End: at(12, 0)}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid interval rejected: %v", err)
	}

	zero := Interval{Start: at(10, 0), End: at(10, 0)}
	if err := zero.Validate(); err == nil {
		t.Error("zero-length interval accepted")
	}

	inverted := Interval{Start: at(12, 0), End: at(10, 0)}
	if err := inverted.Validate(); err == nil {
		t.Error("inverted interval accepted")
	}
}

func TestIntervalShift(t *testing.T) {
	iv := Interval{Start: at(10, 0), End: at(12, 0)}
	got := iv.Shift(90 * time.Minute)
	if want := at(11, 30); !got.Start.Equal(want) {
		t.Errorf("shifted start = %v, want %v", got.Start, want)
	}
	if got.Duration() != iv.Duration() {
		t.Errorf("shift changed duration: %v vs %v", got.Duration(), iv.Duration())
	}
}
