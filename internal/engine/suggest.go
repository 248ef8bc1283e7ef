package engine

import (
	"sort"

	"github.com/venuecore/booking-engine/internal/model"
)

// suggestAlternatives proposes up to cfg.SuggestionLimit free intervals
// of the same duration as the requested one when it cannot be
// allocated.  The output is deterministic for a given request, conflict
// set and clock reading:
//
//  1. the first slot after the conflicting block: the anchor is the
//     later of the requested end and the end of the last conflict that
//     overlaps the request;
//  2. an earlier window before the first overlapping conflict, kept a
//     fixed buffer away from it, provided it is still in the future and
//     collides with nothing known;
//  3. the anchor shifted forward in fixed increments until the limit is
//     reached, skipping shifts that collide with a known conflict.
func (e *Engine) suggestAlternatives(requested model.Interval, conflicts []model.Interval) []model.Interval {
	limit := e.cfg.SuggestionLimit
	if limit <= 0 || len(conflicts) == 0 {
		return nil
	}
	dur := requested.Duration()

	sorted := make([]model.Interval, len(conflicts))
	copy(sorted, conflicts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	// Locate the conflicts that actually overlap the request; callers
	// may pass a wider set.
	var overlapping []model.Interval
	for _, c := range sorted {
		if c.Overlaps(requested) {
			overlapping = append(overlapping, c)
		}
	}
	if len(overlapping) == 0 {
		return nil
	}

	anchor := requested.End
	if last := overlapping[len(overlapping)-1].End; last.After(anchor) {
		anchor = last
	}

	candidates := make([]model.Interval, 0, limit)
	first := model.Interval{Start: anchor, End: anchor.Add(dur)}
	if !collides(first, sorted) {
		candidates = append(candidates, first)
	}

	// An earlier slot is worth offering when it ends a buffer before
	// the first overlapping conflict and has not already begun.
	earlierEnd := overlapping[0].Start.Add(-e.cfg.SuggestionGap)
	earlier := model.Interval{Start: earlierEnd.Add(-dur), End: earlierEnd}
	if len(candidates) < limit &&
		earlier.Start.After(e.now()) &&
		!collides(earlier, sorted) {
		candidates = append(candidates, earlier)
	}

	shifted := first
	for len(candidates) < limit {
		shifted = shifted.Shift(e.cfg.SuggestionStep)
		if collides(shifted, sorted) {
			continue
		}
		candidates = append(candidates, shifted)
	}
	return candidates
}

// collides reports whether iv overlaps any interval in set.
func collides(iv model.Interval, set []model.Interval) bool {
	for _, c := range set {
		if iv.Overlaps(c) {
			return true
		}
	}
	return false
}
