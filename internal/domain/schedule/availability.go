// Package schedule implements candidate meeting-slot generation and
// busy-interval intersection for the calendar scheduling engine.
package schedule

import "time"

// BusyRange is one half-open busy interval [Start, End).
type BusyRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [aStart, aEnd) intersects [bStart, bEnd) with
// non-zero length. Touching edges are not a conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Picked is the first bookable slot found by FirstAvailable.
type Picked struct {
	Start   time.Time
	End     time.Time
	Checked int
}

// FirstAvailable scans candidate starts in order and returns the first whose
// [start, start+duration) window overlaps no busy interval. Returns nil when
// every candidate conflicts.
func FirstAvailable(candidates []time.Time, duration time.Duration, busy []BusyRange) *Picked {
	checked := 0
	for _, start := range candidates {
		checked++
		if start.IsZero() {
			continue
		}
		end := start.Add(duration)

		conflicts := false
		for _, r := range busy {
			if Overlaps(start, end, r.Start, r.End) {
				conflicts = true
				break
			}
		}
		if !conflicts {
			return &Picked{Start: start, End: end, Checked: checked}
		}
	}
	return nil
}
