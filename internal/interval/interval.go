// Package interval implements half-open time ranges and the merge and
// complement operations used for free/busy computation.
package interval

import (
	"sort"
	"time"
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func New(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Valid reports whether Start is strictly before End.
func (i Interval) Valid() bool { return i.Start.Before(i.End) }

func (i Interval) Duration() time.Duration { return i.End.Sub(i.Start) }

// Overlaps reports whether the two intervals share any instant.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Contains reports whether o lies entirely inside i.
func (i Interval) Contains(o Interval) bool {
	return !o.Start.Before(i.Start) && !o.End.After(i.End)
}

// Clip returns the part of i inside bounds. ok is false when nothing remains.
func (i Interval) Clip(bounds Interval) (Interval, bool) {
	out := i
	if out.Start.Before(bounds.Start) {
		out.Start = bounds.Start
	}
	if out.End.After(bounds.End) {
		out.End = bounds.End
	}
	return out, out.Valid()
}

// Merge sorts intervals by start and coalesces overlapping or adjacent ones.
// The input slice is not modified.
func Merge(in []Interval) []Interval {
	if len(in) == 0 {
		return nil
	}

	sorted := make([]Interval, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Start.Equal(sorted[b].Start) {
			return sorted[a].End.Before(sorted[b].End)
		}
		return sorted[a].Start.Before(sorted[b].Start)
	})

	out := []Interval{sorted[0]}
	for _, cur := range sorted[1:] {
		last := &out[len(out)-1]
		if !cur.Start.After(last.End) {
			if cur.End.After(last.End) {
				last.End = cur.End
			}
			continue
		}
		out = append(out, cur)
	}
	return out
}

// Complement returns the sub-intervals of bounds not covered by busy, in
// ascending order. Busy intervals are clipped to bounds first.
func Complement(bounds Interval, busy []Interval) []Interval {
	if !bounds.Valid() {
		return nil
	}

	clipped := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if c, ok := b.Clip(bounds); ok {
			clipped = append(clipped, c)
		}
	}

	var free []Interval
	cursor := bounds.Start
	for _, b := range Merge(clipped) {
		if b.Start.After(cursor) {
			free = append(free, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(bounds.End) {
		free = append(free, Interval{Start: cursor, End: bounds.End})
	}
	return free
}
