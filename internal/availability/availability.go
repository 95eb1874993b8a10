// Package availability turns a working-hours template and a set of busy
// intervals into bookable slot start times.
package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yoockh/mentorloop/internal/interval"
)

const (
	DefaultHorizonDays = 7
	DefaultSlotLength  = time.Hour
	DefaultMaxResults  = 6
)

// WorkingHours is a daily window expressed as offsets from local midnight.
type WorkingHours struct {
	Start time.Duration `bson:"start" json:"start"`
	End   time.Duration `bson:"end" json:"end"`
}

// DefaultWorkingHours is 08:00-17:00.
var DefaultWorkingHours = WorkingHours{Start: 8 * time.Hour, End: 17 * time.Hour}

// ParseWorkingHours parses "HH:MM" bounds, ex: ParseWorkingHours("08:00", "17:00").
func ParseWorkingHours(start, end string) (WorkingHours, error) {
	s, err := parseClock(start)
	if err != nil {
		return WorkingHours{}, err
	}
	e, err := parseClock(end)
	if err != nil {
		return WorkingHours{}, err
	}
	wh := WorkingHours{Start: s, End: e}
	if err := wh.Validate(); err != nil {
		return WorkingHours{}, err
	}
	return wh, nil
}

func parseClock(v string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q: want HH:MM", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour in %q", v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid minute in %q", v)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

func (w WorkingHours) Validate() error {
	if w.Start < 0 || w.End > 24*time.Hour || w.Start >= w.End {
		return fmt.Errorf("invalid working hours %s-%s", w.Start, w.End)
	}
	return nil
}

// Bound returns the working window on the calendar day of d, in d's location.
func (w WorkingHours) Bound(d time.Time) interval.Interval {
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	return interval.New(midnight.Add(w.Start), midnight.Add(w.End))
}

// Fits reports whether [start, start+length) lies inside the working window
// of start's calendar day.
func (w WorkingHours) Fits(start time.Time, length time.Duration) bool {
	return w.Bound(start).Contains(interval.New(start, start.Add(length)))
}

type Options struct {
	HorizonDays int
	SlotLength  time.Duration
	MaxResults  int
}

func (o Options) withDefaults() Options {
	if o.HorizonDays <= 0 {
		o.HorizonDays = DefaultHorizonDays
	}
	if o.SlotLength <= 0 {
		o.SlotLength = DefaultSlotLength
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	return o
}

// DayBounds returns the bookable window of each day in the horizon, starting
// with the day of now. Today's lower bound is rounded up to the next
// slot-aligned wall-clock time; days with no room left are skipped.
func DayBounds(wh WorkingHours, now time.Time, opts Options) []interval.Interval {
	opts = opts.withDefaults()

	out := make([]interval.Interval, 0, opts.HorizonDays)
	for i := 0; i < opts.HorizonDays; i++ {
		d := time.Date(now.Year(), now.Month(), now.Day()+i, 0, 0, 0, 0, now.Location())
		b := wh.Bound(d)
		if i == 0 {
			if aligned := alignUp(now, opts.SlotLength); aligned.After(b.Start) {
				b.Start = aligned
			}
			if !b.Start.Before(b.End) {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

// alignUp rounds t up to the next multiple of step counted from t's local
// midnight. time.Truncate would align against UTC, which is wrong for zones
// with a non-hour offset.
func alignUp(t time.Time, step time.Duration) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	elapsed := t.Sub(midnight)
	n := elapsed / step
	if elapsed%step != 0 {
		n++
	}
	return midnight.Add(n * step)
}

// FreeSlots returns up to opts.MaxResults slot start times across the
// horizon, chronologically. A slot is emitted only when the whole
// [start, start+SlotLength) range is free.
func FreeSlots(wh WorkingHours, busy []interval.Interval, now time.Time, opts Options) []time.Time {
	opts = opts.withDefaults()

	var slots []time.Time
	for _, bound := range DayBounds(wh, now, opts) {
		for _, free := range interval.Complement(bound, busy) {
			for s := free.Start; !s.Add(opts.SlotLength).After(free.End); s = s.Add(opts.SlotLength) {
				slots = append(slots, s)
				if len(slots) == opts.MaxResults {
					return slots
				}
			}
		}
	}
	return slots
}
