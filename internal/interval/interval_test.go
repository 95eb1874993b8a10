package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func iv(h1, m1, h2, m2 int) Interval {
	return New(at(h1, m1), at(h2, m2))
}

func TestMerge_Empty(t *testing.T) {
	assert.Nil(t, Merge(nil))
}

func TestMerge_CoalescesOverlappingAndAdjacent(t *testing.T) {
	in := []Interval{
		iv(13, 0, 14, 0),
		iv(9, 0, 10, 0),
		iv(9, 30, 11, 0),
		iv(11, 0, 11, 30), // adjacent
		iv(15, 0, 16, 0),
	}

	got := Merge(in)

	assert.Equal(t, []Interval{
		iv(9, 0, 11, 30),
		iv(13, 0, 14, 0),
		iv(15, 0, 16, 0),
	}, got)
}

func TestMerge_NestedInterval(t *testing.T) {
	got := Merge([]Interval{iv(8, 0, 12, 0), iv(9, 0, 10, 0)})
	assert.Equal(t, []Interval{iv(8, 0, 12, 0)}, got)
}

func TestMerge_StableUnderReordering(t *testing.T) {
	a := []Interval{iv(9, 0, 10, 0), iv(12, 0, 13, 0), iv(9, 45, 11, 0), iv(16, 0, 17, 0)}
	b := []Interval{a[3], a[1], a[2], a[0]}

	assert.Equal(t, Merge(a), Merge(b))
}

func TestMerge_DoesNotModifyInput(t *testing.T) {
	in := []Interval{iv(12, 0, 13, 0), iv(9, 0, 10, 0)}
	_ = Merge(in)
	assert.Equal(t, iv(12, 0, 13, 0), in[0])
}

func TestComplement_NoBusy(t *testing.T) {
	bounds := iv(8, 0, 17, 0)
	assert.Equal(t, []Interval{bounds}, Complement(bounds, nil))
}

func TestComplement_MiddleBusy(t *testing.T) {
	got := Complement(iv(8, 0, 17, 0), []Interval{iv(10, 0, 12, 0)})
	assert.Equal(t, []Interval{iv(8, 0, 10, 0), iv(12, 0, 17, 0)}, got)
}

func TestComplement_FullyCovered(t *testing.T) {
	got := Complement(iv(8, 0, 17, 0), []Interval{iv(7, 0, 12, 0), iv(11, 0, 18, 0)})
	assert.Empty(t, got)
}

func TestComplement_ClipsBusyOutsideBounds(t *testing.T) {
	busy := []Interval{
		iv(6, 0, 9, 0),    // overlaps lower bound
		iv(16, 30, 20, 0), // overlaps upper bound
		iv(20, 0, 21, 0),  // entirely outside
	}
	got := Complement(iv(8, 0, 17, 0), busy)
	assert.Equal(t, []Interval{iv(9, 0, 16, 30)}, got)
}

func TestComplement_UnsortedOverlappingBusy(t *testing.T) {
	busy := []Interval{iv(14, 0, 15, 0), iv(9, 0, 10, 0), iv(9, 30, 10, 30)}
	got := Complement(iv(8, 0, 17, 0), busy)
	assert.Equal(t, []Interval{
		iv(8, 0, 9, 0),
		iv(10, 30, 14, 0),
		iv(15, 0, 17, 0),
	}, got)
}

func TestComplement_InvalidBounds(t *testing.T) {
	assert.Nil(t, Complement(iv(17, 0, 8, 0), nil))
}

func TestComplement_CoversFreeExactly(t *testing.T) {
	bounds := iv(8, 0, 17, 0)
	busy := []Interval{iv(8, 0, 9, 15), iv(11, 0, 11, 45), iv(16, 0, 17, 0)}

	free := Complement(bounds, busy)
	require.NotEmpty(t, free)

	var total time.Duration
	for _, f := range free {
		total += f.Duration()
		for _, b := range busy {
			assert.False(t, f.Overlaps(b), "free %v overlaps busy %v", f, b)
		}
	}
	var busyTotal time.Duration
	for _, b := range Merge(busy) {
		busyTotal += b.Duration()
	}
	assert.Equal(t, bounds.Duration(), total+busyTotal)
}

func TestInterval_Predicates(t *testing.T) {
	a := iv(9, 0, 10, 0)

	assert.True(t, a.Valid())
	assert.False(t, iv(10, 0, 10, 0).Valid())
	assert.True(t, a.Overlaps(iv(9, 30, 11, 0)))
	assert.False(t, a.Overlaps(iv(10, 0, 11, 0)), "half-open intervals touching at an edge do not overlap")
	assert.True(t, iv(8, 0, 17, 0).Contains(a))
	assert.False(t, a.Contains(iv(8, 0, 17, 0)))

	_, ok := a.Clip(iv(11, 0, 12, 0))
	assert.False(t, ok)
}
