package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func busyAt(start, end time.Time) BusyInterval {
	return BusyInterval{Participant: "alice", Start: start, End: end}
}

func TestHasConflict_HalfOpenSemantics(t *testing.T) {
	busy := []BusyInterval{busyAt(day(10, 0), day(11, 0))}

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		conflict bool
	}{
		{"fully inside", day(10, 15), day(10, 45), true},
		{"straddles start", day(9, 30), day(10, 30), true},
		{"straddles end", day(10, 30), day(11, 30), true},
		{"covers entirely", day(9, 0), day(12, 0), true},
		{"ends exactly at busy start", day(9, 0), day(10, 0), false},
		{"starts exactly at busy end", day(11, 0), day(12, 0), false},
		{"fully before", day(8, 0), day(9, 0), false},
		{"fully after", day(12, 0), day(13, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.conflict, HasConflict(tt.start, tt.end, busy))
		})
	}
}

func TestHasConflict_ShortCircuitsOnSortedInput(t *testing.T) {
	// An interval starting at the proposed end must stop the scan without
	// a false positive from later intervals.
	busy := []BusyInterval{
		busyAt(day(12, 0), day(13, 0)),
		busyAt(day(14, 0), day(15, 0)),
	}
	assert.False(t, HasConflict(day(9, 0), day(10, 0), busy))
	assert.False(t, HasConflict(day(11, 0), day(12, 0), busy))
}

func TestHasConflict_ZeroDurationMarker(t *testing.T) {
	marker := []BusyInterval{busyAt(day(10, 0), day(10, 0))}

	// A zero-duration marker is never "free": any proposal containing its
	// instant conflicts with it.
	assert.True(t, HasConflict(day(9, 30), day(10, 30), marker))
	assert.True(t, HasConflict(day(10, 0), day(11, 0), marker))
	assert.False(t, HasConflict(day(9, 0), day(10, 0), marker))
	assert.False(t, HasConflict(day(10, 30), day(11, 0), marker))
}

func TestListConflicts_OrderedAndComplete(t *testing.T) {
	busy := []BusyInterval{
		busyAt(day(9, 0), day(9, 30)),
		busyAt(day(10, 0), day(10, 30)),
		busyAt(day(11, 0), day(11, 30)),
		busyAt(day(13, 0), day(14, 0)),
	}

	conflicts := ListConflicts(day(10, 15), day(11, 15), busy)
	require.Len(t, conflicts, 2)
	assert.True(t, conflicts[0].Start.Equal(day(10, 0)))
	assert.True(t, conflicts[1].Start.Equal(day(11, 0)))
}

func TestListConflicts_NoneOnFreeInterval(t *testing.T) {
	busy := []BusyInterval{busyAt(day(9, 0), day(10, 0))}
	assert.Empty(t, ListConflicts(day(10, 0), day(11, 0), busy))
}

func TestConflictSymmetry(t *testing.T) {
	// hasConflict(a, b, [x]) agrees with hasConflict(x.start, x.end, [{a,b}])
	// for every boundary arrangement.
	pairs := []struct {
		aStart, aEnd time.Time
		xStart, xEnd time.Time
	}{
		{day(9, 0), day(10, 0), day(10, 0), day(11, 0)},
		{day(9, 0), day(10, 30), day(10, 0), day(11, 0)},
		{day(9, 0), day(12, 0), day(10, 0), day(11, 0)},
		{day(11, 0), day(12, 0), day(10, 0), day(11, 0)},
	}

	for _, p := range pairs {
		forward := HasConflict(p.aStart, p.aEnd, []BusyInterval{busyAt(p.xStart, p.xEnd)})
		backward := HasConflict(p.xStart, p.xEnd, []BusyInterval{busyAt(p.aStart, p.aEnd)})
		assert.Equal(t, forward, backward)
	}
}
