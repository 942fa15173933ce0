package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(hour, min int) time.Time {
	return time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC)
}

func event(account string, start, end time.Time) CalendarEvent {
	return CalendarEvent{
		ID:        account + start.Format("15:04"),
		Provider:  "test",
		AccountID: account,
		Start:     start,
		End:       end,
	}
}

func TestAggregate_Empty(t *testing.T) {
	assert.Nil(t, Aggregate("alice", nil))
	assert.Nil(t, Aggregate("alice", map[string][]CalendarEvent{"work": nil}))
}

func TestAggregate_OverlappingAcrossAccountsMerge(t *testing.T) {
	// The same physical meeting showing up in two connected accounts.
	events := map[string][]CalendarEvent{
		"work":     {event("work", day(9, 0), day(10, 0))},
		"personal": {event("personal", day(9, 30), day(10, 30))},
	}

	busy := Aggregate("alice", events)
	require.Len(t, busy, 1)
	assert.Equal(t, "alice", busy[0].Participant)
	assert.True(t, busy[0].Start.Equal(day(9, 0)))
	assert.True(t, busy[0].End.Equal(day(10, 30)))
}

func TestAggregate_TouchingIntervalsStayDistinct(t *testing.T) {
	// Back-to-back meetings remain separate busy blocks: closed-open
	// semantics, one's end equaling the next's start does not merge.
	events := map[string][]CalendarEvent{
		"work":     {event("work", day(9, 0), day(10, 0))},
		"personal": {event("personal", day(10, 0), day(11, 0))},
	}

	busy := Aggregate("alice", events)
	require.Len(t, busy, 2)
	assert.True(t, busy[0].End.Equal(day(10, 0)))
	assert.True(t, busy[1].Start.Equal(day(10, 0)))
}

func TestAggregate_ContainedEventAbsorbed(t *testing.T) {
	events := map[string][]CalendarEvent{
		"work": {
			event("work", day(9, 0), day(12, 0)),
			event("work", day(10, 0), day(11, 0)),
		},
	}

	busy := Aggregate("alice", events)
	require.Len(t, busy, 1)
	assert.True(t, busy[0].Start.Equal(day(9, 0)))
	assert.True(t, busy[0].End.Equal(day(12, 0)))
}

func TestAggregate_Idempotent(t *testing.T) {
	// Aggregating duplicate accounts yields the same intervals as
	// aggregating once.
	once := map[string][]CalendarEvent{
		"work": {
			event("work", day(9, 0), day(10, 0)),
			event("work", day(9, 45), day(11, 0)),
			event("work", day(14, 0), day(15, 0)),
		},
	}
	twice := map[string][]CalendarEvent{
		"work":      once["work"],
		"work-copy": once["work"],
	}

	a := Aggregate("alice", once)
	b := Aggregate("alice", twice)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.True(t, a[i].Start.Equal(b[i].Start))
		assert.True(t, a[i].End.Equal(b[i].End))
	}
}

func TestAggregate_ZeroDurationDuplicatesCollapse(t *testing.T) {
	// A zero-duration marker mirrored in two connected accounts is still
	// one busy instant, not two.
	once := map[string][]CalendarEvent{
		"work": {event("work", day(10, 0), day(10, 0))},
	}
	twice := map[string][]CalendarEvent{
		"work":      once["work"],
		"work-copy": once["work"],
	}

	a := Aggregate("alice", once)
	b := Aggregate("alice", twice)
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.True(t, b[0].Start.Equal(day(10, 0)))
	assert.True(t, b[0].End.Equal(day(10, 0)))
}

func TestAggregate_ZeroDurationMarkerAbsorbedByCoveringEvent(t *testing.T) {
	events := map[string][]CalendarEvent{
		"work": {
			// Marker at the start of a meeting that covers its instant.
			event("work", day(9, 0), day(9, 0)),
			event("work", day(9, 0), day(10, 0)),
			// Marker strictly inside a meeting.
			event("work", day(9, 30), day(9, 30)),
			// Marker at a meeting's end is not covered by it (half-open)
			// and stays a distinct busy instant.
			event("work", day(10, 0), day(10, 0)),
		},
	}

	busy := Aggregate("alice", events)
	require.Len(t, busy, 2)
	assert.True(t, busy[0].Start.Equal(day(9, 0)))
	assert.True(t, busy[0].End.Equal(day(10, 0)))
	assert.True(t, busy[1].Start.Equal(day(10, 0)))
	assert.True(t, busy[1].End.Equal(day(10, 0)))
}

func TestAggregate_NonOverlapInvariant(t *testing.T) {
	events := map[string][]CalendarEvent{
		"a": {
			event("a", day(9, 0), day(9, 30)),
			event("a", day(9, 15), day(10, 0)),
			event("a", day(13, 0), day(14, 0)),
		},
		"b": {
			event("b", day(9, 45), day(11, 0)),
			event("b", day(13, 30), day(13, 45)),
		},
	}

	busy := Aggregate("alice", events)
	for i := 1; i < len(busy); i++ {
		assert.False(t, busy[i].Start.Before(busy[i-1].End),
			"interval %d overlaps or precedes interval %d", i, i-1)
	}
}

func TestAggregate_DeterministicTieBreak(t *testing.T) {
	// Identical spans on two accounts: output must not depend on map
	// iteration order.
	events := map[string][]CalendarEvent{
		"zeta":  {event("zeta", day(9, 0), day(10, 0))},
		"alpha": {event("alpha", day(9, 0), day(10, 0))},
	}

	for i := 0; i < 10; i++ {
		busy := Aggregate("alice", events)
		require.Len(t, busy, 1)
	}
}

func TestClipIntervals(t *testing.T) {
	intervals := []BusyInterval{
		{Participant: "p", Start: day(7, 0), End: day(8, 0)},
		{Participant: "p", Start: day(8, 30), End: day(9, 30)},
		{Participant: "p", Start: day(10, 0), End: day(10, 0)}, // zero-duration marker
		{Participant: "p", Start: day(11, 0), End: day(13, 0)},
		{Participant: "p", Start: day(14, 0), End: day(15, 0)},
	}

	clipped := ClipIntervals(intervals, day(9, 0), day(12, 0))
	require.Len(t, clipped, 3)
	assert.True(t, clipped[0].Start.Equal(day(9, 0)), "straddling interval trimmed to window start")
	assert.True(t, clipped[0].End.Equal(day(9, 30)))
	assert.True(t, clipped[1].Start.Equal(day(10, 0)), "zero-duration marker inside window kept")
	assert.True(t, clipped[2].End.Equal(day(12, 0)), "straddling interval trimmed to window end")
}
