package schedule

import (
	"sort"
	"time"
)

// Aggregate merges a participant's events from every connected account into
// the minimal ordered set of non-overlapping BusyInterval values.
//
// The same physical meeting frequently appears in more than one connected
// account for the same person, so overlapping events collapse into one
// interval. Merging uses closed-open overlap semantics: an event starting
// strictly before the running interval ends extends it, while back-to-back
// events (one's end equal to the next's start) remain distinct busy blocks.
// An event starting exactly at the running interval's start also merges,
// which absorbs duplicate zero-duration markers and lets a marker extend
// into the event that covers its instant.
func Aggregate(participantID string, eventsByAccount map[string][]CalendarEvent) []BusyInterval {
	var events []CalendarEvent

	// Deterministic account order so ties in start/end sort stably.
	accounts := make([]string, 0, len(eventsByAccount))
	for account := range eventsByAccount {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)
	for _, account := range accounts {
		events = append(events, eventsByAccount[account]...)
	}

	if len(events) == 0 {
		return nil
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		if !events[i].End.Equal(events[j].End) {
			return events[i].End.Before(events[j].End)
		}
		return events[i].AccountID < events[j].AccountID
	})

	intervals := make([]BusyInterval, 0, len(events))
	current := BusyInterval{
		Participant: participantID,
		Start:       events[0].Start,
		End:         events[0].End,
	}

	for _, ev := range events[1:] {
		if ev.Start.Before(current.End) || ev.Start.Equal(current.Start) {
			if ev.End.After(current.End) {
				current.End = ev.End
			}
			continue
		}
		intervals = append(intervals, current)
		current = BusyInterval{
			Participant: participantID,
			Start:       ev.Start,
			End:         ev.End,
		}
	}

	return append(intervals, current)
}

// ClipIntervals restricts a sorted interval sequence to [windowStart,
// windowEnd), dropping intervals entirely outside the window and trimming
// those straddling its edges. Zero-duration markers are kept when their
// instant lies inside the window.
func ClipIntervals(intervals []BusyInterval, windowStart, windowEnd time.Time) []BusyInterval {
	var out []BusyInterval
	for _, iv := range intervals {
		if !iv.Start.Before(windowEnd) {
			break
		}
		zero := iv.Start.Equal(iv.End)
		if zero {
			if iv.Start.Before(windowStart) {
				continue
			}
		} else if !iv.End.After(windowStart) {
			continue
		}
		clipped := iv
		if clipped.Start.Before(windowStart) {
			clipped.Start = windowStart
		}
		if clipped.End.After(windowEnd) {
			clipped.End = windowEnd
		}
		out = append(out, clipped)
	}
	return out
}
