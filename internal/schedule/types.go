package schedule

import (
	"sort"
	"strings"
	"time"
)

// CalendarEvent is the provider-neutral representation of a calendar event.
// Start and End are absolute instants; construction goes through Normalize,
// which rejects records whose timestamps cannot be resolved to an offset.
// Events are immutable once constructed: update and delete operations build
// new events rather than mutating in place.
type CalendarEvent struct {
	ID          string
	Provider    string
	AccountID   string
	Title       string
	Start       time.Time
	End         time.Time
	Location    string
	Attendees   []string
	Description string
}

// Duration returns the event length. An event with Start == End is a
// zero-duration marker; it still occupies its instant and is never "free".
func (e CalendarEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// BusyInterval is a maximal merged span during which a participant is
// unavailable. Derived by Aggregate; never constructed from user input.
type BusyInterval struct {
	Participant string
	Start       time.Time
	End         time.Time
}

// Overlaps reports whether the interval overlaps [start, end) under
// half-open semantics. A zero-duration marker counts as busy at its instant:
// it conflicts with any proposal containing that instant.
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	if b.Start.Equal(b.End) {
		return !b.Start.Before(start) && b.Start.Before(end)
	}
	return start.Before(b.End) && b.Start.Before(end)
}

// Participant holds one attendee's merged busy intervals covering a search
// window. Identity is supplied per request; the engine does not own it.
type Participant struct {
	ID   string
	Busy []BusyInterval
}

// CandidateSlot is a proposed meeting time with computed per-participant
// availability. AvailableCount + len(Unavailable) == TotalCount always holds.
type CandidateSlot struct {
	Start          time.Time
	End            time.Time
	AvailableCount int
	TotalCount     int
	Unavailable    []string
}

// Perfect reports whether every participant is available for the slot.
func (s CandidateSlot) Perfect() bool {
	return s.AvailableCount == s.TotalCount
}

// NormalizeAttendees lower-cases and de-duplicates attendee identifiers,
// returning them in sorted order for determinism.
func NormalizeAttendees(attendees []string) []string {
	if len(attendees) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(attendees))
	out := make([]string, 0, len(attendees))
	for _, a := range attendees {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
