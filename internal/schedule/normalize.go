package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/meetwise/meetwise/internal/provider"
)

// Timestamp layouts accepted from providers, tried in order.
const (
	layoutNaive = "2006-01-02T15:04:05"
	layoutDate  = "2006-01-02"
)

// Normalize converts a provider-native record into a CalendarEvent with
// resolved, offset-aware instants. It is a pure function of its input.
//
// A record whose timestamps carry neither an offset nor a resolvable
// timezone is rejected with an error wrapping ErrAmbiguousTime; the engine
// never assumes a local zone on the caller's behalf.
func Normalize(raw provider.RawEvent, providerTag, accountID string) (CalendarEvent, error) {
	fail := func(err error) (CalendarEvent, error) {
		return CalendarEvent{}, &NormalizationError{
			Provider:  providerTag,
			AccountID: accountID,
			RawID:     raw.ID,
			Err:       err,
		}
	}

	start, err := resolveInstant(raw.Start, raw.TimeZone, raw.AllDay)
	if err != nil {
		return fail(fmt.Errorf("start: %w", err))
	}
	end, err := resolveInstant(raw.End, raw.TimeZone, raw.AllDay)
	if err != nil {
		return fail(fmt.Errorf("end: %w", err))
	}
	if end.Before(start) {
		return fail(fmt.Errorf("event ends %s before it starts %s", end, start))
	}

	return CalendarEvent{
		ID:          raw.ID,
		Provider:    providerTag,
		AccountID:   accountID,
		Title:       raw.Title,
		Start:       start,
		End:         end,
		Location:    raw.Location,
		Attendees:   NormalizeAttendees(raw.Attendees),
		Description: raw.Description,
	}, nil
}

// resolveInstant parses a provider timestamp into an absolute instant.
// Offset-qualified timestamps stand on their own; naive timestamps and
// all-day dates require the record's timezone.
func resolveInstant(value, tz string, allDay bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("missing timestamp")
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	layout := layoutNaive
	if allDay {
		layout = layoutDate
	}

	if tz == "" {
		return time.Time{}, fmt.Errorf("%q: %w", value, ErrAmbiguousTime)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q in unknown zone %q: %w", value, tz, ErrAmbiguousTime)
	}

	t, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		// All-day flags are advisory; fall back to the other naive layout
		// before giving up on the record.
		alt := layoutDate
		if allDay {
			alt = layoutNaive
		}
		t, err = time.ParseInLocation(alt, value, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
		}
	}
	return t, nil
}
