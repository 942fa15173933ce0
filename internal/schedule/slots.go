package schedule

import (
	"context"
	"sort"
	"time"
)

// Slot search defaults.
const (
	DefaultGranularity   = 15 * time.Minute
	DefaultBusinessStart = 9  // 09:00 local to the reference zone
	DefaultBusinessEnd   = 17 // 17:00 local to the reference zone
	DefaultMaxResults    = 10

	// MaxMeetingDuration bounds a single meeting request. Anything longer
	// is treated as a malformed request rather than searched for.
	MaxMeetingDuration = 24 * time.Hour
)

// SlotOptions configures a FindSlots search. The zero value selects the
// defaults above with no business-hours restriction.
type SlotOptions struct {
	// Granularity is the candidate start-time step. Defaults to 15 minutes.
	Granularity time.Duration

	// BusinessHoursOnly restricts candidates to the business-hours mask.
	BusinessHoursOnly bool

	// BusinessStartHour and BusinessEndHour bound the mask, interpreted in
	// ReferenceZone. Zero values select 09:00–17:00.
	BusinessStartHour int
	BusinessEndHour   int

	// ReferenceZone is the zone the business-hours mask is local to.
	// Defaults to UTC.
	ReferenceZone *time.Location

	// MaxResults caps the number of returned slots. Defaults to 10.
	MaxResults int
}

func (o SlotOptions) withDefaults() SlotOptions {
	if o.Granularity <= 0 {
		o.Granularity = DefaultGranularity
	}
	if o.BusinessStartHour == 0 && o.BusinessEndHour == 0 {
		o.BusinessStartHour = DefaultBusinessStart
		o.BusinessEndHour = DefaultBusinessEnd
	}
	if o.ReferenceZone == nil {
		o.ReferenceZone = time.UTC
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	return o
}

// FindSlots enumerates and ranks candidate meeting slots of the given
// duration inside [windowStart, windowEnd).
//
// Every candidate is scored by how many participants are free for it;
// partially available slots are emitted too, never silently dropped, so the
// caller can present best-effort options. Ranking is deterministic: score
// descending, then earliest start, then input order (stable sort).
//
// The walk stops once MaxResults fully available slots have been found or
// the window is exhausted, whichever comes first; if no fully available slot
// exists, the top MaxResults candidates by the same ranking are returned.
// Cancellation is observed between candidate evaluations, since this loop is
// the engine's only potentially long-running computation.
//
// A window shorter than the duration yields an empty result, not an error.
// Zero participants means every slot is trivially "fully available" (0 of 0)
// and still enumerated.
func FindSlots(ctx context.Context, participants []Participant, duration time.Duration, windowStart, windowEnd time.Time, opts SlotOptions) ([]CandidateSlot, error) {
	if duration <= 0 || duration > MaxMeetingDuration {
		return nil, &InvalidDurationError{Duration: duration}
	}
	opts = opts.withDefaults()

	total := len(participants)
	var candidates []CandidateSlot
	perfect := 0

	for start := windowStart; !start.Add(duration).After(windowEnd); start = start.Add(opts.Granularity) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start.Add(duration)
		if opts.BusinessHoursOnly && !withinBusinessHours(start, end, opts) {
			continue
		}

		slot := CandidateSlot{
			Start:      start,
			End:        end,
			TotalCount: total,
		}
		for _, p := range participants {
			if HasConflict(start, end, p.Busy) {
				slot.Unavailable = append(slot.Unavailable, p.ID)
			} else {
				slot.AvailableCount++
			}
		}

		candidates = append(candidates, slot)
		if slot.Perfect() {
			perfect++
			if perfect >= opts.MaxResults {
				break
			}
		}
	}

	rankSlots(candidates)
	if len(candidates) > opts.MaxResults {
		candidates = candidates[:opts.MaxResults]
	}
	return candidates, nil
}

// rankSlots orders candidates by score descending, then by start ascending.
// The walk already produces starts in ascending order, so a stable sort on
// score alone preserves both secondary keys.
func rankSlots(slots []CandidateSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].AvailableCount > slots[j].AvailableCount
	})
}

// withinBusinessHours reports whether the whole slot fits inside the
// business-hours mask of a single day in the reference zone.
func withinBusinessHours(start, end time.Time, opts SlotOptions) bool {
	local := start.In(opts.ReferenceZone)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), opts.BusinessStartHour, 0, 0, 0, opts.ReferenceZone)
	dayEnd := time.Date(local.Year(), local.Month(), local.Day(), opts.BusinessEndHour, 0, 0, 0, opts.ReferenceZone)
	return !local.Before(dayStart) && !end.In(opts.ReferenceZone).After(dayEnd)
}
