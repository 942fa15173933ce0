// Package schedule implements the scheduling core: event normalization,
// per-participant availability aggregation, conflict detection, and the
// optimal-meeting-time search.
//
// The package is provider-neutral. Calendar data enters as provider.RawEvent
// records, is normalized into CalendarEvent values with resolved time zones,
// and is merged into ordered BusyInterval sequences per participant. All
// interval arithmetic uses half-open [start, end) semantics: an event ending
// exactly when another begins does not conflict with it, and back-to-back
// busy intervals are kept distinct.
//
// Example usage:
//
//	busy := schedule.Aggregate("alice@example.com", eventsByAccount)
//	slots, err := schedule.FindSlots(ctx, participants, 30*time.Minute,
//	    windowStart, windowEnd, schedule.SlotOptions{MaxResults: 5})
package schedule
