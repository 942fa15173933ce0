package schedule

import "time"

// HasConflict reports whether a proposed [start, end) interval overlaps any
// of the given busy intervals. The intervals must be sorted by start, as
// produced by Aggregate; detection short-circuits once an interval starts at
// or after the proposed end.
//
// The overlap test is strict half-open: an event ending exactly when the
// proposal begins is not a conflict, and neither is the reverse.
func HasConflict(proposedStart, proposedEnd time.Time, busy []BusyInterval) bool {
	for _, iv := range busy {
		if !iv.Start.Before(proposedEnd) {
			break
		}
		if iv.Overlaps(proposedStart, proposedEnd) {
			return true
		}
	}
	return false
}

// ListConflicts returns, in order, every busy interval overlapping the
// proposed [start, end) interval. Used for diagnostic reporting when a
// requested time is rejected.
func ListConflicts(proposedStart, proposedEnd time.Time, busy []BusyInterval) []BusyInterval {
	var conflicts []BusyInterval
	for _, iv := range busy {
		if !iv.Start.Before(proposedEnd) {
			break
		}
		if iv.Overlaps(proposedStart, proposedEnd) {
			conflicts = append(conflicts, iv)
		}
	}
	return conflicts
}
