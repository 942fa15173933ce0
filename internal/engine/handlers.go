package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meetwise/meetwise/internal/classify"
	"github.com/meetwise/meetwise/internal/logging"
	"github.com/meetwise/meetwise/internal/provider"
	"github.com/meetwise/meetwise/internal/schedule"
)

const timeFormat = "Mon Jan 2 15:04"

func (e *Engine) handleSearch(ctx context.Context, cc *ConversationContext, p classify.Params) *Reply {
	if len(e.adapters) == 0 {
		return messageReply(classify.IntentSearch, "No calendar accounts are connected yet.")
	}

	windowStart, windowEnd := e.window(p)
	fetched := e.fetchEvents(ctx, windowStart, windowEnd)
	if fetched.Partial && len(fetched.EventsByAccount) == 0 {
		return messageReply(classify.IntentSearch,
			"None of your calendar accounts could be reached. Please try again in a moment.")
	}

	events := filterEvents(fetched.Events(), p)
	cc.LastEvents = events

	text := fmt.Sprintf("Found %d event(s) between %s and %s.",
		len(events), windowStart.In(e.zone).Format(timeFormat), windowEnd.In(e.zone).Format(timeFormat))
	if fetched.Partial {
		text += fmt.Sprintf(" Some accounts could not be reached: %s.", strings.Join(fetched.FailedAccounts, ", "))
	}

	return &Reply{
		Kind:           ReplyEvents,
		Intent:         classify.IntentSearch,
		State:          StateIdle,
		Text:           text,
		Events:         events,
		Busy:           e.ownerBusy(fetched, windowStart, windowEnd),
		Partial:        fetched.Partial,
		FailedAccounts: fetched.FailedAccounts,
	}
}

func (e *Engine) handleSchedule(ctx context.Context, cc *ConversationContext, p classify.Params) *Reply {
	duration := p.Duration
	if duration == 0 && !p.Start.IsZero() && !p.End.IsZero() {
		duration = p.End.Sub(p.Start)
	}

	windowStart, windowEnd := e.window(p)
	slots, fetched, err := e.FindSlots(ctx, p.Attendees, duration, windowStart, windowEnd)
	if err != nil {
		var invalid *schedule.InvalidDurationError
		if errors.As(err, &invalid) {
			return messageReply(classify.IntentSchedule,
				fmt.Sprintf("I can't schedule a meeting of %s. Please give a duration between a minute and a day.", invalid.Duration))
		}
		e.log.Error("slot search failed", logging.Session(cc.SessionID), logging.Err(err))
		return messageReply(classify.IntentSchedule, "The slot search was interrupted. Please try again.")
	}

	cc.LastSlots = slots

	var text string
	if len(slots) == 0 {
		text = fmt.Sprintf("No %s slots are open between %s and %s.",
			duration, windowStart.In(e.zone).Format(timeFormat), windowEnd.In(e.zone).Format(timeFormat))
	} else {
		text = fmt.Sprintf("Here are %d option(s) for a %s meeting, best first. The top one starts %s.",
			len(slots), duration, slots[0].Start.In(e.zone).Format(timeFormat))
	}
	if fetched.Partial {
		text += fmt.Sprintf(" Availability for %s is unknown, so these are best-effort.", strings.Join(fetched.FailedAccounts, ", "))
	}

	return &Reply{
		Kind:           ReplySlots,
		Intent:         classify.IntentSchedule,
		State:          StateIdle,
		Text:           text,
		Slots:          slots,
		Partial:        fetched.Partial,
		FailedAccounts: fetched.FailedAccounts,
	}
}

func (e *Engine) handleCreate(ctx context.Context, cc *ConversationContext, p classify.Params) *Reply {
	start, end := p.Start, p.End
	if p.Ordinal > 0 {
		if p.Ordinal > len(cc.LastSlots) {
			return messageReply(classify.IntentCreate,
				fmt.Sprintf("There is no option %d in the last list.", p.Ordinal))
		}
		slot := cc.LastSlots[p.Ordinal-1]
		start, end = slot.Start, slot.End
	}
	if end.IsZero() || !end.After(start) {
		duration := p.Duration
		if duration == 0 {
			duration = time.Hour
		}
		end = start.Add(duration)
	}

	writer := e.writerFor("")
	if writer == nil {
		return messageReply(classify.IntentCreate, "No writable calendar account is connected.")
	}

	title := p.Title
	if title == "" {
		title = "Meeting"
	}

	conflicts, _ := e.CheckConflicts(ctx, start, end)

	created, err := writer.CreateEvent(ctx, provider.RawEvent{
		Title:     title,
		Start:     start.Format(time.RFC3339),
		End:       end.Format(time.RFC3339),
		Attendees: schedule.NormalizeAttendees(p.Attendees),
	})
	if err != nil {
		perr := &schedule.ProviderError{Provider: writer.Provider(), AccountID: writer.AccountID(), Err: err}
		e.log.Error("create failed", logging.Session(cc.SessionID), logging.Err(perr))
		return messageReply(classify.IntentCreate,
			fmt.Sprintf("Creating the event on %s failed: %v.", writer.AccountID(), err))
	}

	ev, err := schedule.Normalize(created, writer.Provider(), writer.AccountID())
	if err != nil {
		// The provider accepted the event but echoed something unusable.
		// Report success with what we sent.
		ev = schedule.CalendarEvent{
			ID: created.ID, Provider: writer.Provider(), AccountID: writer.AccountID(),
			Title: title, Start: start, End: end,
			Attendees: schedule.NormalizeAttendees(p.Attendees),
		}
	}
	cc.LastEvents = []schedule.CalendarEvent{ev}

	text := fmt.Sprintf("Created %q on %s, %s to %s.",
		ev.Title, writer.AccountID(), ev.Start.In(e.zone).Format(timeFormat), ev.End.In(e.zone).Format("15:04"))
	if len(conflicts) > 0 {
		text += fmt.Sprintf(" Heads up: it overlaps %d existing busy block(s).", len(conflicts))
	}

	return &Reply{
		Kind:      ReplyEventCreated,
		Intent:    classify.IntentCreate,
		State:     StateIdle,
		Text:      text,
		Events:    []schedule.CalendarEvent{ev},
		Conflicts: conflicts,
	}
}

func (e *Engine) handleUpdate(ctx context.Context, cc *ConversationContext, action *PendingAction) *Reply {
	target := action.Target
	if target == nil {
		// Non-destructive updates skip confirmation and arrive unresolved.
		t, ok := e.resolveTarget(ctx, cc, action.Params)
		if !ok {
			return messageReply(classify.IntentUpdate,
				"I couldn't find a matching event. Try searching first, then refer to one from the list.")
		}
		target = &t
	}

	writer := e.writerFor(target.AccountID)
	if writer == nil {
		return messageReply(classify.IntentUpdate,
			fmt.Sprintf("The account %s does not support changes.", target.AccountID))
	}

	// Construct the replacement event; the original is never mutated.
	updated := *target
	p := action.Params
	if !p.Start.IsZero() {
		duration := target.Duration()
		updated.Start = p.Start
		updated.End = p.Start.Add(duration)
	}
	if !p.End.IsZero() {
		updated.End = p.End
	}
	if p.Duration != 0 {
		updated.End = updated.Start.Add(p.Duration)
	}
	if len(p.Attendees) > 0 {
		updated.Attendees = schedule.NormalizeAttendees(append(append([]string{}, target.Attendees...), p.Attendees...))
	}
	if p.Title != "" && !strings.EqualFold(p.Title, target.Title) {
		updated.Title = p.Title
	}

	stored, err := writer.UpdateEvent(ctx, provider.RawEvent{
		ID:        updated.ID,
		Title:     updated.Title,
		Location:  updated.Location,
		Start:     updated.Start.Format(time.RFC3339),
		End:       updated.End.Format(time.RFC3339),
		Attendees: updated.Attendees,
	})
	if err != nil {
		perr := &schedule.ProviderError{Provider: writer.Provider(), AccountID: writer.AccountID(), Err: err}
		e.log.Error("update failed", logging.Session(cc.SessionID), logging.Err(perr))
		return messageReply(classify.IntentUpdate,
			fmt.Sprintf("Updating %q failed: %v.", target.Title, err))
	}

	ev, err := schedule.Normalize(stored, writer.Provider(), writer.AccountID())
	if err != nil {
		ev = updated
	}
	cc.LastEvents = []schedule.CalendarEvent{ev}

	return &Reply{
		Kind:   ReplyEventUpdated,
		Intent: classify.IntentUpdate,
		State:  StateIdle,
		Text: fmt.Sprintf("Updated %q, now %s to %s.",
			ev.Title, ev.Start.In(e.zone).Format(timeFormat), ev.End.In(e.zone).Format("15:04")),
		Events: []schedule.CalendarEvent{ev},
	}
}

func (e *Engine) handleDelete(ctx context.Context, cc *ConversationContext, action *PendingAction) *Reply {
	target := action.Target
	if target == nil {
		t, ok := e.resolveTarget(ctx, cc, action.Params)
		if !ok {
			return messageReply(classify.IntentDelete,
				"I couldn't find a matching event. Try searching first, then refer to one from the list.")
		}
		target = &t
	}

	writer := e.writerFor(target.AccountID)
	if writer == nil {
		return messageReply(classify.IntentDelete,
			fmt.Sprintf("The account %s does not support deletion.", target.AccountID))
	}

	if err := writer.DeleteEvent(ctx, target.ID); err != nil {
		perr := &schedule.ProviderError{Provider: writer.Provider(), AccountID: writer.AccountID(), Err: err}
		e.log.Error("delete failed", logging.Session(cc.SessionID), logging.Err(perr))
		return messageReply(classify.IntentDelete,
			fmt.Sprintf("Deleting %q failed: %v.", target.Title, err))
	}

	return &Reply{
		Kind:   ReplyEventDeleted,
		Intent: classify.IntentDelete,
		State:  StateIdle,
		Text: fmt.Sprintf("Deleted %q (%s).",
			target.Title, target.Start.In(e.zone).Format(timeFormat)),
		Events: []schedule.CalendarEvent{*target},
	}
}

func (e *Engine) handleGeneral() *Reply {
	return messageReply(classify.IntentGeneral,
		"I can search your calendar, create, change, or delete events, and find meeting times that work. What would you like to do?")
}

// prepareConfirmation resolves a destructive action to a concrete event and
// parks it behind a confirmation prompt. Resolution failure leaves the
// session Idle with an explanatory message.
func (e *Engine) prepareConfirmation(ctx context.Context, cc *ConversationContext, action *PendingAction) *Reply {
	target, ok := e.resolveTarget(ctx, cc, action.Params)
	if !ok {
		cc.reset()
		return messageReply(action.Intent,
			"I couldn't find a matching event. Try searching first, then refer to one from the list.")
	}

	action.Target = &target
	cc.State = StateAwaitingConfirmation
	cc.Pending = action

	var text string
	switch action.Intent {
	case classify.IntentDelete:
		text = fmt.Sprintf("Delete %q on %s? (yes/no)",
			target.Title, target.Start.In(e.zone).Format(timeFormat))
	default:
		text = fmt.Sprintf("Change %q on %s? (yes/no)",
			target.Title, target.Start.In(e.zone).Format(timeFormat))
	}

	return &Reply{
		Kind:   ReplyConfirmation,
		Intent: action.Intent,
		State:  StateAwaitingConfirmation,
		Text:   text,
		Events: []schedule.CalendarEvent{target},
	}
}

// resolveTarget finds the event a destructive action refers to: by ordinal
// into the last shown result set, or by title/query match over the default
// window. The earliest match wins.
func (e *Engine) resolveTarget(ctx context.Context, cc *ConversationContext, p classify.Params) (schedule.CalendarEvent, bool) {
	if p.Ordinal > 0 {
		if p.Ordinal <= len(cc.LastEvents) {
			return cc.LastEvents[p.Ordinal-1], true
		}
		return schedule.CalendarEvent{}, false
	}

	needle := strings.ToLower(p.Title)
	if needle == "" {
		needle = strings.ToLower(p.Query)
	}
	if needle == "" {
		return schedule.CalendarEvent{}, false
	}

	windowStart, windowEnd := e.window(p)
	fetched := e.fetchEvents(ctx, windowStart, windowEnd)
	for _, ev := range fetched.Events() {
		if strings.Contains(strings.ToLower(ev.Title), needle) {
			return ev, true
		}
	}
	return schedule.CalendarEvent{}, false
}

// writerFor returns a mutation-capable adapter. With an account id it must
// match exactly; with an empty id the first writable account wins.
func (e *Engine) writerFor(accountID string) provider.Writer {
	for _, a := range e.adapters {
		w, ok := a.(provider.Writer)
		if !ok {
			continue
		}
		if accountID == "" || w.AccountID() == accountID {
			return w
		}
	}
	return nil
}

// filterEvents narrows search results by free-text query and attendee
// filters. Empty filters pass everything through.
func filterEvents(events []schedule.CalendarEvent, p classify.Params) []schedule.CalendarEvent {
	query := strings.ToLower(p.Query)
	if query == "" {
		query = strings.ToLower(p.Title)
	}
	attendees := schedule.NormalizeAttendees(p.Attendees)

	if query == "" && len(attendees) == 0 {
		return events
	}

	out := make([]schedule.CalendarEvent, 0, len(events))
	for _, ev := range events {
		if query != "" &&
			!strings.Contains(strings.ToLower(ev.Title), query) &&
			!strings.Contains(strings.ToLower(ev.Description), query) {
			continue
		}
		if len(attendees) > 0 && !hasAnyAttendee(ev, attendees) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func hasAnyAttendee(ev schedule.CalendarEvent, attendees []string) bool {
	for _, want := range attendees {
		for _, have := range ev.Attendees {
			if have == want {
				return true
			}
		}
	}
	return false
}
