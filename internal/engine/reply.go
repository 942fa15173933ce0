package engine

import (
	"github.com/meetwise/meetwise/internal/classify"
	"github.com/meetwise/meetwise/internal/schedule"
)

// ReplyKind tags the shape of a structured reply so callers can render it
// without parsing Text.
type ReplyKind string

const (
	// ReplyMessage is plain conversational text (general intent, apologies,
	// explanatory errors).
	ReplyMessage ReplyKind = "message"

	// ReplyClarification asks the user for a missing parameter.
	ReplyClarification ReplyKind = "clarification"

	// ReplyConfirmation asks the user to confirm a destructive action.
	ReplyConfirmation ReplyKind = "confirmation"

	// ReplyEvents carries a list of calendar events (search results).
	ReplyEvents ReplyKind = "events"

	// ReplySlots carries ranked candidate meeting slots.
	ReplySlots ReplyKind = "slots"

	// ReplyEventCreated, ReplyEventUpdated, and ReplyEventDeleted report a
	// completed mutation; Events holds the affected event where one exists.
	ReplyEventCreated ReplyKind = "event_created"
	ReplyEventUpdated ReplyKind = "event_updated"
	ReplyEventDeleted ReplyKind = "event_deleted"
)

// Reply is the structured result of one conversation turn. Rendering to
// text or HTML is the host's job; Text is a plain-language summary suitable
// as a default rendering.
type Reply struct {
	Kind   ReplyKind
	Text   string
	Intent classify.Intent

	// State is the router state after this turn.
	State State

	Events []schedule.CalendarEvent
	Slots  []schedule.CandidateSlot
	Busy   []schedule.BusyInterval

	// Partial is set when one or more accounts could not be fetched and the
	// results cover only the remaining accounts. FailedAccounts lists them.
	Partial        bool
	FailedAccounts []string

	// Conflicts lists busy intervals overlapping a proposed event, reported
	// alongside create confirmations.
	Conflicts []schedule.BusyInterval
}

func messageReply(intent classify.Intent, text string) *Reply {
	return &Reply{Kind: ReplyMessage, Intent: intent, State: StateIdle, Text: text}
}
