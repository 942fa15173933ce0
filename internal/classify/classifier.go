package classify

import (
	"context"
	"fmt"
	"time"
)

// Intent tags an utterance with the calendar operation it asks for.
type Intent string

const (
	IntentSearch   Intent = "search"
	IntentCreate   Intent = "create"
	IntentUpdate   Intent = "update"
	IntentDelete   Intent = "delete"
	IntentSchedule Intent = "schedule"
	IntentGeneral  Intent = "general"
)

// Destructive reports whether dispatching the intent requires explicit user
// confirmation first. Updates count as destructive only when they change an
// event's time or attendees; that refinement is applied by the router, which
// sees the extracted parameters.
func (i Intent) Destructive() bool {
	return i == IntentDelete || i == IntentUpdate
}

// Turn is one prior exchange in a conversation, passed to classifiers as
// context for follow-up utterances.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Params holds the slot-filling values extracted from an utterance.
// Zero values mean "not mentioned".
type Params struct {
	Start     time.Time
	End       time.Time
	Duration  time.Duration
	Attendees []string
	Title     string
	Query     string

	// Ordinal is a 1-based reference into the last shown result set
	// ("the third one"). Zero when absent.
	Ordinal int

	// HasTime reports whether Start carries a clock time from the
	// utterance. False with a non-zero Start means a bare date, which
	// cannot otherwise be told apart from an explicit midnight.
	HasTime bool
}

// Merge overlays the non-zero fields of other onto p, returning the result.
// Used when a clarification turn supplies only the missing parameters.
func (p Params) Merge(other Params) Params {
	if !other.Start.IsZero() {
		p.Start = other.Start
		p.HasTime = other.HasTime
	}
	if !other.End.IsZero() {
		p.End = other.End
	}
	if other.Duration != 0 {
		p.Duration = other.Duration
	}
	if len(other.Attendees) > 0 {
		p.Attendees = append(p.Attendees, other.Attendees...)
	}
	if other.Title != "" {
		p.Title = other.Title
	}
	if other.Query != "" {
		p.Query = other.Query
	}
	if other.Ordinal != 0 {
		p.Ordinal = other.Ordinal
	}
	return p
}

// Result is a classification outcome: the chosen intent, the extracted
// parameters, and the classifier's confidence in [0, 1].
type Result struct {
	Intent     Intent
	Params     Params
	Confidence float64
}

// Classifier maps an utterance (with conversation history) to an intent and
// extracted parameters. Implementations may be slow and fallible; the engine
// treats errors as ClassificationError and degrades to IntentGeneral.
type Classifier interface {
	Classify(ctx context.Context, utterance string, history []Turn) (Result, error)
}

// ClassificationError wraps an external classifier failure. Non-fatal: the
// router answers the turn as a general conversation instead.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("intent classification failed: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}
