package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/meetwise/meetwise/internal/classify"
	"github.com/meetwise/meetwise/internal/logging"
)

// Router advances a conversation context by one utterance. Classification is
// delegated to the injected Classifier; everything else about a transition
// is a pure function of the context, the utterance, and the classifier's
// output, so the state table is testable with a scripted classifier.
type Router struct {
	Classifier         classify.Classifier
	ClarificationLimit int
	Zone               *time.Location
	Now                func() time.Time
	Logger             *slog.Logger
}

// routeOutcome is the router's verdict on one turn. Exactly one field is
// set: dispatch (a completed action ready for its handler), confirm (a
// completed destructive action the engine must resolve to a concrete event
// and gate behind a confirmation prompt), or reply (the router answered the
// turn itself).
type routeOutcome struct {
	dispatch *PendingAction
	confirm  *PendingAction
	reply    *Reply
}

const apologyText = "Sorry, I still don't have enough to go on. Let's start over. What would you like to do?"

// Route consumes one utterance and advances the session state machine. It
// mutates cc's State and Pending fields; history bookkeeping and result-set
// retention belong to the engine.
func (r *Router) Route(ctx context.Context, cc *ConversationContext, utterance string) routeOutcome {
	switch cc.State {
	case StateAwaitingConfirmation:
		return r.routeConfirmation(cc, utterance)
	case StateAwaitingClarification:
		return r.routeClarification(cc, utterance)
	default:
		return r.routeIdle(ctx, cc, utterance)
	}
}

func (r *Router) routeIdle(ctx context.Context, cc *ConversationContext, utterance string) routeOutcome {
	result, err := r.Classifier.Classify(ctx, utterance, cc.History)
	if err != nil {
		cerr := &classify.ClassificationError{Err: err}
		r.Logger.Warn("classification failed, degrading to general",
			logging.Session(cc.SessionID), logging.Err(cerr))
		cc.reset()
		return routeOutcome{reply: messageReply(classify.IntentGeneral,
			"Sorry, I had trouble understanding that. Could you rephrase?")}
	}

	action := &PendingAction{Intent: result.Intent, Params: result.Params}
	if inc := completeness(action.Intent, action.Params); inc != nil {
		action.Missing = inc.Missing
		action.Rounds = 1
		cc.State = StateAwaitingClarification
		cc.Pending = action
		return routeOutcome{reply: &Reply{
			Kind:   ReplyClarification,
			Intent: action.Intent,
			State:  StateAwaitingClarification,
			Text:   clarificationQuestion(action.Missing[0]),
		}}
	}

	return r.complete(cc, action)
}

func (r *Router) routeClarification(cc *ConversationContext, utterance string) routeOutcome {
	action := cc.Pending
	if action == nil {
		// Stale state with nothing pending. Recover by starting over.
		cc.reset()
		return routeOutcome{reply: messageReply(classify.IntentGeneral,
			"Let's start over. What would you like to do?")}
	}

	// The utterance supplies the missing parameters only; the intent is not
	// re-classified mid-request.
	supplied := classify.ExtractParams(utterance, r.now())
	action.Params = action.Params.Merge(supplied)

	inc := completeness(action.Intent, action.Params)
	if inc == nil {
		return r.complete(cc, action)
	}
	action.Missing = inc.Missing

	if action.Rounds >= r.ClarificationLimit {
		r.Logger.Info("clarification limit reached, resetting",
			logging.Session(cc.SessionID), logging.Intent(string(action.Intent)))
		cc.reset()
		return routeOutcome{reply: messageReply(classify.IntentGeneral, apologyText)}
	}

	action.Rounds++
	return routeOutcome{reply: &Reply{
		Kind:   ReplyClarification,
		Intent: action.Intent,
		State:  StateAwaitingClarification,
		Text:   clarificationQuestion(action.Missing[0]),
	}}
}

func (r *Router) routeConfirmation(cc *ConversationContext, utterance string) routeOutcome {
	action := cc.Pending
	cc.reset()
	if action == nil {
		return routeOutcome{reply: messageReply(classify.IntentGeneral,
			"Nothing is pending. What would you like to do?")}
	}

	if affirmative(utterance) {
		return routeOutcome{dispatch: action}
	}

	// Anything short of an explicit yes aborts the pending action.
	return routeOutcome{reply: messageReply(action.Intent,
		fmt.Sprintf("Okay, I won't %s anything.", verbFor(action.Intent)))}
}

// complete routes a parameter-complete action: destructive ones go through
// confirmation, the rest dispatch immediately.
func (r *Router) complete(cc *ConversationContext, action *PendingAction) routeOutcome {
	if destructive(action) {
		// State moves to AwaitingConfirmation only after the engine resolves
		// the target; resolution failure must leave the session Idle.
		return routeOutcome{confirm: action}
	}
	cc.reset()
	return routeOutcome{dispatch: action}
}

func (r *Router) now() time.Time {
	t := time.Now()
	if r.Now != nil {
		t = r.Now()
	}
	if r.Zone != nil {
		t = t.In(r.Zone)
	}
	return t
}

// destructive reports whether the action needs explicit confirmation.
// Deletes always do; updates only when they change the event's time or
// attendees.
func destructive(action *PendingAction) bool {
	switch action.Intent {
	case classify.IntentDelete:
		return true
	case classify.IntentUpdate:
		p := action.Params
		return !p.Start.IsZero() || !p.End.IsZero() || p.Duration != 0 || len(p.Attendees) > 0
	default:
		return false
	}
}

// Parameter requirements per intent. Search and general work with whatever
// was said; the rest cannot proceed without these.
const (
	paramStart  = "start"
	paramLength = "duration"
	paramTarget = "target"
)

func completeness(intent classify.Intent, p classify.Params) *IncompleteRequestError {
	var missing []string
	switch intent {
	case classify.IntentCreate:
		// An ordinal reference ("book the second one") resolves to a slot
		// from the last search, which carries its own times.
		if p.Start.IsZero() && p.Ordinal == 0 {
			missing = append(missing, paramStart)
		}
	case classify.IntentSchedule:
		if p.Duration == 0 && (p.Start.IsZero() || p.End.IsZero()) {
			missing = append(missing, paramLength)
		}
	case classify.IntentUpdate, classify.IntentDelete:
		if p.Ordinal == 0 && p.Title == "" && p.Query == "" {
			missing = append(missing, paramTarget)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &IncompleteRequestError{Intent: intent, Missing: missing}
}

func clarificationQuestion(param string) string {
	switch param {
	case paramStart:
		return "When should the event take place?"
	case paramLength:
		return "How long should the meeting be?"
	case paramTarget:
		return `Which event do you mean? You can name it or refer to the last list, like "the second one".`
	default:
		return "Could you tell me a bit more?"
	}
}

var affirmatives = map[string]struct{}{
	"yes": {}, "y": {}, "yeah": {}, "yep": {}, "sure": {},
	"ok": {}, "okay": {}, "confirm": {}, "confirmed": {},
	"do it": {}, "go ahead": {}, "yes please": {},
}

// affirmative reports whether the reply explicitly confirms. Everything
// else, including a new unrelated command, counts as a no.
func affirmative(utterance string) bool {
	s := strings.ToLower(strings.TrimSpace(utterance))
	s = strings.TrimRight(s, ".!")
	_, ok := affirmatives[s]
	return ok
}

func verbFor(intent classify.Intent) string {
	switch intent {
	case classify.IntentDelete:
		return "delete"
	case classify.IntentUpdate:
		return "change"
	default:
		return "touch"
	}
}
