package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meetwise/meetwise/internal/classify"
	"github.com/meetwise/meetwise/internal/logging"
	"github.com/meetwise/meetwise/internal/provider"
	"github.com/meetwise/meetwise/internal/schedule"
)

// Engine is the conversational scheduling engine. One instance serves many
// sessions; per-session serialization is enforced by the host's session
// manager, not here.
type Engine struct {
	cfg      Config
	zone     *time.Location
	store    Store
	adapters []provider.Adapter
	router   *Router
	log      *slog.Logger
	now      func() time.Time
}

// Option tweaks an Engine at construction time.
type Option func(*Engine)

// WithClock overrides the engine's clock. Tests use this to pin relative
// date resolution.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New builds an engine from its collaborators. The classifier and store are
// required; adapters may be empty (every request then sees zero accounts).
func New(cfg Config, classifier classify.Classifier, store Store, adapters []provider.Adapter, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if classifier == nil {
		return nil, fmt.Errorf("engine requires a classifier")
	}
	if store == nil {
		return nil, fmt.Errorf("engine requires a context store")
	}
	if logger == nil {
		logger = slog.Default()
	}

	zone, err := time.LoadLocation(cfg.ReferenceZone)
	if err != nil {
		return nil, fmt.Errorf("load reference zone %q: %w", cfg.ReferenceZone, err)
	}

	e := &Engine{
		cfg:      cfg,
		zone:     zone,
		store:    store,
		adapters: adapters,
		log:      logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.router = &Router{
		Classifier:         classifier,
		ClarificationLimit: cfg.ClarificationLimit,
		Zone:               zone,
		Now:                e.now,
		Logger:             logger,
	}
	return e, nil
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// HandleMessage processes one utterance for a session and returns the
// structured reply. An unknown or expired session id starts a fresh
// conversation. The caller must not invoke HandleMessage concurrently for
// the same session id.
func (e *Engine) HandleMessage(ctx context.Context, sessionID, utterance string) (*Reply, error) {
	cc, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if cc == nil {
		cc = NewConversationContext(sessionID)
	}
	cc.appendTurn("user", utterance)

	outcome := e.router.Route(ctx, cc, utterance)

	var reply *Reply
	switch {
	case outcome.reply != nil:
		reply = outcome.reply
	case outcome.confirm != nil:
		reply = e.prepareConfirmation(ctx, cc, outcome.confirm)
	case outcome.dispatch != nil:
		reply = e.dispatch(ctx, cc, outcome.dispatch)
	default:
		reply = messageReply(classify.IntentGeneral, "I'm not sure what to do with that.")
	}

	cc.appendTurn("assistant", reply.Text)
	cc.State = reply.State
	cc.UpdatedAt = e.now()
	if err := e.store.Save(ctx, cc); err != nil {
		return nil, fmt.Errorf("save session %s: %w", sessionID, err)
	}

	e.log.Info("turn handled",
		logging.Operation("engine.handle_message"),
		logging.Session(sessionID),
		logging.Intent(string(reply.Intent)),
		logging.State(string(reply.State)))
	return reply, nil
}

// dispatch runs the handler for a completed action.
func (e *Engine) dispatch(ctx context.Context, cc *ConversationContext, action *PendingAction) *Reply {
	switch action.Intent {
	case classify.IntentSearch:
		return e.handleSearch(ctx, cc, action.Params)
	case classify.IntentSchedule:
		return e.handleSchedule(ctx, cc, action.Params)
	case classify.IntentCreate:
		return e.handleCreate(ctx, cc, action.Params)
	case classify.IntentUpdate:
		return e.handleUpdate(ctx, cc, action)
	case classify.IntentDelete:
		return e.handleDelete(ctx, cc, action)
	default:
		return e.handleGeneral()
	}
}

// NextAvailable returns the first slot in the window where every
// participant is free, or ok=false when none exists.
func (e *Engine) NextAvailable(ctx context.Context, duration time.Duration, windowStart, windowEnd time.Time) (schedule.CandidateSlot, bool, error) {
	fetched := e.fetchEvents(ctx, windowStart, windowEnd)
	participants := []schedule.Participant{{
		ID:   e.cfg.OwnerID,
		Busy: e.ownerBusy(fetched, windowStart, windowEnd),
	}}

	slots, err := schedule.FindSlots(ctx, participants, duration, windowStart, windowEnd, e.slotOptions(1))
	if err != nil {
		return schedule.CandidateSlot{}, false, err
	}
	for _, s := range slots {
		if s.Perfect() {
			return s, true, nil
		}
	}
	return schedule.CandidateSlot{}, false, nil
}

// FindSlots runs a slot search over the owner's accounts plus the named
// attendees. Attendees without connected feeds contribute no busy data.
func (e *Engine) FindSlots(ctx context.Context, attendees []string, duration time.Duration, windowStart, windowEnd time.Time) ([]schedule.CandidateSlot, FetchResult, error) {
	fetched := e.fetchEvents(ctx, windowStart, windowEnd)
	participants := []schedule.Participant{{
		ID:   e.cfg.OwnerID,
		Busy: e.ownerBusy(fetched, windowStart, windowEnd),
	}}
	for _, a := range schedule.NormalizeAttendees(attendees) {
		if a == e.cfg.OwnerID {
			continue
		}
		participants = append(participants, schedule.Participant{ID: a})
	}

	slots, err := schedule.FindSlots(ctx, participants, duration, windowStart, windowEnd, e.slotOptions(e.cfg.MaxResults))
	if err != nil {
		return nil, fetched, err
	}
	return slots, fetched, nil
}

// CheckConflicts tests a proposed interval against the owner's merged busy
// intervals.
func (e *Engine) CheckConflicts(ctx context.Context, proposedStart, proposedEnd time.Time) ([]schedule.BusyInterval, FetchResult) {
	fetched := e.fetchEvents(ctx, proposedStart, proposedEnd)
	busy := e.ownerBusy(fetched, proposedStart, proposedEnd)
	return schedule.ListConflicts(proposedStart, proposedEnd, busy), fetched
}

// ListEvents fetches and normalizes the owner's events over a window.
func (e *Engine) ListEvents(ctx context.Context, windowStart, windowEnd time.Time) ([]schedule.CalendarEvent, FetchResult) {
	fetched := e.fetchEvents(ctx, windowStart, windowEnd)
	return fetched.Events(), fetched
}

func (e *Engine) slotOptions(maxResults int) schedule.SlotOptions {
	return schedule.SlotOptions{
		Granularity:       e.cfg.Granularity,
		BusinessHoursOnly: e.cfg.BusinessHoursOnly,
		BusinessStartHour: e.cfg.BusinessStartHour,
		BusinessEndHour:   e.cfg.BusinessEndHour,
		ReferenceZone:     e.zone,
		MaxResults:        maxResults,
	}
}

// window derives the search window from extracted parameters, falling back
// to [now, now+SearchWindow) when the utterance did not pin one down.
func (e *Engine) window(p classify.Params) (time.Time, time.Time) {
	now := e.now().In(e.zone)
	switch {
	case !p.Start.IsZero() && !p.End.IsZero() && p.End.After(p.Start):
		return p.Start, p.End
	case !p.Start.IsZero():
		// A bare date means that whole day. An explicit clock time,
		// midnight included, anchors the usual search window instead.
		if !p.HasTime {
			return p.Start, p.Start.AddDate(0, 0, 1)
		}
		return p.Start, p.Start.Add(e.cfg.SearchWindow)
	default:
		return now, now.Add(e.cfg.SearchWindow)
	}
}
