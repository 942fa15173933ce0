package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/meetwise/meetwise/internal/logging"
	"github.com/meetwise/meetwise/internal/schedule"
)

// FetchResult is the outcome of fanning out to every connected account. A
// failed or timed-out account degrades the result to partial rather than
// failing the whole request; its events are simply unknown.
type FetchResult struct {
	// EventsByAccount keys normalized events by account id, ready for
	// schedule.Aggregate.
	EventsByAccount map[string][]schedule.CalendarEvent

	Partial        bool
	FailedAccounts []string
}

// Events flattens the per-account map into a single list ordered by start
// instant, then account id.
func (f FetchResult) Events() []schedule.CalendarEvent {
	var out []schedule.CalendarEvent
	accounts := make([]string, 0, len(f.EventsByAccount))
	for acct := range f.EventsByAccount {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)
	for _, acct := range accounts {
		out = append(out, f.EventsByAccount[acct]...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out
}

// fetchEvents issues one fetch per connected account concurrently, each
// under its own timeout, and waits for all of them. Raw records that fail
// normalization are skipped individually; they never poison the account.
func (e *Engine) fetchEvents(ctx context.Context, windowStart, windowEnd time.Time) FetchResult {
	type accountOutcome struct {
		accountID string
		events    []schedule.CalendarEvent
		err       error
	}

	outcomes := make([]accountOutcome, len(e.adapters))
	var wg sync.WaitGroup
	for i, adapter := range e.adapters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.FetchTimeout)
			defer cancel()

			raws, err := adapter.FetchEvents(fetchCtx, windowStart, windowEnd)
			if err != nil {
				outcomes[i] = accountOutcome{
					accountID: adapter.AccountID(),
					err: &schedule.ProviderError{
						Provider:  adapter.Provider(),
						AccountID: adapter.AccountID(),
						Err:       err,
					},
				}
				return
			}

			events := make([]schedule.CalendarEvent, 0, len(raws))
			for _, raw := range raws {
				ev, err := schedule.Normalize(raw, adapter.Provider(), adapter.AccountID())
				if err != nil {
					e.log.Debug("skipping unnormalizable event",
						logging.Provider(adapter.Provider()),
						logging.Account(adapter.AccountID()),
						logging.Err(err))
					continue
				}
				events = append(events, ev)
			}
			outcomes[i] = accountOutcome{accountID: adapter.AccountID(), events: events}
		}()
	}
	wg.Wait()

	result := FetchResult{EventsByAccount: make(map[string][]schedule.CalendarEvent)}
	for _, o := range outcomes {
		if o.err != nil {
			e.log.Warn("account fetch failed, degrading to partial result",
				logging.Account(o.accountID), logging.Err(o.err))
			result.Partial = true
			result.FailedAccounts = append(result.FailedAccounts, o.accountID)
			continue
		}
		result.EventsByAccount[o.accountID] = o.events
	}
	sort.Strings(result.FailedAccounts)
	return result
}

// ownerBusy aggregates the owner's fetched events into merged busy
// intervals clipped to the window.
func (e *Engine) ownerBusy(f FetchResult, windowStart, windowEnd time.Time) []schedule.BusyInterval {
	busy := schedule.Aggregate(e.cfg.OwnerID, f.EventsByAccount)
	return schedule.ClipIntervals(busy, windowStart, windowEnd)
}
