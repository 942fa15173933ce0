package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meetwise/meetwise/internal/classify"
	"github.com/meetwise/meetwise/internal/provider"
)

// Monday, March 10, 2025, 08:00 UTC.
func testClock() time.Time {
	return time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
}

func at(dayOffset, hour, min int) time.Time {
	base := testClock()
	return time.Date(base.Year(), base.Month(), base.Day()+dayOffset, hour, min, 0, 0, time.UTC)
}

func rawEvent(id, title string, start, end time.Time) provider.RawEvent {
	return provider.RawEvent{
		ID:    id,
		Title: title,
		Start: start.Format(time.RFC3339),
		End:   end.Format(time.RFC3339),
	}
}

func rawEvents(id, title string, start, end time.Time) []provider.RawEvent {
	return []provider.RawEvent{rawEvent(id, title, start, end)}
}

// fakeAdapter is a scripted provider adapter. It implements provider.Writer
// and records every mutation.
type fakeAdapter struct {
	providerTag string
	account     string

	events   []provider.RawEvent
	fetchErr error

	// hang makes FetchEvents block until the fetch context is cancelled,
	// simulating a provider that never answers.
	hang bool

	createErr error
	updateErr error
	deleteErr error

	mu      sync.Mutex
	created []provider.RawEvent
	updated []provider.RawEvent
	deleted []string
}

func (f *fakeAdapter) Provider() string  { return f.providerTag }
func (f *fakeAdapter) AccountID() string { return f.account }

func (f *fakeAdapter) FetchEvents(ctx context.Context, _, _ time.Time) ([]provider.RawEvent, error) {
	if f.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.events, nil
}

func (f *fakeAdapter) CreateEvent(_ context.Context, ev provider.RawEvent) (provider.RawEvent, error) {
	if f.createErr != nil {
		return provider.RawEvent{}, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ev.ID = fmt.Sprintf("created-%d", len(f.created)+1)
	f.created = append(f.created, ev)
	return ev, nil
}

func (f *fakeAdapter) UpdateEvent(_ context.Context, ev provider.RawEvent) (provider.RawEvent, error) {
	if f.updateErr != nil {
		return provider.RawEvent{}, f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, ev)
	return ev, nil
}

func (f *fakeAdapter) DeleteEvent(_ context.Context, eventID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, eventID)
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BusinessHoursOnly = false
	cfg.FetchTimeout = 100 * time.Millisecond
	return cfg
}

func newTestEngine(t *testing.T, cfg Config, classifier classify.Classifier, adapters ...provider.Adapter) (*Engine, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := New(cfg, classifier, store, adapters, logger, WithClock(testClock))
	require.NoError(t, err)
	return e, store
}
