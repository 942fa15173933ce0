package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetwise/meetwise/internal/classify"
	"github.com/meetwise/meetwise/internal/provider"
)

func TestFetchEvents_SlowAccountTimesOutIndependently(t *testing.T) {
	fast := &fakeAdapter{
		providerTag: "google", account: "work",
		events: rawEvents("ev-1", "Standup", at(1, 9, 0), at(1, 9, 15)),
	}
	slow := &fakeAdapter{providerTag: "caldav", account: "personal", hang: true}

	cfg := testConfig()
	cfg.FetchTimeout = 20 * time.Millisecond
	e, _ := newTestEngine(t, cfg, &classify.Stub{}, fast, slow)

	start := time.Now()
	result := e.fetchEvents(context.Background(), at(0, 0, 0), at(7, 0, 0))
	elapsed := time.Since(start)

	assert.True(t, result.Partial)
	assert.Equal(t, []string{"personal"}, result.FailedAccounts)
	assert.Len(t, result.EventsByAccount["work"], 1)
	assert.Less(t, elapsed, 2*time.Second, "hanging account must not block the fan-out")
}

func TestFetchEvents_BadRecordSkippedNotFatal(t *testing.T) {
	adapter := &fakeAdapter{
		providerTag: "google", account: "work",
		events: []provider.RawEvent{
			// Naive timestamp with no zone: normalization must reject it.
			{ID: "bad", Title: "Nowhere", Start: "2025-03-11T09:00:00", End: "2025-03-11T10:00:00"},
			rawEvent("good", "Standup", at(1, 9, 0), at(1, 9, 15)),
		},
	}
	e, _ := newTestEngine(t, testConfig(), &classify.Stub{}, adapter)

	result := e.fetchEvents(context.Background(), at(0, 0, 0), at(7, 0, 0))
	assert.False(t, result.Partial, "a skipped record does not degrade the account")
	require.Len(t, result.EventsByAccount["work"], 1)
	assert.Equal(t, "good", result.EventsByAccount["work"][0].ID)
}

func TestFetchEvents_FlattenIsDeterministic(t *testing.T) {
	a := &fakeAdapter{
		providerTag: "google", account: "alpha",
		events: rawEvents("ev-a", "Same time A", at(1, 9, 0), at(1, 10, 0)),
	}
	b := &fakeAdapter{
		providerTag: "caldav", account: "beta",
		events: rawEvents("ev-b", "Same time B", at(1, 9, 0), at(1, 10, 0)),
	}
	e, _ := newTestEngine(t, testConfig(), &classify.Stub{}, b, a)

	for i := 0; i < 5; i++ {
		events := e.fetchEvents(context.Background(), at(0, 0, 0), at(7, 0, 0)).Events()
		require.Len(t, events, 2)
		assert.Equal(t, "alpha", events[0].AccountID, "ties broken by account id")
		assert.Equal(t, "beta", events[1].AccountID)
	}
}

func TestOwnerBusy_MergesAcrossAccounts(t *testing.T) {
	// The same physical meeting appears in two accounts with overlapping
	// times; aggregation merges them into one busy interval.
	work := &fakeAdapter{
		providerTag: "google", account: "work",
		events: rawEvents("ev-1", "All hands", at(1, 9, 0), at(1, 10, 30)),
	}
	personal := &fakeAdapter{
		providerTag: "caldav", account: "personal",
		events: rawEvents("ev-2", "All hands", at(1, 10, 0), at(1, 11, 0)),
	}
	e, _ := newTestEngine(t, testConfig(), &classify.Stub{}, work, personal)

	fetched := e.fetchEvents(context.Background(), at(0, 0, 0), at(7, 0, 0))
	busy := e.ownerBusy(fetched, at(0, 0, 0), at(7, 0, 0))
	require.Len(t, busy, 1)
	assert.True(t, busy[0].Start.Equal(at(1, 9, 0)))
	assert.True(t, busy[0].End.Equal(at(1, 11, 0)))
}
