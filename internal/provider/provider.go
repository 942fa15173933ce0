package provider

import (
	"context"
	"time"
)

// RawEvent is a provider-native event record before normalization.
// Timestamps are carried as strings exactly as the provider reported them,
// together with any timezone identifier the provider supplied. Interpretation
// is the normalizer's job; adapters must not guess zones.
type RawEvent struct {
	ID          string
	Title       string
	Location    string
	Description string

	// Start and End are either RFC3339 timestamps (with offset), naive
	// local timestamps ("2006-01-02T15:04:05"), or all-day dates
	// ("2006-01-02").
	Start string
	End   string

	// TimeZone is the IANA zone the naive timestamps are local to, when the
	// provider reported one. Empty for offset-qualified timestamps.
	TimeZone string

	AllDay    bool
	Attendees []string
}

// Adapter fetches raw events for one connected account. Implementations are
// expected to be safe for concurrent use; the engine issues fetches for
// different accounts in parallel, each under its own timeout.
type Adapter interface {
	// Provider returns the provider tag ("google", "caldav", ...).
	Provider() string

	// AccountID returns the identifier of the connected account.
	AccountID() string

	// FetchEvents returns the account's raw events overlapping
	// [windowStart, windowEnd). Errors are wrapped into
	// schedule.ProviderError by the caller.
	FetchEvents(ctx context.Context, windowStart, windowEnd time.Time) ([]RawEvent, error)
}

// Writer is implemented by adapters whose backend supports mutation. Create,
// update, and delete never mutate an event in place on the engine side; the
// adapter receives a complete replacement record and returns the stored
// result as the provider reported it back.
type Writer interface {
	Adapter

	CreateEvent(ctx context.Context, ev RawEvent) (RawEvent, error)
	UpdateEvent(ctx context.Context, ev RawEvent) (RawEvent, error)
	DeleteEvent(ctx context.Context, eventID string) error
}
