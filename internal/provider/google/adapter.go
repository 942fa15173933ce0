package google

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/meetwise/meetwise/internal/provider"
)

// ProviderTag identifies this adapter in normalized events and logs.
const ProviderTag = "google"

// Adapter is a provider.Writer backed by one Google account's calendar.
type Adapter struct {
	svc        *calendar.Service
	accountID  string
	calendarID string
}

// New creates an adapter for the given account. calendarID is usually
// "primary"; tokenSource supplies OAuth2 credentials.
func New(ctx context.Context, accountID, calendarID string, tokenSource oauth2.TokenSource) (*Adapter, error) {
	if tokenSource == nil {
		return nil, fmt.Errorf("token source cannot be nil")
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	client := oauth2.NewClient(ctx, tokenSource)

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{ForceAttemptHTTP2: false}
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Adapter{svc: svc, accountID: accountID, calendarID: calendarID}, nil
}

// Provider implements provider.Adapter.
func (a *Adapter) Provider() string { return ProviderTag }

// AccountID implements provider.Adapter.
func (a *Adapter) AccountID() string { return a.accountID }

// FetchEvents implements provider.Adapter. Recurring events are expanded to
// single instances; cancelled instances are skipped.
func (a *Adapter) FetchEvents(ctx context.Context, windowStart, windowEnd time.Time) ([]provider.RawEvent, error) {
	events, err := a.svc.Events.List(a.calendarID).
		TimeMin(windowStart.Format(time.RFC3339)).
		TimeMax(windowEnd.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	raws := make([]provider.RawEvent, 0, len(events.Items))
	for _, item := range events.Items {
		if item.Status == "cancelled" {
			continue
		}
		raws = append(raws, toRawEvent(item))
	}
	return raws, nil
}

// CreateEvent implements provider.Writer.
func (a *Adapter) CreateEvent(ctx context.Context, ev provider.RawEvent) (provider.RawEvent, error) {
	created, err := a.svc.Events.Insert(a.calendarID, toGoogleEvent(ev)).Context(ctx).Do()
	if err != nil {
		return provider.RawEvent{}, fmt.Errorf("failed to create event: %w", err)
	}
	return toRawEvent(created), nil
}

// UpdateEvent implements provider.Writer. The existing record is fetched
// first and only the provided fields are replaced, matching the API's
// full-update semantics.
func (a *Adapter) UpdateEvent(ctx context.Context, ev provider.RawEvent) (provider.RawEvent, error) {
	existing, err := a.svc.Events.Get(a.calendarID, ev.ID).Context(ctx).Do()
	if err != nil {
		return provider.RawEvent{}, fmt.Errorf("failed to get existing event: %w", err)
	}

	if ev.Title != "" {
		existing.Summary = ev.Title
	}
	if ev.Description != "" {
		existing.Description = ev.Description
	}
	if ev.Location != "" {
		existing.Location = ev.Location
	}
	if ev.Start != "" {
		existing.Start = toEventDateTime(ev.Start, ev.TimeZone, ev.AllDay)
	}
	if ev.End != "" {
		existing.End = toEventDateTime(ev.End, ev.TimeZone, ev.AllDay)
	}
	if len(ev.Attendees) > 0 {
		existing.Attendees = toGoogleAttendees(ev.Attendees)
	}

	updated, err := a.svc.Events.Update(a.calendarID, ev.ID, existing).Context(ctx).Do()
	if err != nil {
		return provider.RawEvent{}, fmt.Errorf("failed to update event: %w", err)
	}
	return toRawEvent(updated), nil
}

// DeleteEvent implements provider.Writer.
func (a *Adapter) DeleteEvent(ctx context.Context, eventID string) error {
	if err := a.svc.Events.Delete(a.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// toRawEvent converts a Google Calendar event into the provider-neutral raw
// record. Timestamps are passed through verbatim; the normalizer decides
// whether they resolve.
func toRawEvent(event *calendar.Event) provider.RawEvent {
	if event == nil {
		return provider.RawEvent{}
	}

	raw := provider.RawEvent{
		ID:          event.Id,
		Title:       event.Summary,
		Location:    event.Location,
		Description: event.Description,
	}

	if event.Start != nil {
		if event.Start.DateTime != "" {
			raw.Start = event.Start.DateTime
			raw.TimeZone = event.Start.TimeZone
		} else if event.Start.Date != "" {
			raw.Start = event.Start.Date
			raw.AllDay = true
			raw.TimeZone = event.Start.TimeZone
		}
	}
	if event.End != nil {
		if event.End.DateTime != "" {
			raw.End = event.End.DateTime
		} else if event.End.Date != "" {
			raw.End = event.End.Date
		}
	}

	for _, att := range event.Attendees {
		if att.Email == "" {
			continue
		}
		raw.Attendees = append(raw.Attendees, strings.ToLower(att.Email))
	}

	return raw
}

// toGoogleEvent converts a raw record into the API's event shape for
// insertion.
func toGoogleEvent(ev provider.RawEvent) *calendar.Event {
	out := &calendar.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       toEventDateTime(ev.Start, ev.TimeZone, ev.AllDay),
		End:         toEventDateTime(ev.End, ev.TimeZone, ev.AllDay),
	}
	if len(ev.Attendees) > 0 {
		out.Attendees = toGoogleAttendees(ev.Attendees)
	}
	return out
}

func toEventDateTime(value, timeZone string, allDay bool) *calendar.EventDateTime {
	if allDay {
		return &calendar.EventDateTime{Date: value}
	}
	dt := &calendar.EventDateTime{DateTime: value}
	if timeZone != "" {
		dt.TimeZone = timeZone
	}
	return dt
}

func toGoogleAttendees(emails []string) []*calendar.EventAttendee {
	attendees := make([]*calendar.EventAttendee, 0, len(emails))
	for _, email := range emails {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}
	return attendees
}
