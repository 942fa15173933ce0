package caldav

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"github.com/meetwise/meetwise/internal/logging"
	"github.com/meetwise/meetwise/internal/provider"
)

// ProviderTag identifies this adapter in normalized events and logs.
const ProviderTag = "caldav"

// Adapter is a provider.Writer backed by one CalDAV calendar collection.
type Adapter struct {
	client       *caldav.Client
	accountID    string
	calendarPath string
	logger       logging.Logger
}

// New creates an adapter for one calendar collection. endpoint is the
// CalDAV server URL, calendarPath the collection path on that server.
// Credentials are optional; servers without auth take empty strings.
func New(endpoint, username, password, accountID, calendarPath string, logger logging.Logger) (*Adapter, error) {
	baseURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid CalDAV server URL: %w", err)
	}

	var httpClient webdav.HTTPClient = http.DefaultClient
	if username != "" && password != "" {
		httpClient = webdav.HTTPClientWithBasicAuth(httpClient, username, password)
	}

	client, err := caldav.NewClient(httpClient, baseURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create CalDAV client: %w", err)
	}

	if logger == nil {
		logger = logging.DefaultLogger()
	}

	return &Adapter{
		client:       client,
		accountID:    accountID,
		calendarPath: strings.TrimRight(calendarPath, "/"),
		logger:       logger,
	}, nil
}

// Provider implements provider.Adapter.
func (a *Adapter) Provider() string { return ProviderTag }

// AccountID implements provider.Adapter.
func (a *Adapter) AccountID() string { return a.accountID }

// FetchEvents implements provider.Adapter. It issues a calendar-query
// REPORT filtered to VEVENT components in the window.
func (a *Adapter) FetchEvents(ctx context.Context, windowStart, windowEnd time.Time) ([]provider.RawEvent, error) {
	query := &caldav.CalendarQuery{
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{{
				Name:  "VEVENT",
				Start: windowStart,
				End:   windowEnd,
			}},
		},
	}

	objects, err := a.client.QueryCalendar(ctx, a.calendarPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}

	var raws []provider.RawEvent
	for _, obj := range objects {
		for _, comp := range obj.Data.Component.Children {
			if comp.Name != "VEVENT" {
				continue
			}
			if strings.EqualFold(getTextProp(comp.Props, "STATUS"), "CANCELLED") {
				continue
			}
			raws = append(raws, toRawEvent(comp))
		}
	}

	a.logger.Debug("fetched caldav events",
		"account", a.accountID, "count", len(raws))
	return raws, nil
}

// CreateEvent implements provider.Writer. The event is stored as a new .ics
// resource named after its UID.
func (a *Adapter) CreateEvent(ctx context.Context, ev provider.RawEvent) (provider.RawEvent, error) {
	uid := fmt.Sprintf("meetwise-%d", time.Now().UnixNano())
	ev.ID = uid

	cal, err := toCalendarObject(ev)
	if err != nil {
		return provider.RawEvent{}, err
	}

	path := a.calendarPath + "/" + uid + ".ics"
	if _, err := a.client.PutCalendarObject(ctx, path, cal); err != nil {
		return provider.RawEvent{}, fmt.Errorf("failed to create event: %w", err)
	}
	return ev, nil
}

// UpdateEvent implements provider.Writer. CalDAV updates are full replace:
// the .ics resource is overwritten.
func (a *Adapter) UpdateEvent(ctx context.Context, ev provider.RawEvent) (provider.RawEvent, error) {
	if ev.ID == "" {
		return provider.RawEvent{}, fmt.Errorf("event id required for update")
	}

	cal, err := toCalendarObject(ev)
	if err != nil {
		return provider.RawEvent{}, err
	}

	path := a.calendarPath + "/" + ev.ID + ".ics"
	if _, err := a.client.PutCalendarObject(ctx, path, cal); err != nil {
		return provider.RawEvent{}, fmt.Errorf("failed to update event: %w", err)
	}
	return ev, nil
}

// DeleteEvent implements provider.Writer.
func (a *Adapter) DeleteEvent(ctx context.Context, eventID string) error {
	path := a.calendarPath + "/" + eventID + ".ics"
	if err := a.client.RemoveAll(ctx, path); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// toRawEvent extracts a provider-neutral record from a VEVENT component.
// DTSTART/DTEND values are converted between iCalendar basic format and the
// normalizer's layouts without resolving zones.
func toRawEvent(comp *ical.Component) provider.RawEvent {
	raw := provider.RawEvent{
		ID:          getTextProp(comp.Props, "UID"),
		Title:       getTextProp(comp.Props, "SUMMARY"),
		Location:    getTextProp(comp.Props, "LOCATION"),
		Description: getTextProp(comp.Props, "DESCRIPTION"),
	}

	if prop := comp.Props.Get("DTSTART"); prop != nil {
		raw.Start, raw.AllDay = convertTimestamp(prop.Value)
		raw.TimeZone = prop.Params.Get("TZID")
	}
	if prop := comp.Props.Get("DTEND"); prop != nil {
		raw.End, _ = convertTimestamp(prop.Value)
	}

	for _, prop := range comp.Props.Values("ATTENDEE") {
		email := strings.TrimPrefix(strings.ToLower(prop.Value), "mailto:")
		if email != "" {
			raw.Attendees = append(raw.Attendees, email)
		}
	}

	return raw
}

// convertTimestamp rewrites an iCalendar timestamp into the layouts the
// normalizer understands. Unrecognized values pass through untouched and
// fail normalization there.
func convertTimestamp(value string) (converted string, allDay bool) {
	if t, err := time.Parse("20060102", value); err == nil {
		return t.Format("2006-01-02"), true
	}
	if t, err := time.Parse("20060102T150405Z", value); err == nil {
		return t.UTC().Format(time.RFC3339), false
	}
	if t, err := time.Parse("20060102T150405", value); err == nil {
		// Local time; whether it resolves depends on the TZID parameter.
		return t.Format("2006-01-02T15:04:05"), false
	}
	return value, false
}

// toCalendarObject builds a single-event VCALENDAR for a PUT.
func toCalendarObject(ev provider.RawEvent) (*ical.Calendar, error) {
	start, err := time.Parse(time.RFC3339, ev.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid event start %q: %w", ev.Start, err)
	}
	end, err := time.Parse(time.RFC3339, ev.End)
	if err != nil {
		return nil, fmt.Errorf("invalid event end %q: %w", ev.End, err)
	}

	event := ical.NewEvent()
	event.Component.Props.SetText("UID", ev.ID)
	event.Component.Props.SetText("SUMMARY", ev.Title)
	if ev.Description != "" {
		event.Component.Props.SetText("DESCRIPTION", ev.Description)
	}
	if ev.Location != "" {
		event.Component.Props.SetText("LOCATION", ev.Location)
	}
	event.Component.Props.SetDateTime("DTSTART", start.UTC())
	event.Component.Props.SetDateTime("DTEND", end.UTC())
	event.Component.Props.SetDateTime("DTSTAMP", time.Now().UTC())
	event.Component.Props.SetText("STATUS", "CONFIRMED")
	for _, email := range ev.Attendees {
		event.Component.Props.Add(&ical.Prop{
			Name:  "ATTENDEE",
			Value: "mailto:" + email,
		})
	}

	cal := ical.NewCalendar()
	cal.Component.Props.SetText("PRODID", "-//meetwise//calendar//EN")
	cal.Component.Props.SetText("VERSION", "2.0")
	cal.Component.Children = append(cal.Component.Children, event.Component)
	return cal, nil
}

// getTextProp reads a text property, returning "" when absent.
func getTextProp(props ical.Props, name string) string {
	prop := props.Get(name)
	if prop == nil {
		return ""
	}
	return prop.Value
}
