// Package caldav adapts a CalDAV calendar collection to the
// provider.Adapter contract using go-webdav's CalDAV client and go-ical for
// the wire format.
//
// Timestamps are carried out of iCalendar verbatim, including TZID
// parameters; floating times without zone information are passed through so
// the normalizer can reject them instead of the adapter guessing a zone.
package caldav
