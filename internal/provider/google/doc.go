// Package google adapts the Google Calendar API to the provider.Adapter
// contract. It supports both fetching and mutation, making it the writable
// backend for event create, update, and delete.
//
// Authentication is injected as an oauth2.TokenSource; token acquisition
// and storage are the host's concern.
package google
