package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	calendar_v3 "google.golang.org/api/calendar/v3"

	"github.com/meetwise/meetwise/internal/logging"
	"github.com/meetwise/meetwise/internal/provider"
	"github.com/meetwise/meetwise/internal/provider/caldav"
	"github.com/meetwise/meetwise/internal/provider/google"
)

// buildAdapters constructs one calendar adapter per configured account.
//
// Google accounts are listed in GOOGLE_ACCOUNTS (comma-separated ids). Each
// account reads its OAuth token from GOOGLE_<ID>_TOKEN_FILE (a JSON
// oauth2.Token as written by the Google auth flow) and optionally
// GOOGLE_<ID>_CALENDAR_ID (default "primary"). Token refresh uses the shared
// GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET credentials.
//
// CalDAV accounts are listed in CALDAV_ACCOUNTS. Each account reads
// CALDAV_<ID>_URL, CALDAV_<ID>_USERNAME, CALDAV_<ID>_PASSWORD and
// CALDAV_<ID>_CALENDAR_PATH.
func buildAdapters(ctx context.Context, logger *slog.Logger) ([]provider.Adapter, error) {
	var adapters []provider.Adapter

	for _, accountID := range parseCommaSeparatedList(os.Getenv("GOOGLE_ACCOUNTS")) {
		adapter, err := buildGoogleAdapter(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("failed to configure Google account %q: %w", accountID, err)
		}
		adapters = append(adapters, adapter)
	}

	for _, accountID := range parseCommaSeparatedList(os.Getenv("CALDAV_ACCOUNTS")) {
		adapter, err := buildCalDAVAdapter(accountID, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to configure CalDAV account %q: %w", accountID, err)
		}
		adapters = append(adapters, adapter)
	}

	return adapters, nil
}

func buildGoogleAdapter(ctx context.Context, accountID string) (provider.Adapter, error) {
	tokenFile := accountEnv("GOOGLE", accountID, "TOKEN_FILE")
	if tokenFile == "" {
		return nil, fmt.Errorf("GOOGLE_%s_TOKEN_FILE is not set", envKey(accountID))
	}

	token, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		Scopes:       []string{calendar_v3.CalendarScope},
		Endpoint:     googleoauth.Endpoint,
	}

	calendarID := accountEnv("GOOGLE", accountID, "CALENDAR_ID")
	if calendarID == "" {
		calendarID = "primary"
	}

	return google.New(ctx, accountID, calendarID, oauthConfig.TokenSource(ctx, token))
}

func buildCalDAVAdapter(accountID string, logger *slog.Logger) (provider.Adapter, error) {
	endpoint := accountEnv("CALDAV", accountID, "URL")
	if endpoint == "" {
		return nil, fmt.Errorf("CALDAV_%s_URL is not set", envKey(accountID))
	}

	return caldav.New(endpoint,
		accountEnv("CALDAV", accountID, "USERNAME"),
		accountEnv("CALDAV", accountID, "PASSWORD"),
		accountID,
		accountEnv("CALDAV", accountID, "CALENDAR_PATH"),
		logging.NewSlogAdapter(logger).WithAccount("caldav", accountID))
}

// accountEnv reads a per-account environment variable such as
// GOOGLE_WORK_TOKEN_FILE for provider "GOOGLE", account "work".
func accountEnv(prefix, accountID, suffix string) string {
	return os.Getenv(fmt.Sprintf("%s_%s_%s", prefix, envKey(accountID), suffix))
}

// envKey maps an account id onto the character set allowed in an
// environment variable name.
func envKey(accountID string) string {
	key := strings.ToUpper(accountID)
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, ".", "_")
	return key
}

// tokenFromFile retrieves an OAuth token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}
