package cmd

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestEnvKey(t *testing.T) {
	tests := []struct {
		accountID string
		expected  string
	}{
		{"work", "WORK"},
		{"Work", "WORK"},
		{"my-team", "MY_TEAM"},
		{"alice.personal", "ALICE_PERSONAL"},
	}

	for _, tt := range tests {
		if got := envKey(tt.accountID); got != tt.expected {
			t.Errorf("envKey(%q) = %q, want %q", tt.accountID, got, tt.expected)
		}
	}
}

func TestAccountEnv(t *testing.T) {
	t.Setenv("GOOGLE_WORK_CALENDAR_ID", "team@example.com")

	if got := accountEnv("GOOGLE", "work", "CALENDAR_ID"); got != "team@example.com" {
		t.Errorf("expected calendar id from environment, got %q", got)
	}
	if got := accountEnv("GOOGLE", "personal", "CALENDAR_ID"); got != "" {
		t.Errorf("expected empty value for unconfigured account, got %q", got)
	}
}

func TestBuildAdapters_NoAccounts(t *testing.T) {
	t.Setenv("GOOGLE_ACCOUNTS", "")
	t.Setenv("CALDAV_ACCOUNTS", "")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	adapters, err := buildAdapters(context.Background(), logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(adapters) != 0 {
		t.Errorf("expected no adapters, got %d", len(adapters))
	}
}

func TestBuildAdapters_GoogleMissingTokenFile(t *testing.T) {
	t.Setenv("GOOGLE_ACCOUNTS", "work")
	t.Setenv("GOOGLE_WORK_TOKEN_FILE", "")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := buildAdapters(context.Background(), logger); err == nil {
		t.Error("expected error for missing token file")
	}
}

func TestBuildAdapters_CalDAVMissingURL(t *testing.T) {
	t.Setenv("GOOGLE_ACCOUNTS", "")
	t.Setenv("CALDAV_ACCOUNTS", "icloud")
	t.Setenv("CALDAV_ICLOUD_URL", "")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := buildAdapters(context.Background(), logger); err == nil {
		t.Error("expected error for missing CalDAV URL")
	}
}
