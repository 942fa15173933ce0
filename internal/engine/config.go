package engine

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the engine's runtime tuning, parsed from the environment.
// Every field has a default so a zero-configuration deployment works.
type Config struct {
	// OwnerID identifies the calendar owner as a participant in slot
	// searches across their own connected accounts.
	OwnerID string `env:"MEETWISE_OWNER_ID" envDefault:"me"`

	// Granularity is the slot finder's candidate step.
	Granularity time.Duration `env:"MEETWISE_SLOT_GRANULARITY" envDefault:"15m"`

	// BusinessHoursOnly restricts slot searches to the business-hours mask.
	BusinessHoursOnly bool `env:"MEETWISE_BUSINESS_HOURS_ONLY" envDefault:"true"`

	BusinessStartHour int `env:"MEETWISE_BUSINESS_START_HOUR" envDefault:"9"`
	BusinessEndHour   int `env:"MEETWISE_BUSINESS_END_HOUR" envDefault:"17"`

	// ReferenceZone is the IANA zone business hours and relative date
	// expressions are evaluated in.
	ReferenceZone string `env:"MEETWISE_REFERENCE_ZONE" envDefault:"UTC"`

	// MaxResults caps the number of candidate slots returned per search.
	MaxResults int `env:"MEETWISE_MAX_RESULTS" envDefault:"10"`

	// SearchWindow is how far ahead a search looks when the utterance does
	// not pin down a window.
	SearchWindow time.Duration `env:"MEETWISE_SEARCH_WINDOW" envDefault:"168h"`

	// ClarificationLimit bounds how many clarification rounds the router
	// asks before giving up on an incomplete request.
	ClarificationLimit int `env:"MEETWISE_CLARIFICATION_LIMIT" envDefault:"2"`

	// FetchTimeout is the independent deadline applied to each per-account
	// event fetch.
	FetchTimeout time.Duration `env:"MEETWISE_FETCH_TIMEOUT" envDefault:"10s"`

	// SessionTTL is how long an idle conversation context survives before
	// the session manager may evict it.
	SessionTTL time.Duration `env:"MEETWISE_SESSION_TTL" envDefault:"30m"`
}

// LoadConfig parses the engine configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse engine config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig returns the built-in defaults without consulting the
// environment. Used by tests and the local REPL.
func DefaultConfig() Config {
	return Config{
		OwnerID:            "me",
		Granularity:        15 * time.Minute,
		BusinessHoursOnly:  true,
		BusinessStartHour:  9,
		BusinessEndHour:    17,
		ReferenceZone:      "UTC",
		MaxResults:         10,
		SearchWindow:       7 * 24 * time.Hour,
		ClarificationLimit: 2,
		FetchTimeout:       10 * time.Second,
		SessionTTL:         30 * time.Minute,
	}
}

// Validate rejects configurations the engine cannot operate under.
func (c Config) Validate() error {
	if c.Granularity <= 0 {
		return fmt.Errorf("slot granularity must be positive, got %s", c.Granularity)
	}
	if c.BusinessStartHour < 0 || c.BusinessEndHour > 24 || c.BusinessStartHour >= c.BusinessEndHour {
		return fmt.Errorf("invalid business hours %d..%d", c.BusinessStartHour, c.BusinessEndHour)
	}
	if c.ClarificationLimit < 0 {
		return fmt.Errorf("clarification limit must be non-negative, got %d", c.ClarificationLimit)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	if _, err := time.LoadLocation(c.ReferenceZone); err != nil {
		return fmt.Errorf("invalid reference zone %q: %w", c.ReferenceZone, err)
	}
	return nil
}
