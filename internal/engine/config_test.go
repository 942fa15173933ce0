package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.Granularity)
	assert.Equal(t, 9, cfg.BusinessStartHour)
	assert.Equal(t, 17, cfg.BusinessEndHour)
	assert.Equal(t, 2, cfg.ClarificationLimit)
	assert.Equal(t, "UTC", cfg.ReferenceZone)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("MEETWISE_SLOT_GRANULARITY", "30m")
	t.Setenv("MEETWISE_REFERENCE_ZONE", "Europe/Berlin")
	t.Setenv("MEETWISE_CLARIFICATION_LIMIT", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.Granularity)
	assert.Equal(t, "Europe/Berlin", cfg.ReferenceZone)
	assert.Equal(t, 3, cfg.ClarificationLimit)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero granularity", func(c *Config) { c.Granularity = 0 }},
		{"inverted business hours", func(c *Config) { c.BusinessStartHour = 18; c.BusinessEndHour = 9 }},
		{"negative clarification limit", func(c *Config) { c.ClarificationLimit = -1 }},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }},
		{"bogus zone", func(c *Config) { c.ReferenceZone = "Nowhere/Atlantis" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}
