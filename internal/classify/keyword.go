package classify

import (
	"context"
	"strings"
	"time"
)

// Keyword ladders. Delete and update are checked before schedule because
// "reschedule" contains "schedule"; schedule is checked before search because
// "find a time to meet" would otherwise match the search ladder.
var (
	scheduleWords = []string{"schedule", "find a time", "find time", "when can", "availability", "available", "free slot", "free time", "best time"}
	searchWords   = []string{"show", "list", "view", "get", "display", "what's", "whats", "find", "search", "look for", "do i have"}
	createWords   = []string{"create", "add", "book", "new", "set up", "setup"}
	updateWords   = []string{"update", "change", "modify", "edit", "reschedule", "move", "rename"}
	deleteWords   = []string{"delete", "remove", "cancel", "clear"}
)

// KeywordClassifier is a deterministic rule-based classifier. It serves as
// the local default and as the degradation target when an external backend
// is unreachable. Confidence is fixed below what an LLM-backed classifier
// would report so callers can tell the two apart.
type KeywordClassifier struct {
	// Zone anchors relative date expressions ("tomorrow"). Defaults to UTC.
	Zone *time.Location

	// Now returns the reference instant for relative dates. Defaults to
	// time.Now; tests inject a fixed clock.
	Now func() time.Time
}

// NewKeywordClassifier returns a classifier anchored to the given zone.
func NewKeywordClassifier(zone *time.Location) *KeywordClassifier {
	return &KeywordClassifier{Zone: zone}
}

const keywordConfidence = 0.7

// Classify maps the utterance to an intent by keyword ladder and extracts
// slot-filling parameters. It never fails and ignores history; follow-up
// interpretation is the router's job.
func (c *KeywordClassifier) Classify(_ context.Context, utterance string, _ []Turn) (Result, error) {
	lower := strings.ToLower(utterance)

	intent := IntentGeneral
	switch {
	case containsAny(lower, deleteWords):
		intent = IntentDelete
	case containsAny(lower, updateWords):
		intent = IntentUpdate
	case containsAny(lower, scheduleWords):
		intent = IntentSchedule
	case containsAny(lower, createWords):
		intent = IntentCreate
	case containsAny(lower, searchWords):
		intent = IntentSearch
	}

	zone := c.Zone
	if zone == nil {
		zone = time.UTC
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	return Result{
		Intent:     intent,
		Params:     ExtractParams(utterance, now().In(zone)),
		Confidence: keywordConfidence,
	}, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
