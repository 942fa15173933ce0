package engine

import (
	"fmt"
	"strings"

	"github.com/meetwise/meetwise/internal/classify"
)

// IncompleteRequestError reports that an intent cannot be dispatched because
// required parameters are missing. It drives the transition into
// AwaitingClarification and is never surfaced to the end user as a failure.
type IncompleteRequestError struct {
	Intent  classify.Intent
	Missing []string
}

func (e *IncompleteRequestError) Error() string {
	return fmt.Sprintf("incomplete %s request: missing %s", e.Intent, strings.Join(e.Missing, ", "))
}
