package schedule

import (
	"errors"
	"fmt"
	"time"
)

// ErrAmbiguousTime is returned by Normalize when a record carries no usable
// timezone or offset information. The engine never guesses a zone; callers
// decide the fallback policy.
var ErrAmbiguousTime = errors.New("ambiguous time: record has no timezone information")

// InvalidDurationError reports a non-positive or unreasonably large meeting
// duration request.
type InvalidDurationError struct {
	Duration time.Duration
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid meeting duration %s", e.Duration)
}

// ProviderError wraps a per-account fetch failure. It is non-fatal: the
// affected account degrades to "unknown" during aggregation and the result
// is annotated as partial.
type ProviderError struct {
	Provider  string
	AccountID string
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s account %s: %v", e.Provider, e.AccountID, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NormalizationError reports why a single raw record could not be converted
// into a CalendarEvent. It identifies the offending record so callers can
// skip it and continue.
type NormalizationError struct {
	Provider  string
	AccountID string
	RawID     string
	Err       error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize event %q from %s/%s: %v", e.RawID, e.Provider, e.AccountID, e.Err)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}
