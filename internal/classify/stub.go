package classify

import "context"

// Stub is a scripted Classifier for tests. Each call consumes the next
// queued result; when the queue is empty it falls back to Default, and when
// Err is set every call fails with it. The router's transition logic is
// specified to be deterministic and testable with exactly this kind of
// injection.
type Stub struct {
	Queue   []Result
	Default Result
	Err     error

	// Calls records every utterance seen, in order.
	Calls []string
}

// Classify implements Classifier.
func (s *Stub) Classify(_ context.Context, utterance string, _ []Turn) (Result, error) {
	s.Calls = append(s.Calls, utterance)
	if s.Err != nil {
		return Result{}, s.Err
	}
	if len(s.Queue) > 0 {
		r := s.Queue[0]
		s.Queue = s.Queue[1:]
		return r, nil
	}
	return s.Default, nil
}
