// Package classify defines the intent classification contract consumed by
// the conversation engine, plus a deterministic keyword classifier used both
// as the degradation path when an external classifier is unavailable and as
// a self-contained default for local use.
//
// Classification is a capability, not a dependency: any conversational
// backend can sit behind the Classifier interface, and the engine's routing
// logic stays unit-testable with the Stub implementation.
package classify
