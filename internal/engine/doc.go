// Package engine implements the conversational scheduling engine: the
// intent-routing state machine, the per-session conversation context, and
// the handlers that answer scheduling requests against externally supplied
// provider adapters.
//
// The engine is transport-agnostic. A host process (MCP server, REPL, web
// handler) feeds it one utterance at a time via HandleMessage and renders
// the structured Reply it returns. Classification is delegated to an
// injected classify.Classifier; conversation contexts live behind the Store
// contract so hosts can persist or shard sessions.
//
// The router's transition logic is deterministic: given the same context,
// utterance, and classifier output, it always takes the same transition.
// Only the classifier itself may be nondeterministic.
package engine
