// Package schedule_tools provides MCP tools for conversational scheduling:
// a chat entry point that drives the full conversation engine, plus direct
// tools for slot search, conflict checking, and event listing.
package schedule_tools
