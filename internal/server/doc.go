// Package server provides the MCP server context, session management,
// and operational HTTP endpoints for the meetwise application.
//
// # Key Components
//
// ServerContext ties the scheduling engine to the transport. Its
// HandleMessage method is the single entry point for conversation turns:
// it serializes overlapping turns for the same session while letting
// distinct sessions run concurrently.
//
// SessionManager mints session IDs, resolves them from HTTP requests via
// the Authorization header, and evicts conversation state that has been
// idle past the configured TTL.
//
// MetricsServer exposes Prometheus metrics on a dedicated port, keeping
// operational data off the main transport. HealthChecker provides
// /healthz and /readyz handlers for Kubernetes probes.
package server
