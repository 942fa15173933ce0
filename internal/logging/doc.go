// Package logging provides structured logging utilities for the meetwise application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (email anonymization)
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "engine.handle_message")
//	logger.Info("routing utterance",
//	    logging.Session(sessionID),
//	    logging.Intent("schedule"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("user operation",
//	    logging.UserHash(email))
//
// # Security Considerations
//
// This package is designed with security in mind:
//   - Attendee emails are hashed to prevent PII leakage while allowing correlation
//   - Raw utterance text is never logged at info level or above
package logging
