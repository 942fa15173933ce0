// Package cmd implements the command-line interface for meetwise.
//
// This package provides the following commands:
//   - chat: Run a local conversational scheduling session against your accounts
//   - serve: Start the MCP server to provide scheduling tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The chat command is the default command when no subcommand is specified.
package cmd
