package schedule_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meetwise/meetwise/internal/server"
)

// RegisterScheduleTools registers all scheduling tools with the MCP server
func RegisterScheduleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Register the conversational entry point
	if err := RegisterChatTools(s, sc); err != nil {
		return fmt.Errorf("failed to register chat tools: %w", err)
	}

	// Register direct availability tools
	if err := RegisterAvailabilityTools(s, sc); err != nil {
		return fmt.Errorf("failed to register availability tools: %w", err)
	}

	// Register event listing tools
	if err := RegisterEventTools(s, sc); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	return nil
}
