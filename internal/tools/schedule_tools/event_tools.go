package schedule_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meetwise/meetwise/internal/server"
	"github.com/meetwise/meetwise/internal/tools/common"
)

// RegisterEventTools registers event listing tools with the MCP server
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listEventsTool := mcp.NewTool("schedule_list_events",
		mcp.WithDescription("List normalized events from all connected calendar accounts over a time window, sorted by start time"),
		mcp.WithString("timeMin",
			mcp.Description("Start of the window (RFC3339). Defaults to now."),
		),
		mcp.WithString("timeMax",
			mcp.Description("End of the window (RFC3339). Defaults to the configured search window after timeMin."),
		),
	)

	s.AddTool(listEventsTool, common.InstrumentedToolHandlerWithOperation(
		"schedule_list_events", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	return nil
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	windowStart, windowEnd, err := parseWindow(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	events, fetched := sc.Engine().ListEvents(ctx, windowStart, windowEnd)

	result := fmt.Sprintf("Found %d event(s) between %s and %s:\n\n",
		len(events), windowStart.Format(timeFormat), windowEnd.Format(timeFormat))
	for i, ev := range events {
		result += fmt.Sprintf("%d. %s\n", i+1, ev.Title)
		result += fmt.Sprintf("   %s to %s\n", ev.Start.Format(timeFormat), ev.End.Format("15:04"))
		result += fmt.Sprintf("   Account: %s (%s)\n", ev.AccountID, ev.Provider)
		if ev.Location != "" {
			result += fmt.Sprintf("   Location: %s\n", ev.Location)
		}
		if len(ev.Attendees) > 0 {
			result += fmt.Sprintf("   Attendees: %s\n", strings.Join(ev.Attendees, ", "))
		}
		result += "\n"
	}
	if fetched.Partial {
		result += fmt.Sprintf("Note: some accounts could not be reached: %s.\n",
			strings.Join(fetched.FailedAccounts, ", "))
	}

	return mcp.NewToolResultText(result), nil
}
