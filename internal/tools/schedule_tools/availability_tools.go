package schedule_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meetwise/meetwise/internal/server"
	"github.com/meetwise/meetwise/internal/tools/common"
)

// RegisterAvailabilityTools registers slot search and conflict tools with the MCP server
func RegisterAvailabilityTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Find slots tool
	findSlotsTool := mcp.NewTool("schedule_find_slots",
		mcp.WithDescription("Find candidate meeting slots across all connected calendar accounts, ranked by availability"),
		mcp.WithNumber("durationMinutes",
			mcp.Required(),
			mcp.Description("Meeting duration in minutes"),
		),
		mcp.WithString("attendees",
			mcp.Description("Comma-separated list of attendee email addresses"),
		),
		mcp.WithString("timeMin",
			mcp.Description("Start of the search window (RFC3339, e.g. '2025-01-01T09:00:00Z'). Defaults to now."),
		),
		mcp.WithString("timeMax",
			mcp.Description("End of the search window (RFC3339). Defaults to the configured search window after timeMin."),
		),
	)

	s.AddTool(findSlotsTool, common.InstrumentedToolHandlerWithOperation(
		"schedule_find_slots", "search", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindSlots(ctx, request, sc)
		}))

	// Next available tool
	nextAvailableTool := mcp.NewTool("schedule_next_available",
		mcp.WithDescription("Find the earliest slot where every participant is free"),
		mcp.WithNumber("durationMinutes",
			mcp.Required(),
			mcp.Description("Meeting duration in minutes"),
		),
		mcp.WithString("timeMin",
			mcp.Description("Start of the search window (RFC3339). Defaults to now."),
		),
		mcp.WithString("timeMax",
			mcp.Description("End of the search window (RFC3339). Defaults to the configured search window after timeMin."),
		),
	)

	s.AddTool(nextAvailableTool, common.InstrumentedToolHandlerWithOperation(
		"schedule_next_available", "search", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleNextAvailable(ctx, request, sc)
		}))

	// Check conflicts tool
	checkConflictsTool := mcp.NewTool("schedule_check_conflicts",
		mcp.WithDescription("Check a proposed time range against the owner's merged busy intervals"),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Proposed start time (RFC3339)"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Proposed end time (RFC3339)"),
		),
	)

	s.AddTool(checkConflictsTool, common.InstrumentedToolHandlerWithOperation(
		"schedule_check_conflicts", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCheckConflicts(ctx, request, sc)
		}))

	return nil
}

// parseWindow reads optional timeMin/timeMax arguments, falling back to
// [now, now+SearchWindow).
func parseWindow(args map[string]interface{}, sc *server.ServerContext) (time.Time, time.Time, error) {
	now := time.Now()
	windowStart := now
	if s, ok := args["timeMin"].(string); ok && s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid timeMin format: %w", err)
		}
		windowStart = t
	}

	windowEnd := windowStart.Add(sc.Engine().Config().SearchWindow)
	if s, ok := args["timeMax"].(string); ok && s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid timeMax format: %w", err)
		}
		windowEnd = t
	}

	if !windowEnd.After(windowStart) {
		return time.Time{}, time.Time{}, fmt.Errorf("timeMax must be after timeMin")
	}
	return windowStart, windowEnd, nil
}

func parseDuration(args map[string]interface{}) (time.Duration, error) {
	durationMinutes, ok := args["durationMinutes"].(float64)
	if !ok || durationMinutes <= 0 {
		return 0, fmt.Errorf("durationMinutes is required and must be positive")
	}
	return time.Duration(durationMinutes) * time.Minute, nil
}

func handleFindSlots(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	duration, err := parseDuration(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	windowStart, windowEnd, err := parseWindow(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var attendees []string
	if attendeesStr, ok := args["attendees"].(string); ok && attendeesStr != "" {
		for _, a := range strings.Split(attendeesStr, ",") {
			attendees = append(attendees, strings.TrimSpace(a))
		}
	}

	slots, fetched, err := sc.Engine().FindSlots(ctx, attendees, duration, windowStart, windowEnd)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to find slots: %v", err)), nil
	}

	if len(slots) == 0 {
		return mcp.NewToolResultText("No available time slots found for the specified criteria"), nil
	}

	result := fmt.Sprintf("Found %d candidate slot(s) for a %s meeting, best first:\n\n", len(slots), duration)
	for i, slot := range slots {
		result += fmt.Sprintf("%d. %s to %s", i+1,
			slot.Start.Format(timeFormat), slot.End.Format("15:04"))
		if slot.Perfect() {
			result += " - everyone is free\n"
		} else {
			result += fmt.Sprintf(" - %d/%d available (unavailable: %s)\n",
				slot.AvailableCount, slot.TotalCount, strings.Join(slot.Unavailable, ", "))
		}
	}
	if fetched.Partial {
		result += fmt.Sprintf("\nNote: some accounts could not be reached: %s. Results are best-effort.\n",
			strings.Join(fetched.FailedAccounts, ", "))
	}

	return mcp.NewToolResultText(result), nil
}

func handleNextAvailable(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	duration, err := parseDuration(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	windowStart, windowEnd, err := parseWindow(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slot, ok, err := sc.Engine().NextAvailable(ctx, duration, windowStart, windowEnd)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to find next available slot: %v", err)), nil
	}
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("No free %s slot found between %s and %s",
			duration, windowStart.Format(timeFormat), windowEnd.Format(timeFormat))), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Next available %s slot: %s to %s",
		duration, slot.Start.Format(timeFormat), slot.End.Format("15:04"))), nil
}

func handleCheckConflicts(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	startStr, ok := args["start"].(string)
	if !ok || startStr == "" {
		return mcp.NewToolResultError("start is required"), nil
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid start format: %v", err)), nil
	}

	endStr, ok := args["end"].(string)
	if !ok || endStr == "" {
		return mcp.NewToolResultError("end is required"), nil
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid end format: %v", err)), nil
	}
	if !end.After(start) {
		return mcp.NewToolResultError("end must be after start"), nil
	}

	conflicts, fetched := sc.Engine().CheckConflicts(ctx, start, end)

	var result string
	if len(conflicts) == 0 {
		result = fmt.Sprintf("No conflicts: %s to %s is free.\n",
			start.Format(timeFormat), end.Format("15:04"))
	} else {
		result = fmt.Sprintf("Found %d conflict(s) for %s to %s:\n\n",
			len(conflicts), start.Format(timeFormat), end.Format("15:04"))
		for i, c := range conflicts {
			result += fmt.Sprintf("%d. %s to %s\n", i+1,
				c.Start.Format(timeFormat), c.End.Format("15:04"))
		}
	}
	if fetched.Partial {
		result += fmt.Sprintf("\nNote: some accounts could not be reached: %s. The check covers the rest.\n",
			strings.Join(fetched.FailedAccounts, ", "))
	}

	return mcp.NewToolResultText(result), nil
}
