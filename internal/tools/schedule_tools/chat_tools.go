package schedule_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meetwise/meetwise/internal/engine"
	"github.com/meetwise/meetwise/internal/server"
	"github.com/meetwise/meetwise/internal/tools/common"
)

const timeFormat = "Mon, Jan 2 at 15:04"

// RegisterChatTools registers the conversational scheduling entry point
func RegisterChatTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	chatTool := mcp.NewTool("schedule_chat",
		mcp.WithDescription("Send a natural-language scheduling message. The engine classifies the intent, asks for missing details, confirms destructive changes, and carries conversation state across turns via session_id."),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The user's message, e.g. 'find 30 minutes with alice@example.com tomorrow'"),
		),
		mcp.WithString("session_id",
			mcp.Description("Conversation session ID from a previous turn. Omit to start a new conversation; the reply includes the ID to use for follow-ups."),
		),
	)

	s.AddTool(chatTool, common.InstrumentedToolHandler(
		"schedule_chat", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleChat(ctx, request, sc)
		}))

	return nil
}

func handleChat(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	message, ok := args["message"].(string)
	if !ok || strings.TrimSpace(message) == "" {
		return mcp.NewToolResultError("message is required"), nil
	}

	sessionID := common.GetSessionFromArgs(args)
	if sessionID == "" {
		sessionID = sc.Sessions().Mint()
	}

	reply, err := sc.HandleMessage(ctx, sessionID, message)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to handle message: %v", err)), nil
	}

	return mcp.NewToolResultText(renderReply(sessionID, reply)), nil
}

// renderReply formats a structured engine reply as tool output. The session
// ID leads so agents can thread follow-up turns.
func renderReply(sessionID string, reply *engine.Reply) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n\n%s\n", sessionID, reply.Text)

	if len(reply.Events) > 0 && reply.Kind == engine.ReplyEvents {
		b.WriteString("\n")
		for i, ev := range reply.Events {
			fmt.Fprintf(&b, "%d. %s\n", i+1, ev.Title)
			fmt.Fprintf(&b, "   %s to %s\n", ev.Start.Format(timeFormat), ev.End.Format("15:04"))
			fmt.Fprintf(&b, "   Account: %s (%s)\n", ev.AccountID, ev.Provider)
			if ev.Location != "" {
				fmt.Fprintf(&b, "   Location: %s\n", ev.Location)
			}
			if len(ev.Attendees) > 0 {
				fmt.Fprintf(&b, "   Attendees: %s\n", strings.Join(ev.Attendees, ", "))
			}
		}
	}

	if len(reply.Slots) > 0 {
		b.WriteString("\n")
		for i, slot := range reply.Slots {
			fmt.Fprintf(&b, "%d. %s to %s", i+1,
				slot.Start.Format(timeFormat), slot.End.Format("15:04"))
			if slot.Perfect() {
				b.WriteString(" - everyone is free\n")
			} else {
				fmt.Fprintf(&b, " - %d/%d available (unavailable: %s)\n",
					slot.AvailableCount, slot.TotalCount, strings.Join(slot.Unavailable, ", "))
			}
		}
	}

	if len(reply.Conflicts) > 0 {
		b.WriteString("\nConflicting busy blocks:\n")
		for i, c := range reply.Conflicts {
			fmt.Fprintf(&b, "%d. %s to %s\n", i+1,
				c.Start.Format(timeFormat), c.End.Format("15:04"))
		}
	}

	return b.String()
}
