package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/meetwise/meetwise/internal/classify"
	"github.com/meetwise/meetwise/internal/engine"
	"github.com/meetwise/meetwise/internal/schedule"
)

func newChatCmd() *cobra.Command {
	var debugMode bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run a local conversational scheduling session",
		Long: `Start an interactive scheduling conversation against your configured
calendar accounts. Type natural-language requests like:

  find 30 minutes with alice@example.com tomorrow
  am I free friday at 2pm?
  cancel the standup on monday

Accounts are configured through GOOGLE_ACCOUNTS / CALDAV_ACCOUNTS environment
variables (see 'meetwise serve --help'). Without any accounts the engine
still answers, treating every window as free.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(debugMode)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	return cmd
}

func runChat(debugMode bool) error {
	ctx := context.Background()
	logger := newLogger(debugMode)

	engineConfig, err := engine.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load engine config: %w", err)
	}

	zone, err := time.LoadLocation(engineConfig.ReferenceZone)
	if err != nil {
		return fmt.Errorf("invalid reference zone %q: %w", engineConfig.ReferenceZone, err)
	}

	adapters, err := buildAdapters(ctx, logger)
	if err != nil {
		return err
	}

	eng, err := engine.New(engineConfig, classify.NewKeywordClassifier(zone),
		engine.NewMemoryStore(), adapters, logger)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	fmt.Printf("meetwise %s - %d account(s) connected. Type 'exit' to quit.\n\n", version, len(adapters))

	sessionID := uuid.NewString()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		reply, err := eng.HandleMessage(ctx, sessionID, line)
		if err != nil {
			fmt.Printf("error: %v\n\n", err)
			continue
		}
		printReply(reply)
	}
	return scanner.Err()
}

func printReply(reply *engine.Reply) {
	const replyTimeFormat = "Mon, Jan 2 at 15:04"

	fmt.Println(reply.Text)

	if reply.Kind == engine.ReplyEvents {
		for i, ev := range reply.Events {
			fmt.Printf("  %d. %s  %s to %s  [%s]\n", i+1, ev.Title,
				ev.Start.Format(replyTimeFormat), ev.End.Format("15:04"), ev.AccountID)
		}
	}

	for i, slot := range reply.Slots {
		fmt.Printf("  %d. %s to %s", i+1,
			slot.Start.Format(replyTimeFormat), slot.End.Format("15:04"))
		if slot.Perfect() {
			fmt.Println("  (everyone free)")
		} else {
			fmt.Printf("  (%d/%d available)\n", slot.AvailableCount, slot.TotalCount)
		}
	}

	if len(reply.Conflicts) > 0 {
		fmt.Println("  Conflicts:")
		for _, c := range reply.Conflicts {
			printInterval(c)
		}
	}

	if reply.Partial {
		fmt.Printf("  (some accounts unreachable: %s)\n", strings.Join(reply.FailedAccounts, ", "))
	}
	fmt.Println()
}

func printInterval(b schedule.BusyInterval) {
	fmt.Printf("    %s to %s\n",
		b.Start.Format("Mon, Jan 2 at 15:04"), b.End.Format("15:04"))
}
