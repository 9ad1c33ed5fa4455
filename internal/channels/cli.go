package channels

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/xkinput/keytao-bot/internal/bus"
)

var cliExitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

// CLIChannel wires the terminal into the message bus so the agent can be
// exercised without any platform credentials.
type CLIChannel struct {
	Base
	replies chan bus.OutboundMessage
}

// NewCLIChannel creates a CLIChannel.
func NewCLIChannel(b *bus.MessageBus) *CLIChannel {
	return &CLIChannel{
		Base:    NewBase(bus.ChannelCLI, b, nil),
		replies: make(chan bus.OutboundMessage, 4),
	}
}

func (c *CLIChannel) Name() string { return string(bus.ChannelCLI) }

// Start runs the stdin REPL: reads lines, dispatches them to the agent, and
// prints each reply. Blocks until ctx is cancelled or stdin closes.
func (c *CLIChannel) Start(ctx context.Context) error {
	fmt.Printf("键道小助手已就绪，输入 exit 或按 Ctrl+C 退出。\n\n")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")

		scanDone := make(chan bool, 1)
		go func() {
			scanDone <- scanner.Scan()
		}()

		select {
		case ok := <-scanDone:
			if !ok {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if cliExitCommands[strings.ToLower(line)] {
			return nil
		}

		c.HandleMessage("console", "console", line, nil)
		c.waitForReply(ctx)
	}
}

func (c *CLIChannel) waitForReply(ctx context.Context) {
	select {
	case msg := <-c.replies:
		fmt.Printf("\n%s\n\n", msg.Content())
	case <-ctx.Done():
	}
}

// Send prints an agent reply back to the terminal via the Start loop.
func (c *CLIChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	c.replies <- msg
	return nil
}
