package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xkinput/keytao-bot/internal/bus"
	"github.com/xkinput/keytao-bot/internal/channels"
	"github.com/xkinput/keytao-bot/internal/config"
	"github.com/xkinput/keytao-bot/internal/dependency"
)

var chatVerbose bool

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the bot from the terminal",
	Long:  "With a message argument, answers once and exits.\nWithout arguments, starts an interactive session.",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().BoolVarP(&chatVerbose, "verbose", "v", false, "Verbose logging")
}

func runChat(_ *cobra.Command, args []string) error {
	setupLogging(chatVerbose)

	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c, err := dependency.New(cfg)
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// One-shot mode.
	if len(args) > 0 {
		msg := bus.NewInboundMessage(bus.ChannelCLI, "console", "console", strings.Join(args, " "))
		reply := c.AgentLoop().Process(ctx, msg)
		fmt.Println(reply)
		return nil
	}

	// Interactive mode runs only the terminal channel; the session ends
	// when the user types exit, so the REPL drives the lifetime.
	cli := channels.NewCLIChannel(c.MessageBus())

	replCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(replCtx)
	g.Go(func() error { return c.AgentLoop().Run(gctx) })
	g.Go(func() error {
		for {
			select {
			case msg := <-c.MessageBus().Outbound:
				_ = cli.Send(gctx, msg)
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})
	g.Go(func() error {
		defer cancel()
		return cli.Start(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
