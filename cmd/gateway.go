package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xkinput/keytao-bot/internal/channels"
	"github.com/xkinput/keytao-bot/internal/config"
	"github.com/xkinput/keytao-bot/internal/dependency"
)

var gatewayVerbose bool

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the bot gateway (all enabled channels)",
	RunE:  runGateway,
}

func init() {
	gatewayCmd.Flags().BoolVarP(&gatewayVerbose, "verbose", "v", false, "Verbose logging")
}

func runGateway(_ *cobra.Command, _ []string) error {
	setupLogging(gatewayVerbose)

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

	mgr := channels.NewManager(cfg, c.MessageBus(), false)
	enabled := mgr.EnabledChannels()
	if len(enabled) == 0 {
		return fmt.Errorf("no channels enabled — edit %s", config.ConfigPath())
	}
	fmt.Printf("Channels enabled: %s\n", strings.Join(enabled, ", "))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.AgentLoop().Run(gctx) })
	g.Go(func() error { return mgr.StartAll(gctx) })

	fmt.Println("Gateway running. Press Ctrl+C to stop.")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "gateway error: %v\n", err)
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
