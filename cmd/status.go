package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xkinput/keytao-bot/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	fmt.Println("keytao-bot status")
	fmt.Println()

	_, statErr := os.Stat(cfgPath)
	cfgMark := "✗ (not found, using defaults)"
	if statErr == nil {
		cfgMark = "✓"
	}
	fmt.Printf("Config:     %s %s\n", cfgPath, cfgMark)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	fmt.Printf("Model:      %s\n", cfg.DashScope.Model)
	fmt.Printf("DashScope:  %s\n", configured(cfg.DashScope.APIKey != ""))
	fmt.Printf("Keytao API: %s\n", cfg.Keytao.BaseURL)
	fmt.Printf("Bot token:  %s\n", configured(cfg.Keytao.BotToken != ""))
	fmt.Println()

	fmt.Println("Channels:")
	fmt.Printf("  %-10s %s\n", "telegram", enabled(cfg.Channels.Telegram.Enabled))
	fmt.Printf("  %-10s %s\n", "qq", enabled(cfg.Channels.QQ.Enabled))
	return nil
}

func configured(ok bool) string {
	if ok {
		return "✓"
	}
	return "(not set)"
}

func enabled(ok bool) string {
	if ok {
		return "✓ enabled"
	}
	return "disabled"
}
