// Package cmd implements the keytao-bot CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "keytao-bot",
	Short: "keytao-bot — 键道输入法查询机器人",
	Long:  "keytao-bot — QQ / Telegram chat bot for the keytao input method:\ncode lookup, docs Q&A and dictionary submissions, powered by Qwen tool calling.",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(statusCmd)
}
