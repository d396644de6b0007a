package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/eventwiz/internal/logger"
	"github.com/mark3labs/eventwiz/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀▀ █ █ █▀▀ █▄ █ ▀█▀ █ █ █ █ ▀█"
	logoText2 = "██▄ ▀▄▀ ██▄ █ ▀█  █  ▀▄▀▄▀ █ █▄"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "eventwiz",
	Short: "Step-by-step event creation and editing for the events service",
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

eventwiz creates and edits events through a validation-gated, multi-step
wizard: basic information, dates and capacity, priced batches and final
options. Each step must be valid before the next one opens, and the whole
event is checked again before it is sent to the events service.

The wizard runs as a full-screen terminal UI, or headless as MCP tools
so an agent can fill it in. Submission outcomes are recorded on an embedded
NATS stream and can be listed with 'eventwiz history'.`

	rootCmd.PersistentFlags().StringVar(&rootFlags.apiURL, "api-url", "", "Events service base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.dataDir, "data-dir", "", "Data directory for NATS storage and UI state (overrides config)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logFile, "log-file", "", "Append logs to this file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.session, "session", "default", "Session name outcomes are recorded under")
	rootCmd.PersistentFlags().BoolVar(&rootFlags.noNotify, "no-notify", false, "Do not record outcomes on the notification bus")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(organizersCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(setupCmd)
}
