package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/eventwiz/internal/notify"
	"github.com/mark3labs/eventwiz/internal/submit"
	"github.com/mark3labs/eventwiz/internal/tui/theme"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the recorded submission outcomes of a session",
	Long: `List the submission outcomes recorded on the notification bus for the
session given with --session, oldest first. Outcomes are kept for a week.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}

		emb, stream, err := startBus(ctx, cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open notification bus: %w", err)
		}
		defer func() { _ = emb.Close() }()

		bus := notify.NewBus(emb.JS, stream, rootFlags.session)
		history, err := bus.History(ctx)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
		if len(history) == 0 {
			fmt.Printf("No outcomes recorded for session %s.\n", bus.Session())
			return nil
		}
		for _, n := range history {
			lipgloss.Println(formatOutcome(n))
		}
		return nil
	},
}

func formatOutcome(n submit.Notification) string {
	t := theme.Current()
	kindColor := t.Error
	if n.Success() {
		kindColor = t.Success
	}
	at := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)).Render(n.At.Local().Format("2006-01-02 15:04:05"))
	kind := lipgloss.NewStyle().Foreground(lipgloss.Color(kindColor)).Bold(true).Width(9).Render(string(n.Kind))

	var b strings.Builder
	b.WriteString(at + " " + kind + n.Message)
	if n.EventID != "" {
		b.WriteString(" (id " + n.EventID + ")")
	}
	for _, path := range slices.Sorted(maps.Keys(n.Fields)) {
		b.WriteString("\n    " + path + ": " + n.Fields[path])
	}
	return b.String()
}
