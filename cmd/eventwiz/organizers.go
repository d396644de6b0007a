package main

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/eventwiz/internal/tui/theme"
	"github.com/spf13/cobra"
)

var organizersCmd = &cobra.Command{
	Use:   "organizers",
	Short: "List the organizers an event can be assigned to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		orgs, err := client.ListOrganizers(ctx)
		if err != nil {
			return fmt.Errorf("failed to list organizers: %w", err)
		}
		if len(orgs) == 0 {
			fmt.Println("No organizers.")
			return nil
		}

		width := 0
		for _, o := range orgs {
			width = max(width, lipgloss.Width(o.ID))
		}
		t := theme.Current()
		idStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)).Width(width + 2)
		nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBright))
		for _, o := range orgs {
			lipgloss.Println(idStyle.Render(o.ID) + nameStyle.Render(o.Name))
		}
		return nil
	},
}
