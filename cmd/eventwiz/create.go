package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/eventwiz/internal/event"
	"github.com/mark3labs/eventwiz/internal/logger"
	"github.com/mark3labs/eventwiz/internal/state"
	"github.com/mark3labs/eventwiz/internal/tui/eventwizard"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an event in the terminal wizard",
	Long: `Create an event in the full-screen terminal wizard.

The organizer lookup is loaded from the events service first. The last
organizer used is preselected.`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

var editCmd = &cobra.Command{
	Use:   "edit <event-id>",
	Short: "Edit an existing event in the terminal wizard",
	Long: `Load an existing event into the terminal wizard and save the changes.

The review step offers a diff between the loaded event and the edited one.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	orgs := a.organizers(ctx)
	prefs := state.Load(a.cfg.DataDir)

	wiz := event.New(orgs, wizardOptions()...)
	if id := prefs.LastOrganizerID; id != "" && wiz.OrganizerName(id) != "" {
		wiz.Controller().Set(event.OrganizerID, id)
	}
	return runWizard(ctx, a, wiz, prefs)
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ev, err := a.client.GetEvent(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load event %s: %w", args[0], err)
	}
	orgs := a.organizers(ctx)
	prefs := state.Load(a.cfg.DataDir)

	return runWizard(ctx, a, event.Load(ev, orgs, wizardOptions()...), prefs)
}

// runWizard shows the wizard and remembers the UI preferences afterwards,
// whether or not the event was saved.
func runWizard(ctx context.Context, a *app, wiz *event.Wizard, prefs *state.UIState) error {
	m := eventwizard.New(wiz, a.submitter(wiz),
		eventwizard.WithPane(eventwizard.Pane(prefs.Review.Pane)),
		eventwizard.WithContext(ctx),
	)
	err := eventwizard.Run(ctx, m)

	prefs.Review.Pane = string(m.Pane())
	out := m.Outcome()
	if out != nil {
		prefs.LastOrganizerID = out.Payload.OrganizerID
	}
	if serr := state.Save(a.cfg.DataDir, prefs); serr != nil {
		logger.Warn("Failed to save UI state: %v", serr)
	}

	if errors.Is(err, eventwizard.ErrCancelled) {
		fmt.Println("Cancelled, nothing was saved.")
		return nil
	}
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	verb := "updated"
	if out.Created {
		verb = "created"
	}
	fmt.Printf("Event %q %s (id %s)\n", out.Payload.Name, verb, out.Event.ID)
	return nil
}
