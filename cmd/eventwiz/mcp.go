package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/eventwiz/internal/event"
	"github.com/mark3labs/eventwiz/internal/logger"
	"github.com/mark3labs/eventwiz/internal/mcpserver"
	"github.com/spf13/cobra"
)

const mcpShutdownTimeout = 5 * time.Second

var mcpFlags struct {
	addr string
	edit string
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve one wizard session as MCP tools",
	Long: `Serve one wizard session over MCP streamable HTTP so an agent can fill
it in with the wizard-* and batch-* tools.

The session starts as a new event, or as an existing one with --edit. The
server runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpFlags.addr, "addr", "", "Listen address (default: mcp_addr from config)")
	mcpCmd.Flags().StringVar(&mcpFlags.edit, "edit", "", "Id of an existing event to edit")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	orgs := a.organizers(ctx)
	wiz := event.New(orgs, wizardOptions()...)
	if mcpFlags.edit != "" {
		ev, err := a.client.GetEvent(ctx, mcpFlags.edit)
		if err != nil {
			return fmt.Errorf("failed to load event %s: %w", mcpFlags.edit, err)
		}
		wiz = event.Load(ev, orgs, wizardOptions()...)
	}

	addr := mcpFlags.addr
	if addr == "" {
		addr = a.cfg.MCPAddr
	}

	srv := mcpserver.New(wiz, a.submitter(wiz))
	if _, err := srv.Start(ctx, addr); err != nil {
		return fmt.Errorf("failed to start MCP server: %w", err)
	}
	fmt.Printf("Serving the event wizard at %s\nPress Ctrl+C to stop.\n", srv.URL())

	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), mcpShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("MCP shutdown: %v", err)
	}
	return nil
}
