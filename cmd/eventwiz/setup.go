package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/eventwiz/internal/config"
	"github.com/spf13/cobra"
)

var setupFlags struct {
	project bool
	force   bool
	apiURL  string
	token   string
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create eventwiz configuration file",
	Long: `Create an eventwiz configuration file with sensible defaults.

By default, creates a global config at ~/.config/eventwiz/eventwiz.yml.
Use --project to create a project-local config in the current directory.
The file is only readable by you since it may hold an API token.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
	setupCmd.Flags().StringVar(&setupFlags.apiURL, "url", "", "Events service base URL (required)")
	setupCmd.Flags().StringVar(&setupFlags.token, "token", "", "API token sent as a bearer token")
	_ = setupCmd.MarkFlagRequired("url")
}

func runSetup(cmd *cobra.Command, args []string) error {
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath()
	}

	if !setupFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	cfg := &config.Config{
		APIURL:   setupFlags.apiURL,
		APIToken: setupFlags.token,
		Timeout:  30 * time.Second,
		DataDir:  ".eventwiz",
		LogLevel: "info",
		Notify:   true,
		MCPAddr:  "127.0.0.1:0",
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var err error
	if setupFlags.project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Config written to: %s\n\n", targetPath)
	fmt.Println("Run 'eventwiz create' to get started.")
	return nil
}

// fileExists checks if a file exists (helper for setup command).
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
