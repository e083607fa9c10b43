// Package main is the jobcore CLI entry point: a single cobra root with
// serve/migrate/routes verb subcommands (spec §6 exit codes: 0 success,
// 1 fatal configuration/auth error).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jobcore/internal/config"
	"jobcore/internal/logging"
)

var (
	workspace  string
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "jobcore",
	Short: "jobcore - LLM Task Orchestration Core for recruiting automation",
	Long: `jobcore drives job-posting drafts through refine, channel
recommendation, and per-channel asset generation by dispatching
prompt-shaped work to LLM providers, validating structured responses,
retrying under failure, and persisting results into a durable job store
that the UI polls.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ws := workspace
		if ws == "" {
			var err error
			ws, err = config.FindWorkspaceRoot()
			if err != nil {
				return fmt.Errorf("resolve workspace root: %w", err)
			}
		}
		if err := logging.Initialize(ws); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: discovered from cwd)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json (default: <workspace>/.jobcore/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(serveCmd, migrateCmd, routesCmd)
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if workspace != "" {
		return workspace + "/.jobcore/config.json"
	}
	return config.DefaultConfigPath()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.DebugMode = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
