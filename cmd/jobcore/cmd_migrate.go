package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobcore/internal/config"
	"jobcore/internal/jobstore"
	"jobcore/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the job store schema and exit",
	RunE:  runMigrate,
}

// runMigrate opens the store, which applies the schema migration as part of
// NewStore, then closes it. There is no separate migration step to run. It
// loads configuration directly rather than through loadConfig, since schema
// migration needs no LLM provider configured.
func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return err
	}

	store, err := jobstore.NewStore(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("apply schema to %s: %w", cfg.StorePath, err)
	}
	defer store.Close()

	logging.Boot("schema up to date at %s", store.Path())
	fmt.Printf("migrated %s\n", store.Path())
	return nil
}
