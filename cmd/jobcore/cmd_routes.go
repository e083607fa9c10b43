package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobcore/internal/assets"
	"jobcore/internal/copilot"
	"jobcore/internal/httpapi"
	"jobcore/internal/jobstore"
	"jobcore/internal/orchestrator"
	"jobcore/internal/provider"
	"jobcore/internal/routing"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the registered HTTP route table and exit",
	RunE:  runRoutes,
}

// runRoutes builds the same router serve wires up, against a throwaway
// in-memory store, purely to list its registered routes.
func runRoutes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := jobstore.NewStore(":memory:")
	if err != nil {
		return fmt.Errorf("open in-memory store: %w", err)
	}
	defer store.Close()

	policy := routing.NewPolicy(cfg.LLM, routing.Table{})
	registry := provider.NewRegistry(cfg.LLM, cfg.Timeouts.HTTPClientTimeout)
	orch := orchestrator.New(policy, registry, cfg.Timeouts)
	coordinator := assets.New(store, orch, cfg.Limits.AssetParallelism, nil, nil)
	agent := copilot.New(store, orch, cfg.Limits.CopilotMaxToolSteps)

	router := httpapi.NewRouter(httpapi.Dependencies{
		Store:        store,
		Orchestrator: orch,
		Assets:       coordinator,
		Copilot:      agent,
	})

	for _, route := range router.Routes() {
		fmt.Printf("%-7s %s\n", route.Method, route.Path)
	}
	return nil
}
