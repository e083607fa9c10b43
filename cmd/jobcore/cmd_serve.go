package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jobcore/internal/assets"
	"jobcore/internal/copilot"
	"jobcore/internal/httpapi"
	"jobcore/internal/jobstore"
	"jobcore/internal/logging"
	"jobcore/internal/orchestrator"
	"jobcore/internal/provider"
	"jobcore/internal/routing"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
}

// runServe wires the full dependency graph (store -> policy -> registry ->
// orchestrator -> coordinator/agent -> router) and serves until an interrupt
// or terminate signal arrives, draining in-flight requests first.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logging.InitAudit(); err != nil {
		logging.BootWarn("audit logging disabled: %v", err)
	}
	defer logging.CloseAudit()

	store, err := jobstore.NewStore(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open job store at %s: %w", cfg.StorePath, err)
	}
	defer store.Close()

	table, err := routing.LoadTable(cfg.RoutingTablePath)
	if err != nil {
		return fmt.Errorf("load routing table: %w", err)
	}
	policy := routing.NewPolicy(cfg.LLM, table)
	registry := provider.NewRegistry(cfg.LLM, cfg.Timeouts.HTTPClientTimeout)
	orch := orchestrator.New(policy, registry, cfg.Timeouts)

	var imageGen assets.ImageGenerator
	var videoGen assets.VideoGenerator
	if cfg.LLM.Gemini.APIKey != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		imageAdapter, err := provider.NewGeminiImageAdapter(ctx, cfg.LLM.Gemini.APIKey, cfg.LLM.Gemini.Model)
		if err != nil {
			logging.BootWarn("hero image generation disabled: %v", err)
		} else {
			imageGen = imageAdapter
		}

		videoAdapter, err := provider.NewGeminiVideoAdapter(ctx, cfg.LLM.Gemini.APIKey, cfg.LLM.Gemini.Model)
		if err != nil {
			logging.BootWarn("video generation disabled: %v", err)
		} else {
			videoGen = videoAdapter
		}
	} else {
		logging.BootWarn("no Gemini API key configured, hero image and video generation are disabled")
	}

	coordinator := assets.New(store, orch, cfg.Limits.AssetParallelism, imageGen, videoGen)
	agent := copilot.New(store, orch, cfg.Limits.CopilotMaxToolSteps)

	router := httpapi.NewRouter(httpapi.Dependencies{
		Store:        store,
		Orchestrator: orch,
		Assets:       coordinator,
		Copilot:      agent,
	})

	srv := &http.Server{Addr: serveAddr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		logging.Boot("jobcore listening on %s", serveAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-sigCh:
		logging.Boot("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
