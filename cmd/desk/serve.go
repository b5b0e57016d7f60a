package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"careerdesk/internal/ai"
	"careerdesk/internal/api"
	"careerdesk/internal/pdf"
	"careerdesk/internal/store"
	"careerdesk/internal/watcher"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd starts the web workbench
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the CareerDesk web server",
	Long: `Serves the editing UI and the JSON API over HTTP. The data files are
watched while the server runs, so hand edits land normalized without a
restart.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	master, jobs, generations, prompts, err := openStores()
	if err != nil {
		return err
	}

	gen, err := ai.New(cfg.AI)
	if err != nil && !errors.Is(err, ai.ErrNotConfigured) {
		return err
	}
	if gen == nil {
		logger.Warn("AI drafting disabled: no API key configured")
	} else {
		logger.Info("AI drafting enabled",
			zap.String("provider", gen.Name()),
			zap.String("model", gen.Model()))
	}
	drafter := ai.NewDrafter(gen, logger)

	exporter := pdf.New(cfg.PDF.ChromePath, cfg.GetPDFTimeout(), logger)

	w, err := watcher.New(master, prompts, logger)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	srv := api.New(cfg, logger, master, jobs, generations, prompts, drafter, exporter)
	return srv.Run(ctx)
}

// openStores opens the four JSON stores under the configured data
// locations, creating missing files with defaults.
func openStores() (*store.MasterStore, *store.JobStore, *store.GenerationStore, *store.PromptStore, error) {
	master, err := store.NewMasterStore(filepath.Join(cfg.Data.Dir, "master.json"))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	jobs, err := store.NewJobStore(cfg.Data.JobsDir, "")
	if err != nil {
		return nil, nil, nil, nil, err
	}
	generations, err := store.NewGenerationStore(
		filepath.Join(cfg.Data.Dir, "generated_resumes.json"),
		filepath.Join(cfg.Data.Dir, "generated"),
	)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	prompts, err := store.NewPromptStore(filepath.Join(cfg.Data.Dir, "prompts.json"))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return master, jobs, generations, prompts, nil
}
