package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"careerdesk/internal/pdf"
	"careerdesk/internal/render"
	"careerdesk/internal/store"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// exportCmd prints a stored generation to PDF without the server
var exportCmd = &cobra.Command{
	Use:   "export [generation-id]",
	Short: "Export a generated resume and cover letter to PDF",
	Long: `Prints the stored resume HTML and cover letter of one generation to PDF
through headless Chrome, the same way the web UI export button does.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	id := args[0]

	generations, err := store.NewGenerationStore(
		filepath.Join(cfg.Data.Dir, "generated_resumes.json"),
		filepath.Join(cfg.Data.Dir, "generated"),
	)
	if err != nil {
		return err
	}
	record, err := generations.Get(id)
	if err != nil {
		return err
	}
	if strings.TrimSpace(record.ResumeHTML) == "" {
		return fmt.Errorf("generation %s has no resume HTML; generate or edit it before exporting", id)
	}

	resumeRel, resumeAbs := generations.ResumePDFPaths(id)
	coverRel, coverAbs := generations.CoverLetterPDFPaths(id)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetPDFTimeout())
	defer cancel()

	exporter := pdf.New(cfg.PDF.ChromePath, cfg.GetPDFTimeout(), logger)
	browser, err := exporter.Start(ctx)
	if err != nil {
		return err
	}
	defer browser.Close()

	coverHTML := render.CoverLetter(record.CoverLetter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return browser.Print(gctx, record.ResumeHTML, resumeAbs)
	})
	g.Go(func() error {
		return browser.Print(gctx, coverHTML, coverAbs)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("export %s: %w", id, err)
	}

	if _, err := generations.Update(id, store.GenerationPatch{
		ResumePDFPath:      &resumeRel,
		CoverLetterPDFPath: &coverRel,
	}); err != nil {
		return err
	}

	fmt.Printf("%s\n  %s\n  %s\n",
		successStyle.Render("Exported"),
		pathStyle.Render(resumeAbs),
		pathStyle.Render(coverAbs))
	return nil
}
