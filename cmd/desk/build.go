package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"careerdesk/internal/render"
	"careerdesk/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	buildJob  string
	buildOpen bool
)

// buildCmd renders job-tailored resumes without the server or the AI
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build static HTML resumes from the master profile",
	Long: `Renders the master profile through job configs into static HTML under
the dist directory. Each config picks a summary, projects, and a skills
layout. With no --job flag every config in the jobs directory is built.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	master, err := store.NewMasterStore(filepath.Join(cfg.Data.Dir, "master.json"))
	if err != nil {
		return err
	}
	jobs, err := store.NewJobStore(cfg.Data.JobsDir, "")
	if err != nil {
		return err
	}

	var slugs []string
	if buildJob != "" {
		slugs = []string{jobSlug(buildJob)}
	} else {
		summaries, err := jobs.List()
		if err != nil {
			return err
		}
		for _, summary := range summaries {
			slugs = append(slugs, summary.Slug)
		}
	}
	if len(slugs) == 0 {
		return fmt.Errorf("no job configs found in %s", cfg.Data.JobsDir)
	}

	doc, err := master.Snapshot()
	if err != nil {
		return err
	}
	tmpl := render.LoadBaseTemplate(cfg.Data.TemplatePath)
	css := render.LoadTheme(cfg.Data.ThemePath)

	if err := os.MkdirAll(cfg.Data.DistDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", cfg.Data.DistDir, err)
	}

	now := time.Now()
	for _, slug := range slugs {
		job, err := jobs.Get(slug)
		if err != nil {
			return err
		}
		html := render.RenderJob(tmpl, doc, job, css, now)
		out := filepath.Join(cfg.Data.DistDir, "resume_"+slug+".html")
		if err := os.WriteFile(out, []byte(html), 0644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		logger.Debug("Built resume", zap.String("slug", slug), zap.String("path", out))
		fmt.Printf("Wrote %s\n", pathStyle.Render(out))

		if buildOpen {
			if err := openBrowser("file://" + absolute(out)); err != nil {
				logger.Warn("Failed to open browser", zap.Error(err))
			}
		}
	}
	return nil
}

// jobSlug accepts either a bare slug or a path like jobs/acme.json.
func jobSlug(arg string) string {
	return strings.TrimSuffix(filepath.Base(arg), ".json")
}

func absolute(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
