package main

import (
	"fmt"
	"path/filepath"

	"careerdesk/internal/store"

	"github.com/spf13/cobra"
)

var (
	newJobName  string
	newJobTitle string
)

// newJobCmd clones jobs/template.json into a fresh config
var newJobCmd = &cobra.Command{
	Use:   "new-job",
	Short: "Create a job config from the template",
	Long: `Copies jobs/template.json to jobs/<name>.json so a new application can
start from the house defaults.

Example:
  desk new-job --name acme-ml-researcher --title "ML Researcher"`,
	RunE: runNewJob,
}

func runNewJob(cmd *cobra.Command, args []string) error {
	jobs, err := store.NewJobStore(cfg.Data.JobsDir, "")
	if err != nil {
		return err
	}

	patch := store.JobPatch{}
	if newJobTitle != "" {
		patch.Title = &newJobTitle
	}
	job, err := jobs.Create(newJobName, patch)
	if err != nil {
		return err
	}

	dest := filepath.Join(cfg.Data.JobsDir, job.Slug+".json")
	fmt.Printf("%s %s\n%s\n",
		successStyle.Render("Created"),
		pathStyle.Render(dest),
		hintStyle.Render("Edit selected_projects, summary_key, skills_order as needed."))
	return nil
}
