package render

import (
	"strings"
	"testing"
	"time"

	"careerdesk/internal/store"
)

func boolPtr(b bool) *bool { return &b }

func renderJobFixture() store.Job {
	return store.Job{
		Slug: "acme-data",
		JobConfig: store.JobConfig{
			Title:            "Data Engineer",
			SummaryKey:       "data",
			SelectedProjects: []string{"ETL Kit"},
			SkillsOrder:      []string{"languages"},
			SkillsLabelMap:   map[string]string{"languages": "Programming"},
		},
	}
}

func TestRenderJob_ReplacesAllTokens(t *testing.T) {
	now := time.Date(2026, time.March, 9, 10, 0, 0, 0, time.UTC)
	out := RenderJob(defaultBaseTemplate, renderMaster(), renderJobFixture(), "body { margin: 0; }", now)

	if strings.Contains(out, "{{") {
		t.Errorf("Expected every template token replaced, got: %s", out[strings.Index(out, "{{"):])
	}
	if !strings.Contains(out, "<title>Jordan Blake – Data Engineer</title>") {
		t.Error("Expected name and target title in the document title")
	}
	if !strings.Contains(out, "body { margin: 0; }") {
		t.Error("Expected theme CSS inlined")
	}
	if !strings.Contains(out, "Data-platform engineer.") {
		t.Error("Expected the summary picked by summary_key")
	}
	if !strings.Contains(out, "Mar 09, 2026") {
		t.Error("Expected the build date formatted as Jan 02, 2006")
	}
	if !strings.Contains(out, `<a href="mailto:jordan@example.com">`) {
		t.Error("Expected contact links assembled")
	}
}

func TestRenderJob_SummaryFallsBackToDefault(t *testing.T) {
	job := renderJobFixture()
	job.SummaryKey = "missing"
	out := RenderJob(defaultBaseTemplate, renderMaster(), job, "", time.Now())
	if !strings.Contains(out, "Engineer with a data focus.") {
		t.Error("Expected the default summary when the key is absent")
	}
}

func TestRenderJob_FreelanceVisibility(t *testing.T) {
	master := renderMaster()
	job := renderJobFixture()

	// Shown by default when the flag is unset.
	out := RenderJob(defaultBaseTemplate, master, job, "", time.Now())
	if !strings.Contains(out, "Freelance — Consultant") {
		t.Error("Expected freelance experience shown by default")
	}

	job.ShowFreelance = boolPtr(false)
	out = RenderJob(defaultBaseTemplate, master, job, "", time.Now())
	if strings.Contains(out, "Freelance") {
		t.Error("Expected freelance experience hidden when show_freelance is false")
	}
}

func TestRenderJob_SelectsProjectsByName(t *testing.T) {
	master := renderMaster()
	job := renderJobFixture()
	// Selection order does not matter, master order does.
	job.SelectedProjects = []string{"Metrics Dashboard", "ETL Kit"}

	out := RenderJob(defaultBaseTemplate, master, job, "", time.Now())
	etl := strings.Index(out, "ETL Kit")
	dash := strings.Index(out, "Metrics Dashboard")
	if etl < 0 || dash < 0 {
		t.Fatal("Expected both selected projects rendered")
	}
	if etl > dash {
		t.Error("Expected projects in master order, not selection order")
	}

	job.SelectedProjects = []string{"ETL Kit"}
	out = RenderJob(defaultBaseTemplate, master, job, "", time.Now())
	if strings.Contains(out, "Metrics Dashboard") {
		t.Error("Expected unselected projects omitted")
	}
}

func TestRenderJob_SkillsFollowOrderAndLabels(t *testing.T) {
	master := renderMaster()
	job := renderJobFixture()
	job.SkillsOrder = []string{"tools", "languages"}
	job.SkillsLabelMap = map[string]string{"languages": "Programming"}

	out := RenderJob(defaultBaseTemplate, master, job, "", time.Now())
	doc := parseDoc(t, out)
	blocks := findAll(doc, byClass("skill-block"))
	if len(blocks) != 2 {
		t.Fatalf("Expected only the ordered categories, got %d blocks", len(blocks))
	}
	if got := textOf(findAll(blocks[0], byClass("label"))[0]); got != "Tools" {
		t.Errorf("Expected title-cased category name first, got %q", got)
	}
	if got := textOf(findAll(blocks[1], byClass("label"))[0]); got != "Programming" {
		t.Errorf("Expected the mapped label, got %q", got)
	}
	if got := textOf(findAll(blocks[1], byClass("list"))[0]); got != "Python, SQL" {
		t.Errorf("Expected comma-joined labels, got %q", got)
	}
}

func TestRenderJob_SkillsTitleCasesUnderscores(t *testing.T) {
	master := renderMaster()
	master.Skills["ml_and_ai"] = []store.Skill{{ID: "pytorch", Label: "PyTorch"}}
	job := renderJobFixture()
	job.SkillsOrder = []string{"ml_and_ai"}
	job.SkillsLabelMap = nil

	out := RenderJob(defaultBaseTemplate, master, job, "", time.Now())
	if !strings.Contains(out, "Ml And Ai") {
		t.Error("Expected underscores replaced and the category title-cased")
	}
}

func TestLinksHTML(t *testing.T) {
	got := LinksHTML(renderMaster().Contact)
	want := `<a href="https://github.com/jordanblake">GitHub</a> &nbsp;•&nbsp; <a href="https://linkedin.com/in/jordanblake">LinkedIn</a>`
	if got != want {
		t.Errorf("LinksHTML mismatch:\n got %q\nwant %q", got, want)
	}
}
