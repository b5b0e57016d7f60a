package render

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"careerdesk/internal/store"
)

// RenderJob fills the base template for one job config by literal
// {{token}} replacement. The template is user-editable text, not a Go
// template, so unknown tokens pass through untouched.
func RenderJob(tmpl string, master store.MasterDoc, job store.Job, css string, now time.Time) string {
	summaryKey := job.SummaryKey
	if summaryKey == "" {
		summaryKey = "default"
	}
	summary := master.Summary[summaryKey]
	if summary == "" {
		summary = master.Summary["default"]
	}

	tokens := map[string]string{
		"name":            master.Name,
		"target_title":    job.Title,
		"phone":           master.Contact.Phone,
		"email":           master.Contact.Email,
		"location":        master.Contact.Location,
		"links_html":      LinksHTML(master.Contact),
		"summary":         summary,
		"experience_html": assembleExperience(master, job),
		"projects_html":   assembleProjects(master, job),
		"skills_html":     assembleSkills(master, job),
		"css":             css,
		"date":            now.Format("Jan 02, 2006"),
	}

	out := tmpl
	for k, v := range tokens {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}

// LinksHTML renders the contact links as anchors joined with bullet
// separators.
func LinksHTML(contact store.Contact) string {
	parts := make([]string, 0, len(contact.Links))
	for _, link := range contact.Links {
		parts = append(parts, fmt.Sprintf(`<a href="%s">%s</a>`, link.URL, link.Label))
	}
	return strings.Join(parts, " &nbsp;•&nbsp; ")
}

func bulletsToHTML(bullets []string) string {
	var b strings.Builder
	for _, bullet := range bullets {
		b.WriteString("<li>")
		b.WriteString(bullet)
		b.WriteString("</li>")
	}
	return b.String()
}

func assembleExperience(master store.MasterDoc, job store.Job) string {
	var items []string
	for _, exp := range master.Experience {
		if exp.Company == "Freelance" && !job.FreelanceShown() {
			continue
		}
		items = append(items, fmt.Sprintf(`
        <div class="item">
          <div class="meta">
            <div class="left">%s — %s</div>
            <div class="right">%s</div>
          </div>
          <ul>%s</ul>
        </div>`, exp.Company, exp.Title, exp.Dates, bulletsToHTML(exp.Bullets)))
	}
	return strings.Join(items, "\n")
}

func assembleProjects(master store.MasterDoc, job store.Job) string {
	selected := map[string]struct{}{}
	for _, name := range job.SelectedProjects {
		selected[name] = struct{}{}
	}
	var items []string
	for _, proj := range master.Projects {
		if _, ok := selected[proj.Name]; !ok {
			continue
		}
		items = append(items, fmt.Sprintf(`
        <div class="item">
          <div class="meta">
            <div class="left">%s</div>
            <div class="right">%s</div>
          </div>
          <ul>%s</ul>
        </div>`, proj.Name, proj.Year, bulletsToHTML(proj.Bullets)))
	}
	return strings.Join(items, "\n")
}

// assembleSkills renders the categories the job lists, in its order. A
// category absent from the label map falls back to Title Case.
func assembleSkills(master store.MasterDoc, job store.Job) string {
	caser := cases.Title(language.English)
	var blocks []string
	for _, key := range job.SkillsOrder {
		label := job.SkillsLabelMap[key]
		if label == "" {
			label = caser.String(strings.ReplaceAll(key, "_", " "))
		}
		labels := make([]string, 0, len(master.Skills[key]))
		for _, skill := range master.Skills[key] {
			labels = append(labels, skill.Label)
		}
		blocks = append(blocks, fmt.Sprintf(`<div class="skill-block"><div class="label">%s</div><div class="list">%s</div></div>`,
			label, strings.Join(labels, ", ")))
	}
	return strings.Join(blocks, "\n")
}
