package render

import (
	"fmt"
	"html/template"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"careerdesk/internal/ai"
	"careerdesk/internal/store"
)

var resumeTmpl = template.Must(template.New("resume").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <style>{{.CSS}}</style>
</head>
<body>
<div class="container">
  <div class="header">
    <div>
      <h1>{{.Name}}</h1>
      <div class="role">{{.Role}}</div>
    </div>
    <div class="contact">
      <div>{{.Phone}}</div>
      <div><a href="mailto:{{.Email}}">{{.Email}}</a></div>
      <div>{{.Location}}</div>
      <div>{{range $i, $l := .Links}}{{if $i}} &nbsp;•&nbsp; {{end}}<a href="{{$l.URL}}">{{$l.Label}}</a>{{end}}</div>
    </div>
  </div>

  <div class="section">
    <h2>Summary</h2>
    <p>{{.Summary}}</p>
  </div>

  <div class="section">
    <h2>Experience</h2>
    {{if .Experience}}{{range .Experience}}<div class="item">
      <div class="meta">
        <div class="left">{{.Left}}</div>
        <div class="right">{{.Right}}</div>
      </div>
      <ul>{{range .Bullets}}<li>{{.}}</li>{{end}}</ul>
    </div>
    {{end}}{{else}}<p>No experience selected.</p>{{end}}
  </div>

  <div class="section">
    <h2>Selected Projects</h2>
    {{if .Projects}}{{range .Projects}}<div class="item">
      <div class="meta">
        <div class="left">{{.Left}}</div>
        <div class="right">{{.Right}}</div>
      </div>
      <ul>{{range .Bullets}}<li>{{.}}</li>{{end}}</ul>
    </div>
    {{end}}{{else}}<p>No projects selected.</p>{{end}}
  </div>

  <div class="section">
    <h2>Technical Skills</h2>
    <div class="skills">
      {{range .Skills}}<div class="skill-block"><div class="label">{{.Label}}</div><div class="list"><ul>{{range .Items}}<li>{{.}}</li>{{end}}</ul></div></div>{{end}}
    </div>
  </div>
</div>
</body>
</html>
`))

type resumeData struct {
	Title      string
	CSS        template.CSS
	Name       string
	Role       string
	Phone      string
	Email      string
	Location   string
	Links      []store.Link
	Summary    string
	Experience []sectionItem
	Projects   []sectionItem
	Skills     []skillBlock
}

type sectionItem struct {
	Left    string
	Right   string
	Bullets []string
}

type skillBlock struct {
	Label string
	Items []string
}

// Resume renders a drafted package over the master data into a full HTML
// document. Plan entries whose ids no longer exist in the master data are
// skipped; plan bullets override the master bullets when present.
func Resume(master store.MasterDoc, pkg ai.ResumePackage, css string) (string, error) {
	title := pkg.JobTitle
	if title == "" {
		title = "Resume"
	}

	data := resumeData{
		Title:      fmt.Sprintf("%s – %s", master.Name, title),
		CSS:        template.CSS(css),
		Name:       master.Name,
		Role:       pkg.JobTitle,
		Phone:      master.Contact.Phone,
		Email:      master.Contact.Email,
		Location:   master.Contact.Location,
		Links:      master.Contact.Links,
		Summary:    pkg.Summary,
		Experience: experienceItems(master, pkg.Experience),
		Projects:   projectItems(master, pkg.Projects),
		Skills:     buildSkillBlocks(master, pkg.Skills),
	}

	var out strings.Builder
	if err := resumeTmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("rendering resume: %w", err)
	}
	return out.String(), nil
}

func experienceItems(master store.MasterDoc, plans []store.SectionPlan) []sectionItem {
	lookup := map[string]store.Experience{}
	for _, exp := range master.Experience {
		lookup[exp.ID] = exp
	}
	var items []sectionItem
	for _, plan := range plans {
		exp, ok := lookup[plan.ID]
		if !ok {
			continue
		}
		bullets := plan.Bullets
		if len(bullets) == 0 {
			bullets = exp.Bullets
		}
		items = append(items, sectionItem{
			Left:    fmt.Sprintf("%s — %s", exp.Company, exp.Title),
			Right:   exp.Dates,
			Bullets: nonEmpty(bullets),
		})
	}
	return items
}

func projectItems(master store.MasterDoc, plans []store.SectionPlan) []sectionItem {
	lookup := map[string]store.Project{}
	for _, proj := range master.Projects {
		lookup[proj.ID] = proj
	}
	var items []sectionItem
	for _, plan := range plans {
		proj, ok := lookup[plan.ID]
		if !ok {
			continue
		}
		bullets := plan.Bullets
		if len(bullets) == 0 {
			bullets = proj.Bullets
		}
		items = append(items, sectionItem{
			Left:    proj.Name,
			Right:   string(proj.Year),
			Bullets: nonEmpty(bullets),
		})
	}
	return items
}

// buildSkillBlocks groups the drafted skill references back into catalog
// categories: resolve each reference to a known label where possible,
// find its category by id then by label, and park everything else under
// "other". Catalog categories keep a stable sorted order; "other" renders
// last.
func buildSkillBlocks(master store.MasterDoc, plans []store.SkillPlan) []skillBlock {
	skillLookup := map[string]string{}
	categoryLabels := map[string][]string{}
	skillToCategory := map[string]string{}

	order := make([]string, 0, len(master.Skills))
	for category := range master.Skills {
		order = append(order, category)
	}
	sort.Strings(order)
	for _, category := range order {
		for _, skill := range master.Skills[category] {
			categoryLabels[category] = append(categoryLabels[category], skill.Label)
			skillLookup[skill.ID] = skill.Label
			skillLookup[strings.ToLower(skill.Label)] = skill.Label
			skillToCategory[skill.ID] = category
		}
	}

	resolveCategory := func(skillID, label string) string {
		if skillID != "" {
			if category, ok := skillToCategory[skillID]; ok {
				return category
			}
		}
		if label == "" {
			return ""
		}
		for _, category := range order {
			for _, known := range categoryLabels[category] {
				if known == label || strings.EqualFold(known, label) {
					return category
				}
			}
		}
		return ""
	}

	entries := map[string][]string{}
	blockOrder := slices.Clone(order)
	for _, plan := range plans {
		resolved := ""
		if plan.ID != "" {
			resolved = skillLookup[plan.ID]
		}
		if resolved == "" && plan.Label != "" {
			resolved = skillLookup[strings.ToLower(plan.Label)]
		}
		if resolved == "" {
			resolved = plan.Label
		}

		category := resolveCategory(plan.ID, resolved)
		if category == "" {
			category = resolveCategory(plan.ID, plan.Label)
		}
		if category == "" {
			category = "other"
			if !slices.Contains(blockOrder, "other") {
				blockOrder = append(blockOrder, "other")
			}
		}

		if resolved == "" {
			continue
		}
		if !slices.Contains(entries[category], resolved) {
			entries[category] = append(entries[category], resolved)
		}
	}

	caser := cases.Title(language.English)
	var blocks []skillBlock
	for _, category := range blockOrder {
		labels := entries[category]
		if len(labels) == 0 {
			continue
		}
		blocks = append(blocks, skillBlock{
			Label: caser.String(strings.ReplaceAll(category, "_", " ")),
			Items: labels,
		})
	}
	return blocks
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
