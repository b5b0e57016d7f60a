package ai

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"careerdesk/internal/store"
)

// Drafter runs the drafting flows over one provider.
type Drafter struct {
	gen    TextGenerator
	logger *zap.Logger
}

// NewDrafter creates a Drafter. A nil generator is allowed and makes
// every drafting call fail with ErrNotConfigured.
func NewDrafter(gen TextGenerator, logger *zap.Logger) *Drafter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Drafter{gen: gen, logger: logger}
}

// Configured reports whether a provider is available.
func (d *Drafter) Configured() bool { return d.gen != nil }

// formatMasterContext flattens the master data into the catalog block
// the resume prompt carries. Skill categories are sorted so the prompt
// is stable across runs.
func formatMasterContext(master store.MasterDoc) string {
	sections := []string{fmt.Sprintf("Name: %s", master.Name)}

	sections = append(sections, "Experience:")
	for _, exp := range master.Experience {
		bullets := strings.Join(firstN(exp.Bullets, 5), "; ")
		sections = append(sections, fmt.Sprintf("- %s — %s — %s — %s :: %s", exp.ID, exp.Company, exp.Title, exp.Dates, bullets))
	}

	sections = append(sections, "Projects:")
	for _, proj := range master.Projects {
		bullets := strings.Join(firstN(proj.Bullets, 4), "; ")
		sections = append(sections, fmt.Sprintf("- %s — %s (%s) :: %s", proj.ID, proj.Name, proj.Year, bullets))
	}

	sections = append(sections, "Skills:")
	for _, category := range sortedCategories(master.Skills) {
		labels := make([]string, 0, len(master.Skills[category]))
		for _, skill := range master.Skills[category] {
			labels = append(labels, skill.Label)
		}
		sections = append(sections, fmt.Sprintf("- %s: %s", category, strings.Join(labels, ", ")))
	}

	return strings.Join(sections, "\n")
}

// skillLabelMaps indexes the skills catalog three ways: id and lowercase
// label to display label, category to its labels, and id to category.
func skillLabelMaps(master store.MasterDoc) (skillLookup map[string]string, categoryLookup map[string][]string, skillToCategory map[string]string) {
	skillLookup = map[string]string{}
	categoryLookup = map[string][]string{}
	skillToCategory = map[string]string{}
	for _, category := range sortedCategories(master.Skills) {
		labels := make([]string, 0, len(master.Skills[category]))
		for _, skill := range master.Skills[category] {
			labels = append(labels, skill.Label)
			skillLookup[skill.ID] = skill.Label
			skillLookup[strings.ToLower(skill.Label)] = skill.Label
			skillToCategory[skill.ID] = category
		}
		categoryLookup[category] = labels
	}
	return skillLookup, categoryLookup, skillToCategory
}

// resolveSkillLabel turns one skill plan entry into a display label:
// explicit label first, then catalog lookup by id, then the id's whole
// category, then the raw id.
func resolveSkillLabel(entry store.SkillPlan, skillLookup map[string]string, categoryLookup map[string][]string, skillToCategory map[string]string) string {
	if entry.Label != "" {
		return entry.Label
	}
	if entry.ID == "" {
		return ""
	}
	if label, ok := skillLookup[entry.ID]; ok {
		return label
	}
	if category, ok := skillToCategory[entry.ID]; ok {
		if joined := strings.Join(categoryLookup[category], ", "); joined != "" {
			return joined
		}
	}
	return entry.ID
}

func sortedCategories(skills map[string][]store.Skill) []string {
	categories := make([]string, 0, len(skills))
	for category := range skills {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
