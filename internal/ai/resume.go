package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"

	"careerdesk/internal/store"
)

const resumeSystemPrompt = `You are an assistant that crafts tailored resumes.
Task requirements:
- Use only the provided experience, projects, and skills from the master data.
- Select at least two experience entries (3 preferred) that best match the job ad, and include refreshed bullet language referencing the role.
- Select at least two projects (3 preferred) with tailored bullets.
- Provide a concise, job-aligned summary sentence (2–3 sentences).
- Include a skill list referencing existing labels; reuse IDs when available.
- Populate the title with the target job title gleaned from the posting.
- Return JSON only, matching the provided schema exactly. Never return an empty array for experience or projects.`

const (
	fallbackSummary  = "Data and automation specialist aligning analytics, AI workflows, and modern web tooling to deliver measurable improvements."
	fallbackJobTitle = "Target Role"
)

// ResumePackage is the drafted plan for one tailored resume.
type ResumePackage struct {
	JobTitle        string
	Summary         string
	ReasoningEffort string
	Verbosity       string
	Experience      []store.SectionPlan
	Projects        []store.SectionPlan
	Skills          []store.SkillPlan
}

// ResumeDraft bundles the package with the denormalized ids and labels
// the stored record keeps, plus the provider's token usage.
type ResumeDraft struct {
	Package          ResumePackage
	ExperienceIDs    []string
	ProjectIDs       []string
	SkillLabels      []string
	ResumeTokenCount *int
}

// resumeReply matches the provider's JSON loosely: plan and skill items
// may arrive as bare strings.
type resumeReply struct {
	JobTitle        string            `json:"job_title"`
	Summary         string            `json:"summary"`
	ReasoningEffort string            `json:"reasoning_effort"`
	Verbosity       string            `json:"verbosity"`
	Experience      []json.RawMessage `json:"experience"`
	Projects        []json.RawMessage `json:"projects"`
	Skills          []json.RawMessage `json:"skills"`
}

// DraftResume asks the provider for a resume plan tailored to the job ad.
// Empty selections are backfilled from the top of the master data so the
// rendered resume is never blank.
func (d *Drafter) DraftResume(ctx context.Context, master store.MasterDoc, jobAd, extraInstruction string) (*ResumeDraft, error) {
	if d.gen == nil {
		return nil, ErrNotConfigured
	}

	start := time.Now()

	instructions := resumeSystemPrompt
	if extra := strings.TrimSpace(extraInstruction); extra != "" {
		instructions += "\n\nAdditional guidance:\n" + extra
	}
	instructions += "\n\nAvailable information:\n" + formatMasterContext(master) + "\n\nJob ad follows."
	instructions += "\n\nReturn a resume plan only (no cover letter yet)."

	res, err := d.gen.GenerateText(ctx, Request{
		System:          instructions,
		User:            "Job ad:\n" + strings.TrimSpace(jobAd),
		SchemaName:      resumeSchemaName,
		Schema:          resumePackageSchemaBytes,
		ReasoningEffort: "minimal",
		Verbosity:       "medium",
	})
	if err != nil {
		return nil, err
	}

	raw := []byte(CleanJSON(res.Text))
	d.warnOnSchemaDrift(resumeSchemaName, raw, getResumeSchema)

	var reply resumeReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	pkg := ResumePackage{
		JobTitle:        strings.TrimSpace(reply.JobTitle),
		Summary:         strings.TrimSpace(reply.Summary),
		ReasoningEffort: reply.ReasoningEffort,
		Verbosity:       reply.Verbosity,
		Experience:      normalizePlanList(reply.Experience),
		Projects:        normalizePlanList(reply.Projects),
		Skills:          normalizeSkillPlans(reply.Skills),
	}
	if pkg.ReasoningEffort == "" {
		pkg.ReasoningEffort = "minimal"
	}
	if pkg.Verbosity == "" {
		pkg.Verbosity = "medium"
	}
	applyResumeFallbacks(&pkg, master)

	draft := &ResumeDraft{
		Package:          pkg,
		ResumeTokenCount: res.OutputTokens,
	}
	for _, entry := range pkg.Experience {
		if entry.ID != "" {
			draft.ExperienceIDs = append(draft.ExperienceIDs, entry.ID)
		}
	}
	for _, entry := range pkg.Projects {
		if entry.ID != "" {
			draft.ProjectIDs = append(draft.ProjectIDs, entry.ID)
		}
	}
	skillLookup, categoryLookup, skillToCategory := skillLabelMaps(master)
	for _, entry := range pkg.Skills {
		if label := resolveSkillLabel(entry, skillLookup, categoryLookup, skillToCategory); label != "" {
			draft.SkillLabels = append(draft.SkillLabels, label)
		}
	}

	d.logger.Info("resume draft complete",
		zap.String("provider", d.gen.Name()),
		zap.String("model", d.gen.Model()),
		zap.String("job_title", pkg.JobTitle),
		zap.Int("experience_entries", len(pkg.Experience)),
		zap.Int("project_entries", len(pkg.Projects)),
		zap.Duration("duration", time.Since(start)))

	return draft, nil
}

// applyResumeFallbacks fills empty selections from the top of the master
// data and defaults the summary and title.
func applyResumeFallbacks(pkg *ResumePackage, master store.MasterDoc) {
	if len(pkg.Experience) == 0 {
		for _, exp := range master.Experience {
			pkg.Experience = append(pkg.Experience, store.SectionPlan{ID: exp.ID, Bullets: firstN(exp.Bullets, 4)})
			if len(pkg.Experience) == 2 {
				break
			}
		}
	}
	if len(pkg.Projects) == 0 {
		for _, proj := range master.Projects {
			pkg.Projects = append(pkg.Projects, store.SectionPlan{ID: proj.ID, Bullets: firstN(proj.Bullets, 3)})
			if len(pkg.Projects) == 3 {
				break
			}
		}
	}
	if len(pkg.Skills) == 0 {
		for _, category := range sortedCategories(master.Skills) {
			for _, skill := range master.Skills[category] {
				pkg.Skills = append(pkg.Skills, store.SkillPlan{ID: skill.ID, Label: skill.Label})
				if len(pkg.Skills) >= 6 {
					break
				}
			}
			if len(pkg.Skills) >= 6 {
				break
			}
		}
	}
	if pkg.Summary == "" {
		pkg.Summary = fallbackSummary
	}
	if pkg.JobTitle == "" {
		pkg.JobTitle = fallbackJobTitle
	}
}

// normalizePlanList tolerates bare-string entries and trims the rest.
func normalizePlanList(items []json.RawMessage) []store.SectionPlan {
	var normalized []store.SectionPlan
	for _, raw := range items {
		var id string
		if err := json.Unmarshal(raw, &id); err == nil {
			if id = strings.TrimSpace(id); id != "" {
				normalized = append(normalized, store.SectionPlan{ID: id})
			}
			continue
		}

		var item struct {
			ID      string        `json:"id"`
			Bullets []interface{} `json:"bullets"`
			Notes   string        `json:"notes"`
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		entry := store.SectionPlan{
			ID:    strings.TrimSpace(item.ID),
			Notes: strings.TrimSpace(item.Notes),
		}
		for _, b := range item.Bullets {
			if text := strings.TrimSpace(fmt.Sprint(b)); text != "" {
				entry.Bullets = append(entry.Bullets, text)
			}
		}
		if entry.ID != "" || len(entry.Bullets) > 0 || entry.Notes != "" {
			normalized = append(normalized, entry)
		}
	}
	return normalized
}

// normalizeSkillPlans tolerates bare-string entries and trims the rest.
func normalizeSkillPlans(items []json.RawMessage) []store.SkillPlan {
	var normalized []store.SkillPlan
	for _, raw := range items {
		var label string
		if err := json.Unmarshal(raw, &label); err == nil {
			if label = strings.TrimSpace(label); label != "" {
				normalized = append(normalized, store.SkillPlan{Label: label})
			}
			continue
		}

		var item store.SkillPlan
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		item.ID = strings.TrimSpace(item.ID)
		item.Label = strings.TrimSpace(item.Label)
		if item.ID != "" || item.Label != "" {
			normalized = append(normalized, item)
		}
	}
	return normalized
}

// warnOnSchemaDrift validates the raw reply and logs any drift. The
// normalizers and fallbacks tolerate loose replies, so validation stays
// advisory rather than fatal.
func (d *Drafter) warnOnSchemaDrift(name string, raw []byte, load func() (*jsonschema.Schema, error)) {
	schema, err := load()
	if err != nil {
		d.logger.Warn("schema unavailable", zap.String("schema", name), zap.Error(err))
		return
	}
	if err := validateAgainst(schema, raw); err != nil {
		d.logger.Warn("AI reply drifted from schema", zap.String("schema", name), zap.Error(err))
	}
}
