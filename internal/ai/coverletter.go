package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"careerdesk/internal/store"
)

const coverLetterSystemPrompt = "You are writing a concise, first-person cover letter tailored to the provided job ad and resume outline.\n" +
	"Respond with plain text only. Use 2-4 paragraphs separated by blank lines. Avoid JSON or markdown."

// CoverLetterDraft is the drafted letter body plus the provider's token
// usage for the call.
type CoverLetterDraft struct {
	Text       string
	TokenCount *int
}

// DraftCoverLetter writes a cover letter for a stored generation. The
// prompt carries an outline of the record's selections so the letter can
// reference the same experience and projects as the resume.
func (d *Drafter) DraftCoverLetter(ctx context.Context, master store.MasterDoc, record store.Generation, extraInstruction string) (*CoverLetterDraft, error) {
	if d.gen == nil {
		return nil, ErrNotConfigured
	}

	start := time.Now()

	experiencePlan := record.ExperiencePlan
	if len(experiencePlan) == 0 {
		for _, id := range record.ExperienceIDs {
			experiencePlan = append(experiencePlan, store.SectionPlan{ID: id})
		}
	}
	projectPlan := record.ProjectPlan
	if len(projectPlan) == 0 {
		for _, id := range record.ProjectIDs {
			projectPlan = append(projectPlan, store.SectionPlan{ID: id})
		}
	}
	skillsPlan := record.SkillsPlan
	if len(skillsPlan) == 0 {
		for _, label := range record.SkillLabels {
			skillsPlan = append(skillsPlan, store.SkillPlan{Label: label})
		}
	}

	experienceText, projectText, skillsText := buildCoverLetterOutline(master, experiencePlan, projectPlan, skillsPlan)

	contextParts := []string{
		fmt.Sprintf("Target job title: %s", orPlaceholder(record.JobTitle, "(unspecified)")),
		fmt.Sprintf("Resume summary: %s", orPlaceholder(record.Summary, "(none)")),
		"Experience selections:",
		orPlaceholder(experienceText, "(no experience selected)"),
		"",
		"Project selections:",
		orPlaceholder(projectText, "(no projects selected)"),
		"",
		"Highlighted skills:",
		orPlaceholder(skillsText, "(no skills highlighted)"),
	}

	user := "Job ad:\n" + orPlaceholder(record.JobAd, "(job ad not provided)") +
		"\n\nResume outline:\n" + strings.Join(contextParts, "\n")
	if extra := strings.TrimSpace(extraInstruction); extra != "" {
		user += "\n\nAdditional instructions:\n" + extra
	}

	res, err := d.gen.GenerateText(ctx, Request{
		System:          coverLetterSystemPrompt,
		User:            user,
		ReasoningEffort: "minimal",
		Verbosity:       "medium",
	})
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(res.Text)
	// Some replies come back wrapped in JSON despite the plain-text ask.
	if strings.HasPrefix(text, "{") {
		var wrapped struct {
			CoverLetter string `json:"cover_letter"`
		}
		if err := json.Unmarshal([]byte(text), &wrapped); err == nil && wrapped.CoverLetter != "" {
			text = strings.TrimSpace(wrapped.CoverLetter)
		}
	}

	d.logger.Info("cover letter draft complete",
		zap.String("provider", d.gen.Name()),
		zap.String("model", d.gen.Model()),
		zap.String("generation_id", record.ID),
		zap.Duration("duration", time.Since(start)))

	return &CoverLetterDraft{Text: text, TokenCount: res.OutputTokens}, nil
}

// buildCoverLetterOutline summarizes the record's selections against the
// master data. Plan entries whose ids no longer exist are skipped.
func buildCoverLetterOutline(master store.MasterDoc, experiencePlan, projectPlan []store.SectionPlan, skillsPlan []store.SkillPlan) (string, string, string) {
	experienceLookup := map[string]store.Experience{}
	for _, exp := range master.Experience {
		experienceLookup[exp.ID] = exp
	}
	projectLookup := map[string]store.Project{}
	for _, proj := range master.Projects {
		projectLookup[proj.ID] = proj
	}
	skillLookup, categoryLookup, skillToCategory := skillLabelMaps(master)

	var expLines []string
	for _, item := range experiencePlan {
		exp, ok := experienceLookup[item.ID]
		if !ok {
			continue
		}
		bullets := item.Bullets
		if len(bullets) == 0 {
			bullets = exp.Bullets
		}
		expLines = append(expLines, fmt.Sprintf("- %s — %s (%s): %s",
			exp.Company, exp.Title, exp.Dates, strings.Join(firstN(bullets, 4), "; ")))
	}

	var projLines []string
	for _, item := range projectPlan {
		proj, ok := projectLookup[item.ID]
		if !ok {
			continue
		}
		bullets := item.Bullets
		if len(bullets) == 0 {
			bullets = proj.Bullets
		}
		projLines = append(projLines, fmt.Sprintf("- %s (%s): %s",
			proj.Name, proj.Year, strings.Join(firstN(bullets, 4), "; ")))
	}

	var skillLabels []string
	for _, entry := range skillsPlan {
		if label := resolveSkillLabel(entry, skillLookup, categoryLookup, skillToCategory); label != "" {
			skillLabels = append(skillLabels, label)
		}
	}

	return strings.Join(expLines, "\n"), strings.Join(projLines, "\n"), strings.Join(skillLabels, ", ")
}

func orPlaceholder(value, placeholder string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return placeholder
}
