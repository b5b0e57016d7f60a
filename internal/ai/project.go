package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"careerdesk/internal/store"
)

const projectSystemPromptTemplate = `You assist with maintaining a JSON resume knowledge base.
Return structured JSON that matches the provided schema exactly.

Reuse existing skills when possible. The skills catalog is grouped by category:
%s

Experiences available (id — company — title):
%s

If you reference experience, use the id when possible or the company name.
Use concise, result-focused bullets. Keep the year field short (e.g., 2024).
Always respond with JSON only. Schema:
%s
`

// ProjectDraft is a drafted project entry. The tolerant field types keep
// parsing alive when the provider returns a bare-number year, a single
// bullet string, or object-shaped experience references.
type ProjectDraft struct {
	Name             string            `json:"name"`
	Year             store.Year        `json:"year"`
	DescriptionShort string            `json:"description_short"`
	Bullets          store.Bullets     `json:"bullets"`
	Skills           []store.SkillSpec `json:"skills"`
	LinkedExperience []ExperienceRef   `json:"linked_experience"`
}

// ExperienceRef is a drafted reference to an experience entry: an id, a
// company name, or an object carrying either.
type ExperienceRef string

func (r *ExperienceRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = ExperienceRef(strings.TrimSpace(s))
		return nil
	}
	var obj struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Company string `json:"company"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("linked experience entry must be a string or an object")
	}
	for _, candidate := range []string{obj.ID, obj.Name, obj.Company} {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			*r = ExperienceRef(candidate)
			return nil
		}
	}
	*r = ""
	return nil
}

// DraftProject asks the provider to draft or rework one project entry
// from a free-form description. When existing is non-nil its current
// JSON is included so the reply improves it rather than starting over.
func (d *Drafter) DraftProject(ctx context.Context, master store.MasterDoc, contextText string, existing *store.Project, extraInstruction string) (*ProjectDraft, error) {
	if d.gen == nil {
		return nil, ErrNotConfigured
	}

	start := time.Now()

	instructions := fmt.Sprintf(projectSystemPromptTemplate,
		skillsCatalog(master),
		experienceCatalog(master),
		strings.TrimSpace(string(projectUpdateSchemaBytes)))
	if extra := strings.TrimSpace(extraInstruction); extra != "" {
		instructions += "\n\nAdditional guidance:\n" + extra
	}

	userParts := []string{strings.TrimSpace(contextText)}
	if existing != nil {
		current, err := json.MarshalIndent(existing, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding current project: %w", err)
		}
		userParts = append(userParts, "Current project data (update and improve it):\n"+string(current))
	}

	res, err := d.gen.GenerateText(ctx, Request{
		System:          instructions,
		User:            strings.Join(userParts, "\n\n"),
		SchemaName:      projectSchemaName,
		Schema:          projectUpdateSchemaBytes,
		ReasoningEffort: "minimal",
		Verbosity:       "medium",
	})
	if err != nil {
		return nil, err
	}

	raw := []byte(CleanJSON(res.Text))
	d.warnOnSchemaDrift(projectSchemaName, raw, getProjectSchema)

	var reply struct {
		Project json.RawMessage `json:"project"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	payload := bytes.TrimSpace(reply.Project)
	if len(payload) == 0 || payload[0] != '{' {
		return nil, errors.New("AI did not return a project payload")
	}

	var draft ProjectDraft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	draft.Name = strings.TrimSpace(draft.Name)
	draft.DescriptionShort = strings.TrimSpace(draft.DescriptionShort)

	d.logger.Info("project draft complete",
		zap.String("provider", d.gen.Name()),
		zap.String("model", d.gen.Model()),
		zap.String("project", draft.Name),
		zap.Duration("duration", time.Since(start)))

	return &draft, nil
}

// skillsCatalog renders the skills grouped by category for the prompt.
func skillsCatalog(master store.MasterDoc) string {
	var lines []string
	for _, category := range sortedCategories(master.Skills) {
		var labels []string
		for _, skill := range master.Skills[category] {
			if skill.Label != "" {
				labels = append(labels, skill.Label)
			}
		}
		if len(labels) > 0 {
			lines = append(lines, fmt.Sprintf("- %s: %s", category, strings.Join(labels, ", ")))
		}
	}
	if len(lines) == 0 {
		return "(no skills defined)"
	}
	return strings.Join(lines, "\n")
}

// experienceCatalog renders the experience entries for the prompt.
func experienceCatalog(master store.MasterDoc) string {
	var lines []string
	for _, exp := range master.Experience {
		lines = append(lines, fmt.Sprintf("- %s — %s — %s", exp.ID, exp.Company, exp.Title))
	}
	if len(lines) == 0 {
		return "(no experience entries)"
	}
	return strings.Join(lines, "\n")
}
