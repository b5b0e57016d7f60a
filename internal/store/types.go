package store

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Link is one contact link (GitHub, LinkedIn, portfolio).
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Contact holds the header block of the master document.
type Contact struct {
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Location string `json:"location"`
	Links    []Link `json:"links"`
}

// Experience is one work history entry.
type Experience struct {
	ID      string   `json:"id"`
	Company string   `json:"company"`
	Title   string   `json:"title"`
	Dates   string   `json:"dates"`
	Bullets []string `json:"bullets"`
}

// Project is one portfolio entry. SkillsUsed and LinkedExperience hold ids
// into the skills map and the experience list.
type Project struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Year             Year     `json:"year"`
	DescriptionShort string   `json:"description_short"`
	Bullets          []string `json:"bullets"`
	SkillsUsed       []string `json:"skills_used"`
	LinkedExperience []string `json:"linked_experience"`
}

// Skill is one labelled skill inside a category.
type Skill struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// UnmarshalJSON accepts the bare-string form older hand-edited files use
// ("Python" instead of {"id": "python", "label": "Python"}). The missing id
// is backfilled by MasterStore.Backfill.
func (s *Skill) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		s.ID = ""
		s.Label = label
		return nil
	}
	type plain Skill
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("skill must be a string or an object: %w", err)
	}
	*s = Skill(p)
	return nil
}

// MasterDoc is the whole of data/master.json.
type MasterDoc struct {
	Name       string             `json:"name"`
	Contact    Contact            `json:"contact"`
	Summary    map[string]string  `json:"summary"`
	Experience []Experience       `json:"experience"`
	Projects   []Project          `json:"projects"`
	Skills     map[string][]Skill `json:"skills"`
}

// normalize replaces nil containers with empty ones so a written document
// never contains JSON nulls where the schema expects lists or objects.
func (d *MasterDoc) normalize() {
	if d.Contact.Links == nil {
		d.Contact.Links = []Link{}
	}
	if d.Summary == nil {
		d.Summary = map[string]string{}
	}
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	if d.Skills == nil {
		d.Skills = map[string][]Skill{}
	}
	for i := range d.Experience {
		if d.Experience[i].Bullets == nil {
			d.Experience[i].Bullets = []string{}
		}
	}
	for i := range d.Projects {
		p := &d.Projects[i]
		if p.Bullets == nil {
			p.Bullets = []string{}
		}
		if p.SkillsUsed == nil {
			p.SkillsUsed = []string{}
		}
		if p.LinkedExperience == nil {
			p.LinkedExperience = []string{}
		}
	}
	for category, entries := range d.Skills {
		if entries == nil {
			d.Skills[category] = []Skill{}
		}
	}
}

// Year tolerates hand-edited files that store the year as a bare number.
type Year string

func (y *Year) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*y = Year(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("year must be a string or a number")
	}
	*y = Year(n.String())
	return nil
}

// Bullets accepts either a JSON list or a single newline-separated string
// and normalizes both to trimmed, non-empty lines.
type Bullets []string

func (b *Bullets) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*b = splitBullets(text)
		return nil
	}
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("bullets must be a list or a newline-separated string")
	}
	out := make(Bullets, 0, len(raw))
	for _, v := range raw {
		text := strings.TrimSpace(fmt.Sprint(v))
		if text != "" {
			out = append(out, text)
		}
	}
	*b = out
	return nil
}

func splitBullets(text string) Bullets {
	out := Bullets{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ProjectPatch carries the project fields a create or update may set.
// Pointer fields distinguish absent keys from explicit zero values.
type ProjectPatch struct {
	Name             *string   `json:"name"`
	Year             *Year     `json:"year"`
	DescriptionShort *string   `json:"description_short"`
	Bullets          *Bullets  `json:"bullets"`
	SkillsUsed       *[]string `json:"skills_used"`
	LinkedExperience *[]string `json:"linked_experience"`
}

// ExperiencePatch carries the experience fields a create or update may set.
type ExperiencePatch struct {
	Company *string  `json:"company"`
	Title   *string  `json:"title"`
	Dates   *string  `json:"dates"`
	Bullets *Bullets `json:"bullets"`
}

// SkillSpec describes a skill requested by an AI draft: a label plus
// optional id and category hints.
type SkillSpec struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// SkillPatch updates a skill's label and, when Category is set, moves the
// skill to that category.
type SkillPatch struct {
	Label    *string `json:"label"`
	Category *string `json:"category"`
}

// SkillUsage points at one project that lists a skill in skills_used.
type SkillUsage struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
}

// SkillWithUsage is a skill plus the projects that reference it.
type SkillWithUsage struct {
	Skill
	Usage []SkillUsage `json:"usage"`
}
