package store

import (
	"fmt"
	"sort"
	"strings"
)

// MasterStore wraps data/master.json with structured operations over the
// career master document.
type MasterStore struct {
	file *File[MasterDoc]
}

// NewMasterStore opens path and immediately backfills missing ids and
// defaults left behind by hand edits.
func NewMasterStore(path string) (*MasterStore, error) {
	s := &MasterStore{file: NewFile[MasterDoc](path)}
	if _, err := s.Backfill(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the master file.
func (s *MasterStore) Path() string { return s.file.Path() }

// Backfill normalizes a hand-edited document: experience and project
// entries get slugged ids, projects get their optional containers, and
// skills written as bare strings become {id, label} objects. Nothing is
// written when the document is already clean, so repeated calls settle.
func (s *MasterStore) Backfill() (bool, error) {
	return s.file.Repair(func(doc *MasterDoc) bool {
		mutated := false

		expIDs := map[string]struct{}{}
		for i := range doc.Experience {
			item := &doc.Experience[i]
			if item.ID == "" {
				base := item.Company
				if base == "" {
					base = "experience"
				}
				item.ID = EnsureUniqueID(base, memberOf(expIDs))
				mutated = true
			}
			expIDs[item.ID] = struct{}{}
		}

		projectIDs := map[string]struct{}{}
		for i := range doc.Projects {
			p := &doc.Projects[i]
			if p.ID == "" {
				base := p.Name
				if base == "" {
					base = "project"
				}
				p.ID = EnsureUniqueID(base, memberOf(projectIDs))
				mutated = true
			}
			projectIDs[p.ID] = struct{}{}

			if p.SkillsUsed == nil {
				p.SkillsUsed = []string{}
				mutated = true
			}
			if p.LinkedExperience == nil {
				p.LinkedExperience = []string{}
				mutated = true
			}
			if p.Bullets == nil {
				p.Bullets = []string{}
				mutated = true
			}
		}

		for category, entries := range doc.Skills {
			seen := map[string]struct{}{}
			for i := range entries {
				sk := &entries[i]
				label := strings.TrimSpace(sk.Label)
				if sk.ID == "" {
					base := label
					if base == "" {
						base = "skill"
					}
					sk.ID = EnsureUniqueID(base, memberOf(seen))
					mutated = true
				}
				if label != sk.Label {
					sk.Label = label
					mutated = true
				}
				seen[sk.ID] = struct{}{}
			}
			doc.Skills[category] = entries
		}

		if mutated {
			doc.normalize()
		}
		return mutated
	})
}

func (s *MasterStore) update(fn func(*MasterDoc) error) error {
	_, err := s.file.Update(func(doc *MasterDoc) error {
		if err := fn(doc); err != nil {
			return err
		}
		doc.normalize()
		return nil
	})
	return err
}

// Snapshot returns the full master document.
func (s *MasterStore) Snapshot() (MasterDoc, error) {
	return s.file.Read()
}

// SummaryKeys lists the available summary variants, sorted.
func (s *MasterStore) SummaryKeys() ([]string, error) {
	doc, err := s.file.Read()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(doc.Summary))
	for key := range doc.Summary {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// ---------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------

// ListProjects returns every project entry.
func (s *MasterStore) ListProjects() ([]Project, error) {
	doc, err := s.file.Read()
	if err != nil {
		return nil, err
	}
	if doc.Projects == nil {
		return []Project{}, nil
	}
	return doc.Projects, nil
}

// CreateProject appends a new project. The id is slugged from the name and
// deduplicated against existing project ids.
func (s *MasterStore) CreateProject(patch ProjectPatch) (Project, error) {
	var created Project
	err := s.update(func(doc *MasterDoc) error {
		existing := map[string]struct{}{}
		for _, p := range doc.Projects {
			if p.ID != "" {
				existing[p.ID] = struct{}{}
			}
		}
		base := "project"
		if patch.Name != nil {
			base = *patch.Name
		}
		project := Project{
			ID:               EnsureUniqueID(base, memberOf(existing)),
			Bullets:          []string{},
			SkillsUsed:       []string{},
			LinkedExperience: []string{},
		}
		applyProjectPatch(&project, patch)
		doc.Projects = append(doc.Projects, project)
		created = project
		return nil
	})
	if err != nil {
		return Project{}, err
	}
	return created, nil
}

// UpdateProject applies the fields present in patch to an existing project.
func (s *MasterStore) UpdateProject(projectID string, patch ProjectPatch) (Project, error) {
	var updated Project
	err := s.update(func(doc *MasterDoc) error {
		for i := range doc.Projects {
			if doc.Projects[i].ID == projectID {
				applyProjectPatch(&doc.Projects[i], patch)
				updated = doc.Projects[i]
				return nil
			}
		}
		return fmt.Errorf("project '%s': %w", projectID, ErrNotFound)
	})
	if err != nil {
		return Project{}, err
	}
	return updated, nil
}

// DeleteProject removes a project by id.
func (s *MasterStore) DeleteProject(projectID string) error {
	return s.update(func(doc *MasterDoc) error {
		filtered := doc.Projects[:0]
		for _, p := range doc.Projects {
			if p.ID != projectID {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) == len(doc.Projects) {
			return fmt.Errorf("project '%s': %w", projectID, ErrNotFound)
		}
		doc.Projects = filtered
		return nil
	})
}

func applyProjectPatch(project *Project, patch ProjectPatch) {
	if patch.Name != nil {
		project.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Year != nil {
		project.Year = Year(strings.TrimSpace(string(*patch.Year)))
	}
	if patch.DescriptionShort != nil {
		project.DescriptionShort = strings.TrimSpace(*patch.DescriptionShort)
	}
	if patch.Bullets != nil {
		project.Bullets = []string(*patch.Bullets)
	}
	if patch.SkillsUsed != nil {
		project.SkillsUsed = dedupeStrings(*patch.SkillsUsed)
	}
	if patch.LinkedExperience != nil {
		project.LinkedExperience = dedupeStrings(*patch.LinkedExperience)
	}
}

// ---------------------------------------------------------------------
// Skills
// ---------------------------------------------------------------------

// ListSkills returns the skills map grouped by category.
func (s *MasterStore) ListSkills() (map[string][]Skill, error) {
	doc, err := s.file.Read()
	if err != nil {
		return nil, err
	}
	if doc.Skills == nil {
		return map[string][]Skill{}, nil
	}
	return doc.Skills, nil
}

// ListSkillsWithUsage returns the skills map with, per skill, the projects
// that reference it through skills_used.
func (s *MasterStore) ListSkillsWithUsage() (map[string][]SkillWithUsage, error) {
	doc, err := s.file.Read()
	if err != nil {
		return nil, err
	}
	usage := map[string][]SkillUsage{}
	for _, p := range doc.Projects {
		for _, skillID := range p.SkillsUsed {
			usage[skillID] = append(usage[skillID], SkillUsage{ProjectID: p.ID, ProjectName: p.Name})
		}
	}
	out := make(map[string][]SkillWithUsage, len(doc.Skills))
	for category, entries := range doc.Skills {
		withUsage := make([]SkillWithUsage, 0, len(entries))
		for _, sk := range entries {
			u := usage[sk.ID]
			if u == nil {
				u = []SkillUsage{}
			}
			withUsage = append(withUsage, SkillWithUsage{Skill: sk, Usage: u})
		}
		out[category] = withUsage
	}
	return out, nil
}

// AddSkill appends a skill to a category. The id is slugged from the label
// and kept unique across every category so project references stay
// unambiguous.
func (s *MasterStore) AddSkill(category, label string) (Skill, error) {
	category = strings.TrimSpace(category)
	label = strings.TrimSpace(label)
	if category == "" || label == "" {
		return Skill{}, fmt.Errorf("category and label are required: %w", ErrInvalid)
	}

	var created Skill
	err := s.update(func(doc *MasterDoc) error {
		if doc.Skills == nil {
			doc.Skills = map[string][]Skill{}
		}
		created = Skill{ID: EnsureUniqueID(label, memberOf(allSkillIDs(doc))), Label: label}
		doc.Skills[category] = append(doc.Skills[category], created)
		return nil
	})
	if err != nil {
		return Skill{}, err
	}
	return created, nil
}

// UpdateSkill renames a skill and, when patch.Category is set, moves it to
// another category.
func (s *MasterStore) UpdateSkill(category, skillID string, patch SkillPatch) (Skill, error) {
	var updated Skill
	err := s.update(func(doc *MasterDoc) error {
		entries, ok := doc.Skills[category]
		if !ok {
			return fmt.Errorf("category '%s': %w", category, ErrNotFound)
		}
		idx := -1
		for i := range entries {
			if entries[i].ID == skillID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("skill '%s' not found in '%s': %w", skillID, category, ErrNotFound)
		}

		if patch.Label != nil {
			entries[idx].Label = strings.TrimSpace(*patch.Label)
		}
		updated = entries[idx]

		if patch.Category == nil || strings.TrimSpace(*patch.Category) == category {
			doc.Skills[category] = entries
			return nil
		}
		target := strings.TrimSpace(*patch.Category)
		if target == "" {
			return fmt.Errorf("category must not be empty: %w", ErrInvalid)
		}
		for _, existing := range doc.Skills[target] {
			if existing.ID == skillID {
				return fmt.Errorf("skill '%s' already in '%s': %w", skillID, target, ErrConflict)
			}
		}
		doc.Skills[category] = append(entries[:idx], entries[idx+1:]...)
		doc.Skills[target] = append(doc.Skills[target], updated)
		return nil
	})
	if err != nil {
		return Skill{}, err
	}
	return updated, nil
}

// DeleteSkill removes a skill and strips its id from every project's
// skills_used list.
func (s *MasterStore) DeleteSkill(category, skillID string) error {
	return s.update(func(doc *MasterDoc) error {
		entries, ok := doc.Skills[category]
		if !ok {
			return fmt.Errorf("category '%s': %w", category, ErrNotFound)
		}
		filtered := entries[:0]
		for _, sk := range entries {
			if sk.ID != skillID {
				filtered = append(filtered, sk)
			}
		}
		if len(filtered) == len(entries) {
			return fmt.Errorf("skill '%s' not found in '%s': %w", skillID, category, ErrNotFound)
		}
		doc.Skills[category] = filtered

		for i := range doc.Projects {
			doc.Projects[i].SkillsUsed = removeString(doc.Projects[i].SkillsUsed, skillID)
		}
		return nil
	})
}

// EnsureSkills resolves each spec to a skill id, creating skills that do
// not exist yet. Matching prefers an exact id, then a case-insensitive
// label match across all categories; new skills land in the spec's
// category, or "other". Returned ids keep the spec order, deduplicated.
func (s *MasterStore) EnsureSkills(specs []SkillSpec) ([]string, error) {
	ids := []string{}
	err := s.update(func(doc *MasterDoc) error {
		if doc.Skills == nil {
			doc.Skills = map[string][]Skill{}
		}
		seen := map[string]struct{}{}
		for _, spec := range specs {
			id := resolveSkillID(doc, spec)
			if id == "" {
				label := strings.TrimSpace(spec.Label)
				if label == "" {
					continue
				}
				category := strings.TrimSpace(spec.Category)
				if category == "" {
					category = "other"
				}
				id = EnsureUniqueID(label, memberOf(allSkillIDs(doc)))
				doc.Skills[category] = append(doc.Skills[category], Skill{ID: id, Label: label})
			}
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func resolveSkillID(doc *MasterDoc, spec SkillSpec) string {
	if spec.ID != "" {
		for _, entries := range doc.Skills {
			for _, sk := range entries {
				if sk.ID == spec.ID {
					return sk.ID
				}
			}
		}
	}
	label := strings.TrimSpace(spec.Label)
	if label == "" {
		return ""
	}
	for _, entries := range doc.Skills {
		for _, sk := range entries {
			if strings.EqualFold(sk.Label, label) {
				return sk.ID
			}
		}
	}
	return ""
}

func allSkillIDs(doc *MasterDoc) map[string]struct{} {
	ids := map[string]struct{}{}
	for _, entries := range doc.Skills {
		for _, sk := range entries {
			if sk.ID != "" {
				ids[sk.ID] = struct{}{}
			}
		}
	}
	return ids
}

// ---------------------------------------------------------------------
// Experience
// ---------------------------------------------------------------------

// ListExperience returns every work history entry.
func (s *MasterStore) ListExperience() ([]Experience, error) {
	doc, err := s.file.Read()
	if err != nil {
		return nil, err
	}
	if doc.Experience == nil {
		return []Experience{}, nil
	}
	return doc.Experience, nil
}

// CreateExperience appends a new entry, id slugged from the company.
func (s *MasterStore) CreateExperience(patch ExperiencePatch) (Experience, error) {
	var created Experience
	err := s.update(func(doc *MasterDoc) error {
		existing := map[string]struct{}{}
		for _, item := range doc.Experience {
			if item.ID != "" {
				existing[item.ID] = struct{}{}
			}
		}
		base := "experience"
		if patch.Company != nil {
			base = *patch.Company
		}
		item := Experience{
			ID:      EnsureUniqueID(base, memberOf(existing)),
			Bullets: []string{},
		}
		applyExperiencePatch(&item, patch)
		doc.Experience = append(doc.Experience, item)
		created = item
		return nil
	})
	if err != nil {
		return Experience{}, err
	}
	return created, nil
}

// UpdateExperience applies the fields present in patch to an entry.
func (s *MasterStore) UpdateExperience(experienceID string, patch ExperiencePatch) (Experience, error) {
	var updated Experience
	err := s.update(func(doc *MasterDoc) error {
		for i := range doc.Experience {
			if doc.Experience[i].ID == experienceID {
				applyExperiencePatch(&doc.Experience[i], patch)
				updated = doc.Experience[i]
				return nil
			}
		}
		return fmt.Errorf("experience '%s': %w", experienceID, ErrNotFound)
	})
	if err != nil {
		return Experience{}, err
	}
	return updated, nil
}

// DeleteExperience removes an entry and strips its id from every project's
// linked_experience list.
func (s *MasterStore) DeleteExperience(experienceID string) error {
	return s.update(func(doc *MasterDoc) error {
		filtered := doc.Experience[:0]
		for _, item := range doc.Experience {
			if item.ID != experienceID {
				filtered = append(filtered, item)
			}
		}
		if len(filtered) == len(doc.Experience) {
			return fmt.Errorf("experience '%s': %w", experienceID, ErrNotFound)
		}
		doc.Experience = filtered

		for i := range doc.Projects {
			doc.Projects[i].LinkedExperience = removeString(doc.Projects[i].LinkedExperience, experienceID)
		}
		return nil
	})
}

// FindExperienceID resolves a loose reference to an experience id: exact id
// first, then a case-insensitive company match.
func (s *MasterStore) FindExperienceID(ref string) (string, bool, error) {
	doc, err := s.file.Read()
	if err != nil {
		return "", false, err
	}
	for _, item := range doc.Experience {
		if item.ID == ref {
			return item.ID, true, nil
		}
	}
	for _, item := range doc.Experience {
		if strings.EqualFold(item.Company, ref) {
			return item.ID, true, nil
		}
	}
	return "", false, nil
}

func applyExperiencePatch(item *Experience, patch ExperiencePatch) {
	if patch.Company != nil {
		item.Company = strings.TrimSpace(*patch.Company)
	}
	if patch.Title != nil {
		item.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Dates != nil {
		item.Dates = strings.TrimSpace(*patch.Dates)
	}
	if patch.Bullets != nil {
		item.Bullets = []string(*patch.Bullets)
	}
}

func memberOf(set map[string]struct{}) func(string) bool {
	return func(id string) bool {
		_, ok := set[id]
		return ok
	}
}

func removeString(values []string, target string) []string {
	out := values[:0]
	for _, v := range values {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
