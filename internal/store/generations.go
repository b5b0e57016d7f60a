package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SectionPlan is one AI-selected experience or project entry with its
// tailored bullet language.
type SectionPlan struct {
	ID      string   `json:"id"`
	Bullets []string `json:"bullets,omitempty"`
	Notes   string   `json:"notes,omitempty"`
}

// SkillPlan is one AI-selected skill reference by id and/or label.
// Older records stored plain label strings; both shapes load.
type SkillPlan struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label,omitempty"`
}

func (p *SkillPlan) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*p = SkillPlan{Label: strings.TrimSpace(label)}
		return nil
	}
	type plain SkillPlan
	var item plain
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*p = SkillPlan(item)
	return nil
}

// Generation is the persisted record for one AI-generated resume package.
// The HTML and cover letter bodies live next to the index as
// <files root>/<id>/resume.html and cover_letter.txt; the record keeps
// their relative paths.
type Generation struct {
	ID                    string        `json:"id"`
	JobTitle              string        `json:"job_title"`
	CreatedAt             string        `json:"created_at"`
	JobAd                 string        `json:"job_ad"`
	Summary               string        `json:"summary"`
	ExperienceIDs         []string      `json:"experience_ids"`
	ProjectIDs            []string      `json:"project_ids"`
	SkillLabels           []string      `json:"skill_labels"`
	ReasoningEffort       string        `json:"reasoning_effort"`
	Verbosity             string        `json:"verbosity"`
	ResumeTokenCount      *int          `json:"resume_token_count"`
	CoverLetterTokenCount *int          `json:"cover_letter_token_count"`
	ExperiencePlan        []SectionPlan `json:"experience_plan"`
	ProjectPlan           []SectionPlan `json:"project_plan"`
	SkillsPlan            []SkillPlan   `json:"skills_plan"`
	ResumePath            string        `json:"resume_path"`
	CoverLetterPath       string        `json:"cover_letter_path"`
	ResumePDFPath         *string       `json:"resume_pdf_path"`
	CoverLetterPDFPath    *string       `json:"cover_letter_pdf_path"`
}

// GenerationDetail is a record hydrated with its on-disk assets.
type GenerationDetail struct {
	Generation
	ResumeHTML  string `json:"resume_html"`
	CoverLetter string `json:"cover_letter"`
}

// GenerationSummary is the listing shape for one record.
type GenerationSummary struct {
	ID              string `json:"id"`
	JobTitle        string `json:"job_title"`
	CreatedAt       string `json:"created_at"`
	ReasoningEffort string `json:"reasoning_effort"`
	Verbosity       string `json:"verbosity"`
}

// GenerationInput is everything Create persists for a fresh generation.
type GenerationInput struct {
	JobTitle         string
	JobAd            string
	Summary          string
	ResumeHTML       string
	CoverLetter      string
	ExperienceIDs    []string
	ProjectIDs       []string
	SkillLabels      []string
	ReasoningEffort  string
	Verbosity        string
	ResumeTokenCount *int
	ExperiencePlan   []SectionPlan
	ProjectPlan      []SectionPlan
	SkillsPlan       []SkillPlan
}

// GenerationPatch carries the updatable fields. Setting CoverLetter also
// stores CoverLetterTokenCount as given, so a manual edit clears the count
// by leaving it nil.
type GenerationPatch struct {
	JobTitle              *string
	ResumeHTML            *string
	CoverLetter           *string
	CoverLetterTokenCount *int
	ResumePDFPath         *string
	CoverLetterPDFPath    *string
}

type generationIndex struct {
	Items []Generation `json:"items"`
}

// GenerationStore persists generated resume/cover-letter packages: a JSON
// index plus one asset directory per record under filesRoot.
type GenerationStore struct {
	index     *File[generationIndex]
	filesRoot string
}

// NewGenerationStore opens the index at indexPath and roots assets at
// filesRoot, bootstrapping both when missing.
func NewGenerationStore(indexPath, filesRoot string) (*GenerationStore, error) {
	if err := os.MkdirAll(filesRoot, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", filesRoot, err)
	}
	s := &GenerationStore{index: NewFile[generationIndex](indexPath), filesRoot: filesRoot}
	idx, err := s.index.Read()
	if err != nil {
		return nil, err
	}
	if idx.Items == nil {
		if err := s.index.Write(generationIndex{Items: []Generation{}}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// FilesRoot returns the directory that holds per-record asset folders.
func (s *GenerationStore) FilesRoot() string { return s.filesRoot }

// List returns record summaries, newest first.
func (s *GenerationStore) List() ([]GenerationSummary, error) {
	idx, err := s.index.Read()
	if err != nil {
		return nil, err
	}
	summaries := make([]GenerationSummary, 0, len(idx.Items))
	for _, item := range idx.Items {
		summaries = append(summaries, GenerationSummary{
			ID:              item.ID,
			JobTitle:        item.JobTitle,
			CreatedAt:       item.CreatedAt,
			ReasoningEffort: item.ReasoningEffort,
			Verbosity:       item.Verbosity,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt > summaries[j].CreatedAt
	})
	return summaries, nil
}

// Get returns one hydrated record.
func (s *GenerationStore) Get(id string) (GenerationDetail, error) {
	idx, err := s.index.Read()
	if err != nil {
		return GenerationDetail{}, err
	}
	for _, item := range idx.Items {
		if item.ID == id {
			return s.hydrate(item), nil
		}
	}
	return GenerationDetail{}, fmt.Errorf("generated resume '%s': %w", id, ErrNotFound)
}

// Create writes the assets and appends a record. The id is slugged from
// the job title and deduplicated against existing records.
func (s *GenerationStore) Create(input GenerationInput) (GenerationDetail, error) {
	var record Generation
	_, err := s.index.Update(func(idx *generationIndex) error {
		existing := map[string]struct{}{}
		for _, item := range idx.Items {
			existing[item.ID] = struct{}{}
		}
		id := EnsureUniqueID(input.JobTitle, memberOf(existing))

		record = Generation{
			ID:               id,
			JobTitle:         input.JobTitle,
			CreatedAt:        time.Now().UTC().Truncate(time.Second).Format(time.RFC3339),
			JobAd:            input.JobAd,
			Summary:          input.Summary,
			ExperienceIDs:    emptyIfNil(input.ExperienceIDs),
			ProjectIDs:       emptyIfNil(input.ProjectIDs),
			SkillLabels:      emptyIfNil(input.SkillLabels),
			ReasoningEffort:  input.ReasoningEffort,
			Verbosity:        input.Verbosity,
			ResumeTokenCount: input.ResumeTokenCount,
			ExperiencePlan:   input.ExperiencePlan,
			ProjectPlan:      input.ProjectPlan,
			SkillsPlan:       input.SkillsPlan,
			ResumePath:       s.resumeRel(id),
			CoverLetterPath:  s.coverRel(id),
		}
		if record.ExperiencePlan == nil {
			record.ExperiencePlan = []SectionPlan{}
		}
		if record.ProjectPlan == nil {
			record.ProjectPlan = []SectionPlan{}
		}
		if record.SkillsPlan == nil {
			record.SkillsPlan = []SkillPlan{}
		}

		if err := s.writeAsset(record.ResumePath, input.ResumeHTML); err != nil {
			return err
		}
		if err := s.writeAsset(record.CoverLetterPath, input.CoverLetter); err != nil {
			return err
		}
		idx.Items = append(idx.Items, record)
		return nil
	})
	if err != nil {
		return GenerationDetail{}, err
	}
	return s.hydrate(record), nil
}

// Update rewrites the fields present in patch, persisting resume HTML and
// cover letter bodies to their asset files.
func (s *GenerationStore) Update(id string, patch GenerationPatch) (GenerationDetail, error) {
	var record Generation
	_, err := s.index.Update(func(idx *generationIndex) error {
		for i := range idx.Items {
			item := &idx.Items[i]
			if item.ID != id {
				continue
			}
			if patch.ResumeHTML != nil {
				if err := s.writeAsset(s.resumeRel(id), *patch.ResumeHTML); err != nil {
					return err
				}
				item.ResumePath = s.resumeRel(id)
			}
			if patch.CoverLetter != nil {
				if err := s.writeAsset(s.coverRel(id), *patch.CoverLetter); err != nil {
					return err
				}
				item.CoverLetterPath = s.coverRel(id)
				item.CoverLetterTokenCount = patch.CoverLetterTokenCount
			}
			if patch.JobTitle != nil {
				item.JobTitle = *patch.JobTitle
			}
			if patch.ResumePDFPath != nil {
				item.ResumePDFPath = patch.ResumePDFPath
			}
			if patch.CoverLetterPDFPath != nil {
				item.CoverLetterPDFPath = patch.CoverLetterPDFPath
			}
			record = *item
			return nil
		}
		return fmt.Errorf("generated resume '%s': %w", id, ErrNotFound)
	})
	if err != nil {
		return GenerationDetail{}, err
	}
	return s.hydrate(record), nil
}

// Delete removes the record and its asset directory.
func (s *GenerationStore) Delete(id string) error {
	_, err := s.index.Update(func(idx *generationIndex) error {
		filtered := idx.Items[:0]
		for _, item := range idx.Items {
			if item.ID != id {
				filtered = append(filtered, item)
			}
		}
		if len(filtered) == len(idx.Items) {
			return fmt.Errorf("generated resume '%s': %w", id, ErrNotFound)
		}
		idx.Items = filtered
		return nil
	})
	if err != nil {
		return err
	}
	os.RemoveAll(s.assetDir(id))
	return nil
}

// ResumePDFPaths returns the relative and absolute locations for a
// record's exported resume PDF.
func (s *GenerationStore) ResumePDFPaths(id string) (rel, abs string) {
	rel = path.Join(id, "resume.pdf")
	return rel, s.absPath(rel)
}

// CoverLetterPDFPaths returns the relative and absolute locations for a
// record's exported cover letter PDF.
func (s *GenerationStore) CoverLetterPDFPaths(id string) (rel, abs string) {
	rel = path.Join(id, "cover_letter.pdf")
	return rel, s.absPath(rel)
}

func (s *GenerationStore) assetDir(id string) string {
	return filepath.Join(s.filesRoot, id)
}

func (s *GenerationStore) resumeRel(id string) string {
	return path.Join(id, "resume.html")
}

func (s *GenerationStore) coverRel(id string) string {
	return path.Join(id, "cover_letter.txt")
}

func (s *GenerationStore) absPath(rel string) string {
	return filepath.Join(s.filesRoot, filepath.FromSlash(rel))
}

func (s *GenerationStore) writeAsset(rel, content string) error {
	abs := s.absPath(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(abs), err)
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", abs, err)
	}
	return nil
}

func (s *GenerationStore) readAsset(rel string) string {
	raw, err := os.ReadFile(s.absPath(rel))
	if err != nil {
		return ""
	}
	return string(raw)
}

// hydrate fills in the asset bodies and backfills pdf paths for records
// whose files appeared on disk after the record was written. The backfill
// is computed per read, never persisted.
func (s *GenerationStore) hydrate(record Generation) GenerationDetail {
	if record.ResumePath == "" {
		record.ResumePath = s.resumeRel(record.ID)
	}
	if record.CoverLetterPath == "" {
		record.CoverLetterPath = s.coverRel(record.ID)
	}
	if record.ResumePDFPath == nil {
		if rel, abs := s.ResumePDFPaths(record.ID); fileExists(abs) {
			record.ResumePDFPath = &rel
		}
	}
	if record.CoverLetterPDFPath == nil {
		if rel, abs := s.CoverLetterPDFPaths(record.ID); fileExists(abs) {
			record.CoverLetterPDFPath = &rel
		}
	}
	return GenerationDetail{
		Generation:  record,
		ResumeHTML:  s.readAsset(record.ResumePath),
		CoverLetter: s.readAsset(record.CoverLetterPath),
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
