package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// JobConfig is one render configuration under jobs/<slug>.json. It selects
// and labels master content for the build command.
type JobConfig struct {
	Title            string            `json:"title"`
	SummaryKey       string            `json:"summary_key"`
	SelectedProjects []string          `json:"selected_projects"`
	ShowFreelance    *bool             `json:"show_freelance"`
	SkillsOrder      []string          `json:"skills_order"`
	SkillsLabelMap   map[string]string `json:"skills_label_map"`
}

// FreelanceShown reports whether the Freelance experience entry should be
// rendered. A missing key means yes.
func (c JobConfig) FreelanceShown() bool {
	return c.ShowFreelance == nil || *c.ShowFreelance
}

// Job is a config plus the slug it is stored under.
type Job struct {
	JobConfig
	Slug string `json:"slug"`
}

// JobSummary is the listing shape for one job config.
type JobSummary struct {
	Slug             string   `json:"slug"`
	Title            string   `json:"title"`
	SummaryKey       string   `json:"summary_key"`
	SelectedProjects []string `json:"selected_projects"`
}

// JobPatch carries the fields a create or update may override. Absent keys
// leave the template or stored values in place.
type JobPatch struct {
	Title            *string            `json:"title"`
	SummaryKey       *string            `json:"summary_key"`
	SelectedProjects *[]string          `json:"selected_projects"`
	ShowFreelance    *bool              `json:"show_freelance"`
	SkillsOrder      *[]string          `json:"skills_order"`
	SkillsLabelMap   *map[string]string `json:"skills_label_map"`
}

// JobStore manages the jobs/ directory: one JSON file per config, seeded
// from template.json.
type JobStore struct {
	dir          string
	templatePath string
	mu           sync.Mutex
}

// NewJobStore opens dir, creating it if needed. The template lives at
// dir/template.json unless templatePath overrides it.
func NewJobStore(dir, templatePath string) (*JobStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	if templatePath == "" {
		templatePath = filepath.Join(dir, "template.json")
	}
	return &JobStore{dir: dir, templatePath: templatePath}, nil
}

// Dir returns the jobs directory.
func (s *JobStore) Dir() string { return s.dir }

func (s *JobStore) pathFor(slug string) string {
	return filepath.Join(s.dir, Slugify(slug)+".json")
}

// List returns a summary per config, sorted by file name. template.json is
// not a config and is skipped.
func (s *JobStore) List() ([]JobSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.dir, err)
	}
	items := []JobSummary{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || name == filepath.Base(s.templatePath) {
			continue
		}
		cfg, ok, err := s.readConfig(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		items = append(items, JobSummary{
			Slug:             strings.TrimSuffix(name, ".json"),
			Title:            cfg.Title,
			SummaryKey:       cfg.SummaryKey,
			SelectedProjects: emptyIfNil(cfg.SelectedProjects),
		})
	}
	return items, nil
}

// Get returns the config stored under slug.
func (s *JobStore) Get(slug string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(slug)
}

func (s *JobStore) get(slug string) (Job, error) {
	path := s.pathFor(slug)
	cfg, ok, err := s.readConfig(path)
	if err != nil {
		return Job{}, err
	}
	if !ok {
		return Job{}, fmt.Errorf("job config '%s': %w", slug, ErrNotFound)
	}
	return Job{JobConfig: cfg, Slug: stem(path)}, nil
}

// Create clones the template, applies the patch, and stores the result
// under the slug. An existing slug is a conflict; a missing template is an
// internal error the handlers map to 500.
func (s *JobStore) Create(slug string, patch JobPatch) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.pathFor(slug)
	if _, err := os.Stat(path); err == nil {
		return Job{}, fmt.Errorf("job config '%s': %w", slug, ErrConflict)
	}
	cfg, ok, err := s.readConfig(s.templatePath)
	if err != nil {
		return Job{}, err
	}
	if !ok {
		return Job{}, fmt.Errorf("template not found at %s: %w", s.templatePath, ErrTemplateMissing)
	}
	applyJobPatch(&cfg, patch)
	if err := atomicWriteJSON(path, cfg); err != nil {
		return Job{}, err
	}
	return Job{JobConfig: cfg, Slug: stem(path)}, nil
}

// Update rewrites the fields present in patch.
func (s *JobStore) Update(slug string, patch JobPatch) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.pathFor(slug)
	cfg, ok, err := s.readConfig(path)
	if err != nil {
		return Job{}, err
	}
	if !ok {
		return Job{}, fmt.Errorf("job config '%s': %w", slug, ErrNotFound)
	}
	applyJobPatch(&cfg, patch)
	if err := atomicWriteJSON(path, cfg); err != nil {
		return Job{}, err
	}
	return Job{JobConfig: cfg, Slug: stem(path)}, nil
}

// Delete unlinks the config file.
func (s *JobStore) Delete(slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.pathFor(slug)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("job config '%s': %w", slug, ErrNotFound)
		}
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (s *JobStore) readConfig(path string) (JobConfig, bool, error) {
	var cfg JobConfig
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, true, nil
}

func applyJobPatch(cfg *JobConfig, patch JobPatch) {
	if patch.Title != nil {
		cfg.Title = *patch.Title
	}
	if patch.SummaryKey != nil {
		cfg.SummaryKey = *patch.SummaryKey
	}
	if patch.SelectedProjects != nil {
		cfg.SelectedProjects = *patch.SelectedProjects
	}
	if patch.ShowFreelance != nil {
		cfg.ShowFreelance = patch.ShowFreelance
	}
	if patch.SkillsOrder != nil {
		cfg.SkillsOrder = *patch.SkillsOrder
	}
	if patch.SkillsLabelMap != nil {
		cfg.SkillsLabelMap = *patch.SkillsLabelMap
	}
}

func stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".json")
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
