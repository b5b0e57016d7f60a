package store

// Extra-instruction keys the prompt store recognizes. Values are appended
// to the AI drafting prompts.
const (
	PromptProjectExtra     = "project_extra_instruction"
	PromptResumeExtra      = "resume_extra_instruction"
	PromptCoverLetterExtra = "cover_letter_extra_instruction"
)

var defaultPrompts = map[string]string{
	PromptProjectExtra:     "",
	PromptResumeExtra:      "",
	PromptCoverLetterExtra: "",
}

// PromptStore keeps user-supplied extra prompt instructions in
// data/prompts.json, backfilling the known keys on open.
type PromptStore struct {
	file *File[map[string]string]
}

// NewPromptStore opens path and writes the default keys when absent.
func NewPromptStore(path string) (*PromptStore, error) {
	s := &PromptStore{file: NewFile[map[string]string](path)}
	if _, err := s.Backfill(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the prompts file.
func (s *PromptStore) Path() string { return s.file.Path() }

// Backfill restores any known key a hand edit removed, writing only when
// something was missing.
func (s *PromptStore) Backfill() (bool, error) {
	data, err := s.file.Read()
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return true, s.file.Write(clonePrompts(defaultPrompts))
	}
	updated := false
	for key, value := range defaultPrompts {
		if _, ok := data[key]; !ok {
			data[key] = value
			updated = true
		}
	}
	if updated {
		return true, s.file.Write(data)
	}
	return false, nil
}

// Get returns the stored instructions merged over the defaults. Unknown
// keys a hand edit may have added are kept.
func (s *PromptStore) Get() (map[string]string, error) {
	data, err := s.file.Read()
	if err != nil {
		return nil, err
	}
	merged := clonePrompts(defaultPrompts)
	for key, value := range data {
		merged[key] = value
	}
	return merged, nil
}

// Update rewrites the known keys present in updates; anything else is
// silently ignored.
func (s *PromptStore) Update(updates map[string]string) (map[string]string, error) {
	current, err := s.Get()
	if err != nil {
		return nil, err
	}
	for key, value := range updates {
		if _, known := defaultPrompts[key]; known {
			current[key] = value
		}
	}
	if err := s.file.Write(current); err != nil {
		return nil, err
	}
	return current, nil
}

func clonePrompts(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
