package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerations(t *testing.T) *GenerationStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewGenerationStore(filepath.Join(dir, "generated_docs.json"), filepath.Join(dir, "generated"))
	require.NoError(t, err)
	return s
}

func TestGenerationStore_BootstrapsIndex(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "generated_docs.json")
	_, err := NewGenerationStore(indexPath, filepath.Join(dir, "generated"))
	require.NoError(t, err)

	raw, err := os.ReadFile(indexPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items": []}`, string(raw))
}

func TestGenerationStore_Create(t *testing.T) {
	s := newTestGenerations(t)

	detail, err := s.Create(GenerationInput{
		JobTitle:      "Data Engineer",
		JobAd:         "We need pipelines.",
		Summary:       "Builds pipelines.",
		ResumeHTML:    "<html>resume</html>",
		CoverLetter:   "Dear team,",
		ExperienceIDs: []string{"schupan"},
	})
	require.NoError(t, err)

	assert.Equal(t, "data-engineer", detail.ID, "id is slugged from the job title")
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`, detail.CreatedAt)
	assert.Equal(t, "data-engineer/resume.html", detail.ResumePath)
	assert.Equal(t, "data-engineer/cover_letter.txt", detail.CoverLetterPath)
	assert.Nil(t, detail.ResumePDFPath)
	assert.Equal(t, "<html>resume</html>", detail.ResumeHTML)
	assert.Equal(t, "Dear team,", detail.CoverLetter)

	t.Run("assets are written to disk", func(t *testing.T) {
		raw, err := os.ReadFile(filepath.Join(s.FilesRoot(), "data-engineer", "resume.html"))
		require.NoError(t, err)
		assert.Equal(t, "<html>resume</html>", string(raw))
	})

	t.Run("same title gets a suffixed id", func(t *testing.T) {
		again, err := s.Create(GenerationInput{JobTitle: "Data Engineer"})
		require.NoError(t, err)
		assert.Equal(t, "data-engineer-2", again.ID)
	})
}

func TestGenerationStore_ListNewestFirst(t *testing.T) {
	s := newTestGenerations(t)

	first, err := s.Create(GenerationInput{JobTitle: "Analyst"})
	require.NoError(t, err)
	second, err := s.Create(GenerationInput{JobTitle: "Engineer"})
	require.NoError(t, err)

	// Backdate the first record so the ordering is deterministic even when
	// both creates land in the same second.
	_, err = s.index.Update(func(idx *generationIndex) error {
		for i := range idx.Items {
			if idx.Items[i].ID == first.ID {
				idx.Items[i].CreatedAt = "2020-01-01T00:00:00Z"
			}
		}
		return nil
	})
	require.NoError(t, err)

	items, err := s.List()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)
}

func TestGenerationStore_Get(t *testing.T) {
	s := newTestGenerations(t)
	created, err := s.Create(GenerationInput{JobTitle: "Analyst", ResumeHTML: "<p>hi</p>"})
	require.NoError(t, err)

	detail, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", detail.ResumeHTML)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenerationStore_GetBackfillsPDFPaths(t *testing.T) {
	s := newTestGenerations(t)
	created, err := s.Create(GenerationInput{JobTitle: "Analyst"})
	require.NoError(t, err)

	// A PDF shows up on disk without the record knowing about it.
	_, abs := s.ResumePDFPaths(created.ID)
	require.NoError(t, os.WriteFile(abs, []byte("%PDF"), 0644))

	detail, err := s.Get(created.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.ResumePDFPath)
	assert.Equal(t, "analyst/resume.pdf", *detail.ResumePDFPath)
	assert.Nil(t, detail.CoverLetterPDFPath)

	t.Run("backfill is not persisted", func(t *testing.T) {
		idx, err := s.index.Read()
		require.NoError(t, err)
		assert.Nil(t, idx.Items[0].ResumePDFPath)
	})
}

func TestGenerationStore_Update(t *testing.T) {
	s := newTestGenerations(t)
	tokens := 420
	created, err := s.Create(GenerationInput{JobTitle: "Analyst", ResumeTokenCount: &tokens})
	require.NoError(t, err)

	t.Run("resume html is rewritten on disk", func(t *testing.T) {
		detail, err := s.Update(created.ID, GenerationPatch{ResumeHTML: strPtr("<p>edited</p>")})
		require.NoError(t, err)
		assert.Equal(t, "<p>edited</p>", detail.ResumeHTML)

		raw, err := os.ReadFile(filepath.Join(s.FilesRoot(), created.ID, "resume.html"))
		require.NoError(t, err)
		assert.Equal(t, "<p>edited</p>", string(raw))
	})

	t.Run("manual cover letter clears the token count", func(t *testing.T) {
		detail, err := s.Update(created.ID, GenerationPatch{CoverLetter: strPtr("typed by hand")})
		require.NoError(t, err)
		assert.Equal(t, "typed by hand", detail.CoverLetter)
		assert.Nil(t, detail.CoverLetterTokenCount)
	})

	t.Run("drafted cover letter records the token count", func(t *testing.T) {
		count := 99
		detail, err := s.Update(created.ID, GenerationPatch{CoverLetter: strPtr("drafted"), CoverLetterTokenCount: &count})
		require.NoError(t, err)
		require.NotNil(t, detail.CoverLetterTokenCount)
		assert.Equal(t, 99, *detail.CoverLetterTokenCount)
	})

	t.Run("job title", func(t *testing.T) {
		detail, err := s.Update(created.ID, GenerationPatch{JobTitle: strPtr("Senior Analyst")})
		require.NoError(t, err)
		assert.Equal(t, "Senior Analyst", detail.JobTitle)
		assert.Equal(t, "analyst", detail.ID, "the id never changes")
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.Update("missing", GenerationPatch{JobTitle: strPtr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGenerationStore_Delete(t *testing.T) {
	s := newTestGenerations(t)
	created, err := s.Create(GenerationInput{JobTitle: "Analyst", ResumeHTML: "<p>hi</p>"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(created.ID))
	assert.NoDirExists(t, filepath.Join(s.FilesRoot(), created.ID))

	_, err = s.Get(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(created.ID), ErrNotFound)
}

func TestSkillPlan_UnmarshalJSON(t *testing.T) {
	var plans []SkillPlan
	input := `["  Python  ", {"id": "sql", "label": "SQL"}, {"label": "Airflow"}]`
	require.NoError(t, json.Unmarshal([]byte(input), &plans))

	assert.Equal(t, []SkillPlan{
		{Label: "Python"},
		{ID: "sql", Label: "SQL"},
		{Label: "Airflow"},
	}, plans)

	assert.Error(t, json.Unmarshal([]byte(`[42]`), &plans))
}
