package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerdesk/internal/store"
)

// generateRecord runs the resume flow against the fake provider and
// returns the stored record.
func generateRecord(t *testing.T, s *Server) store.GenerationDetail {
	t.Helper()
	var record store.GenerationDetail
	rec := doJSON(t, s, http.MethodPost, "/api/ai/resumes", map[string]string{"job_ad": "A data role"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeData(t, rec, &record)
	return record
}

func TestGenerationMetadataUpdate(t *testing.T) {
	s := newTestServer(t, &fakeGenerator{reply: resumeReply})
	record := generateRecord(t, s)

	rec := doJSON(t, s, http.MethodPut, "/api/ai/resumes/"+record.ID, map[string]any{"verbosity": "high"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No supported fields provided", errorMessage(t, rec))

	var updated store.GenerationDetail
	rec = doJSON(t, s, http.MethodPut, "/api/ai/resumes/"+record.ID, map[string]any{"job_title": "  Staff Engineer  "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &updated)
	assert.Equal(t, "Staff Engineer", updated.JobTitle)

	rec = doJSON(t, s, http.MethodPut, "/api/ai/resumes/nope", map[string]any{"job_title": "x"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Generated resume 'nope' not found", errorMessage(t, rec))
}

func TestResumeHTMLUpdate(t *testing.T) {
	s := newTestServer(t, &fakeGenerator{reply: resumeReply})
	record := generateRecord(t, s)

	rec := doJSON(t, s, http.MethodPut, "/api/ai/resumes/"+record.ID+"/resume", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "resume_html is required", errorMessage(t, rec))

	var updated store.GenerationDetail
	rec = doJSON(t, s, http.MethodPut, "/api/ai/resumes/"+record.ID+"/resume", map[string]any{
		"resume_html": "<html><body>Hand edited</body></html>",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &updated)
	assert.Equal(t, "<html><body>Hand edited</body></html>", updated.ResumeHTML)

	var fetched store.GenerationDetail
	rec = doJSON(t, s, http.MethodGet, "/api/ai/resumes/"+record.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &fetched)
	assert.Equal(t, "<html><body>Hand edited</body></html>", fetched.ResumeHTML, "edit persists to the asset file")
}

func TestDeleteGeneration(t *testing.T) {
	s := newTestServer(t, &fakeGenerator{reply: resumeReply})
	record := generateRecord(t, s)

	var deleted map[string]any
	rec := doJSON(t, s, http.MethodDelete, "/api/ai/resumes/"+record.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &deleted)
	assert.Equal(t, record.ID, deleted["deleted"])

	rec = doJSON(t, s, http.MethodDelete, "/api/ai/resumes/"+record.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Generated resume '"+record.ID+"' not found", errorMessage(t, rec))
}

func TestExportRequiresResumeHTML(t *testing.T) {
	s := newTestServer(t, &fakeGenerator{reply: resumeReply})
	record := generateRecord(t, s)

	rec := doJSON(t, s, http.MethodPut, "/api/ai/resumes/"+record.ID+"/resume", map[string]any{"resume_html": "   "})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/ai/resumes/"+record.ID+"/export", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Resume HTML is empty; generate or edit it before exporting.", errorMessage(t, rec))
}

func TestOpenGeneratedAssets(t *testing.T) {
	s := newTestServer(t, &fakeGenerator{reply: resumeReply})
	record := generateRecord(t, s)

	rec := doJSON(t, s, http.MethodGet, "/api/ai/resumes/"+record.ID+"/resume-html", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jordan Avery")

	rec = doJSON(t, s, http.MethodGet, "/api/ai/resumes/"+record.ID+"/cover-letter-txt", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "the cover letter file exists even while empty")

	rec = doJSON(t, s, http.MethodGet, "/api/ai/resumes/nope/resume-html", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Generated resume 'nope' not found", errorMessage(t, rec))
}
