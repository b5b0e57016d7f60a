package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerdesk/internal/store"
)

func TestMasterSnapshotAndSummaries(t *testing.T) {
	s := newTestServer(t, nil)

	var doc store.MasterDoc
	rec := doJSON(t, s, http.MethodGet, "/api/master", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &doc)
	assert.Equal(t, "Jordan Avery", doc.Name)
	assert.Len(t, doc.Experience, 2)

	var keys []string
	rec = doJSON(t, s, http.MethodGet, "/api/summaries", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	meta := decodeData(t, rec, &keys)
	assert.ElementsMatch(t, []string{"default", "data"}, keys)
	assert.EqualValues(t, 2, meta["count"])
}

func TestProjectCRUD(t *testing.T) {
	s := newTestServer(t, nil)

	var created store.Project
	rec := doJSON(t, s, http.MethodPost, "/api/projects", map[string]any{
		"name":              "Side Quest",
		"year":              "2024",
		"description_short": "A tool.",
		"bullets":           []string{"Did a thing"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeData(t, rec, &created)
	assert.Equal(t, "side-quest", created.ID)
	assert.Equal(t, []string{"Did a thing"}, created.Bullets)

	var updated store.Project
	rec = doJSON(t, s, http.MethodPut, "/api/projects/"+created.ID, map[string]any{"year": "2025"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &updated)
	assert.Equal(t, store.Year("2025"), updated.Year)
	assert.Equal(t, "Side Quest", updated.Name, "absent fields are untouched")

	rec = doJSON(t, s, http.MethodPut, "/api/projects/nope", map[string]any{"year": "2025"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "not found")

	var deleted map[string]any
	rec = doJSON(t, s, http.MethodDelete, "/api/projects/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &deleted)
	assert.Equal(t, created.ID, deleted["deleted"])

	rec = doJSON(t, s, http.MethodDelete, "/api/projects/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectCreateRejectsBadJSON(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRaw(t, s, http.MethodPost, "/api/projects", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON body", errorMessage(t, rec))
}

func TestSkillsList(t *testing.T) {
	s := newTestServer(t, nil)

	var withUsage map[string][]store.SkillWithUsage
	rec := doJSON(t, s, http.MethodGet, "/api/skills", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	meta := decodeData(t, rec, &withUsage)
	assert.Equal(t, []any{"languages", "tools"}, meta["categories"])
	assert.EqualValues(t, 3, meta["count"])
	require.Len(t, withUsage["languages"], 2)
	python := withUsage["languages"][0]
	require.Len(t, python.Usage, 1, "python is referenced by the seed project")
	assert.Equal(t, "etl-pipeline", python.Usage[0].ProjectID)
	assert.Equal(t, "ETL Pipeline", python.Usage[0].ProjectName)

	t.Run("usage can be disabled", func(t *testing.T) {
		var plain map[string][]store.Skill
		rec := doJSON(t, s, http.MethodGet, "/api/skills?include_usage=0", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decodeData(t, rec, &plain)
		assert.NotContains(t, rec.Body.String(), `"usage"`)
		assert.Len(t, plain["languages"], 2)
	})
}

func TestSkillAddUpdateDelete(t *testing.T) {
	s := newTestServer(t, nil)

	var added store.Skill
	rec := doJSON(t, s, http.MethodPost, "/api/skills", map[string]string{"category": "tools", "label": "Airflow"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeData(t, rec, &added)
	assert.Equal(t, "airflow", added.ID)

	rec = doJSON(t, s, http.MethodPost, "/api/skills", map[string]string{"category": "tools"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "label is required")

	var renamed store.Skill
	rec = doJSON(t, s, http.MethodPut, "/api/skills/tools/airflow", map[string]string{"label": "Apache Airflow"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &renamed)
	assert.Equal(t, "Apache Airflow", renamed.Label)

	var deleted map[string]any
	rec = doJSON(t, s, http.MethodDelete, "/api/skills/tools/airflow", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &deleted)
	assert.Equal(t, "airflow", deleted["deleted"])

	rec = doJSON(t, s, http.MethodDelete, "/api/skills/tools/airflow", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExperienceCRUD(t *testing.T) {
	s := newTestServer(t, nil)

	var entries []store.Experience
	rec := doJSON(t, s, http.MethodGet, "/api/experience", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	meta := decodeData(t, rec, &entries)
	assert.EqualValues(t, 2, meta["count"])

	var created store.Experience
	rec = doJSON(t, s, http.MethodPost, "/api/experience", map[string]any{
		"company": "Initech",
		"title":   "Engineer",
		"dates":   "2017 - 2019",
		"bullets": []string{"Maintained the TPS pipeline"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeData(t, rec, &created)
	assert.Equal(t, "initech", created.ID)

	var updated store.Experience
	rec = doJSON(t, s, http.MethodPut, "/api/experience/"+created.ID, map[string]any{"title": "Senior Engineer"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &updated)
	assert.Equal(t, "Senior Engineer", updated.Title)

	var deleted map[string]any
	rec = doJSON(t, s, http.MethodDelete, "/api/experience/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &deleted)
	assert.Equal(t, created.ID, deleted["deleted"])
}
