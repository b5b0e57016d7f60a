package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"careerdesk/internal/ai"
	"careerdesk/internal/config"
	"careerdesk/internal/pdf"
	"careerdesk/internal/store"
)

const testMasterJSON = `{
  "name": "Jordan Avery",
  "contact": {
    "phone": "555-0100",
    "email": "jordan@example.com",
    "location": "Lansing, MI",
    "links": [{"label": "GitHub", "url": "https://github.com/javery"}]
  },
  "summary": {"default": "Analyst.", "data": "Data person."},
  "experience": [
    {"id": "schupan", "company": "Schupan", "title": "Analyst", "dates": "2021 - Present", "bullets": ["Did things"]},
    {"id": "freelance", "company": "Freelance", "title": "Developer", "dates": "2019 - 2021", "bullets": ["Shipped apps"]}
  ],
  "projects": [
    {"id": "etl-pipeline", "name": "ETL Pipeline", "year": "2023", "description_short": "Moves data.",
     "bullets": ["Built it"], "skills_used": ["python"], "linked_experience": ["schupan"]}
  ],
  "skills": {
    "languages": [{"id": "python", "label": "Python"}, {"id": "sql", "label": "SQL"}],
    "tools": [{"id": "excel", "label": "Excel"}]
  }
}`

const testJobTemplateJSON = `{
  "title": "",
  "summary_key": "default",
  "selected_projects": [],
  "show_freelance": true,
  "skills_order": ["languages", "tools"],
  "skills_label_map": {"languages": "Languages", "tools": "Tools"}
}`

// fakeGenerator implements ai.TextGenerator with a canned reply.
type fakeGenerator struct {
	reply  string
	tokens *int
	err    error
	calls  int
}

func (f *fakeGenerator) GenerateText(_ context.Context, _ ai.Request) (*ai.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Result{Text: f.reply, OutputTokens: f.tokens}, nil
}

func (f *fakeGenerator) Name() string  { return "fake" }
func (f *fakeGenerator) Model() string { return "fake-model" }

// newTestServer builds a Server over stores rooted in a temp dir. A nil
// generator leaves AI drafting unconfigured.
func newTestServer(t *testing.T, gen ai.TextGenerator) *Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "master.json"), []byte(testMasterJSON), 0644))
	jobsDir := filepath.Join(dir, "jobs")
	require.NoError(t, os.MkdirAll(jobsDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(jobsDir, "template.json"), []byte(testJobTemplateJSON), 0644))

	master, err := store.NewMasterStore(filepath.Join(dir, "master.json"))
	require.NoError(t, err)
	jobs, err := store.NewJobStore(jobsDir, "")
	require.NoError(t, err)
	generations, err := store.NewGenerationStore(filepath.Join(dir, "generated_resumes.json"), filepath.Join(dir, "generated"))
	require.NoError(t, err)
	prompts, err := store.NewPromptStore(filepath.Join(dir, "prompts.json"))
	require.NoError(t, err)

	log := zap.NewNop()
	return New(config.Default(), log, master, jobs, generations, prompts,
		ai.NewDrafter(gen, log), pdf.New("", 0, log))
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func doRaw(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the data field of a response envelope into out and
// returns the meta map.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) map[string]any {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
		Meta map[string]any  `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out), "data: %s", string(env.Data))
	}
	return env.Meta
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Message string `json:"message"`
			Status  int    `json:"status"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	assert.Equal(t, rec.Code, env.Error.Status)
	return env.Error.Message
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/master", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/master", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"), "caller-supplied id is kept")
}

func TestGeneratedAssetServing(t *testing.T) {
	s := newTestServer(t, nil)
	root := s.generations.FilesRoot()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "abc"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "abc", "resume.html"), []byte("<p>hi</p>"), 0644))

	rec := doJSON(t, s, http.MethodGet, "/generated/abc/resume.html", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>hi</p>", rec.Body.String())

	t.Run("missing file", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/generated/abc/missing.html", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("traversal is refused", func(t *testing.T) {
		outside := filepath.Join(filepath.Dir(root), "secret.txt")
		require.NoError(t, os.WriteFile(outside, []byte("nope"), 0644))
		req := httptest.NewRequest(http.MethodGet, "/generated/x", nil)
		req.URL.Path = "/generated/../secret.txt"
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.NotEqual(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "nope")
	})
}

func TestServesEmbeddedUI(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doJSON(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "CareerDesk")
}

func TestRunGracefulShutdown(t *testing.T) {
	// go.opencensus.io/stats/view starts a background worker from init()
	// whenever the package is linked in (it arrives through the genai
	// dependency chain); no server shutdown can stop it.
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)

	s := newTestServer(t, nil)
	s.cfg.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
