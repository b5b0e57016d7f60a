// Package api serves the HTTP surface: master-data CRUD, job configs,
// prompt settings, AI drafting, generated assets, and the embedded UI.
package api

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"careerdesk/internal/ai"
	"careerdesk/internal/config"
	"careerdesk/internal/pdf"
	"careerdesk/internal/render"
	"careerdesk/internal/store"
)

//go:embed ui
var uiFS embed.FS

// Server wires the stores, the drafter, and the exporter behind the HTTP
// routes.
type Server struct {
	cfg         *config.Config
	log         *zap.Logger
	master      *store.MasterStore
	jobs        *store.JobStore
	generations *store.GenerationStore
	prompts     *store.PromptStore
	drafter     *ai.Drafter
	exporter    *pdf.Exporter
	themeCSS    string
}

// New builds a Server. The theme CSS is loaded once; a config override
// path wins over the embedded default.
func New(
	cfg *config.Config,
	log *zap.Logger,
	master *store.MasterStore,
	jobs *store.JobStore,
	generations *store.GenerationStore,
	prompts *store.PromptStore,
	drafter *ai.Drafter,
	exporter *pdf.Exporter,
) *Server {
	return &Server{
		cfg:         cfg,
		log:         log,
		master:      master,
		jobs:        jobs,
		generations: generations,
		prompts:     prompts,
		drafter:     drafter,
		exporter:    exporter,
		themeCSS:    render.LoadTheme(cfg.Data.ThemePath),
	}
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(requestID, s.logRequests, s.recoverPanics)

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/master", s.handleMasterSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/summaries", s.handleSummaryKeys).Methods(http.MethodGet)

	api.HandleFunc("/projects", s.handleListProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects", s.handleCreateProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}", s.handleUpdateProject).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id}", s.handleDeleteProject).Methods(http.MethodDelete)

	api.HandleFunc("/skills", s.handleListSkills).Methods(http.MethodGet)
	api.HandleFunc("/skills", s.handleAddSkill).Methods(http.MethodPost)
	api.HandleFunc("/skills/{category}/{id}", s.handleUpdateSkill).Methods(http.MethodPut)
	api.HandleFunc("/skills/{category}/{id}", s.handleDeleteSkill).Methods(http.MethodDelete)

	api.HandleFunc("/experience", s.handleListExperience).Methods(http.MethodGet)
	api.HandleFunc("/experience", s.handleCreateExperience).Methods(http.MethodPost)
	api.HandleFunc("/experience/{id}", s.handleUpdateExperience).Methods(http.MethodPut)
	api.HandleFunc("/experience/{id}", s.handleDeleteExperience).Methods(http.MethodDelete)

	api.HandleFunc("/jobs", s.handleListJobs).Methods(http.MethodGet)
	api.HandleFunc("/jobs", s.handleCreateJob).Methods(http.MethodPost)
	api.HandleFunc("/jobs/{slug}", s.handleGetJob).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{slug}", s.handleUpdateJob).Methods(http.MethodPut)
	api.HandleFunc("/jobs/{slug}", s.handleDeleteJob).Methods(http.MethodDelete)

	api.HandleFunc("/prompts", s.handleGetPrompts).Methods(http.MethodGet)
	api.HandleFunc("/prompts", s.handleUpdatePrompts).Methods(http.MethodPut)

	api.HandleFunc("/ai/projects", s.handleAIProject).Methods(http.MethodPost)
	api.HandleFunc("/ai/resumes", s.handleListGenerations).Methods(http.MethodGet)
	api.HandleFunc("/ai/resumes", s.handleGenerateResume).Methods(http.MethodPost)
	api.HandleFunc("/ai/resumes/{id}", s.handleGetGeneration).Methods(http.MethodGet)
	api.HandleFunc("/ai/resumes/{id}", s.handleUpdateGenerationMeta).Methods(http.MethodPut)
	api.HandleFunc("/ai/resumes/{id}", s.handleDeleteGeneration).Methods(http.MethodDelete)
	api.HandleFunc("/ai/resumes/{id}/resume", s.handleUpdateResumeHTML).Methods(http.MethodPut)
	api.HandleFunc("/ai/resumes/{id}/cover-letter", s.handleCoverLetter).Methods(http.MethodPost)
	api.HandleFunc("/ai/resumes/{id}/export", s.handleExport).Methods(http.MethodPost)
	api.HandleFunc("/ai/resumes/{id}/resume-html", s.handleOpenResumeHTML).Methods(http.MethodGet)
	api.HandleFunc("/ai/resumes/{id}/cover-letter-txt", s.handleOpenCoverLetter).Methods(http.MethodGet)

	api.HandleFunc("/ingest/job-ad", s.handleIngestJobAd).Methods(http.MethodPost)

	r.PathPrefix("/generated/").HandlerFunc(s.handleGeneratedAsset).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(uiHandler()).Methods(http.MethodGet)

	return r
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.GetReadTimeout(),
		WriteTimeout: s.cfg.GetWriteTimeout(),
		IdleTimeout:  s.cfg.GetIdleTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.GetShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.log.Info("server shutdown complete")
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func uiHandler() http.Handler {
	sub, err := fs.Sub(uiFS, "ui")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// handleGeneratedAsset serves files under the generation asset root,
// refusing anything that resolves outside it.
func (s *Server) handleGeneratedAsset(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/generated/")
	s.serveGeneratedAsset(w, r, rel)
}

func (s *Server) serveGeneratedAsset(w http.ResponseWriter, r *http.Request, rel string) {
	root, err := filepath.Abs(s.generations.FilesRoot())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "asset root unavailable")
		return
	}
	full, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil || !strings.HasPrefix(full, root+string(filepath.Separator)) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	http.ServeFile(w, r, full)
}

// fetchPrompts returns the stored prompt instructions, degrading to an
// empty set if the store read fails.
func (s *Server) fetchPrompts() map[string]string {
	prompts, err := s.prompts.Get()
	if err != nil {
		s.log.Warn("prompt store read failed", zap.Error(err))
		return map[string]string{}
	}
	return prompts
}
