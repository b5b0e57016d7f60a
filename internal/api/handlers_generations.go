package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"careerdesk/internal/render"
	"careerdesk/internal/store"
)

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// respondGenerationError surfaces a missing record with the message the UI
// shows; other store failures keep their own mapping.
func respondGenerationError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("Generated resume '%s' not found", id))
		return
	}
	respondStoreError(w, err)
}

func (s *Server) getGeneration(w http.ResponseWriter, id string) (store.GenerationDetail, bool) {
	record, err := s.generations.Get(id)
	if err != nil {
		respondGenerationError(w, id, err)
		return store.GenerationDetail{}, false
	}
	return record, true
}

func (s *Server) handleListGenerations(w http.ResponseWriter, _ *http.Request) {
	items, err := s.generations.List()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items, map[string]any{"count": len(items)})
}

func (s *Server) handleGetGeneration(w http.ResponseWriter, r *http.Request) {
	record, ok := s.getGeneration(w, pathID(r))
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, record, nil)
}

func (s *Server) handleUpdateGenerationMeta(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var payload struct {
		JobTitle *string `json:"job_title"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.JobTitle == nil {
		respondError(w, http.StatusBadRequest, "No supported fields provided")
		return
	}
	title := strings.TrimSpace(*payload.JobTitle)

	updated, err := s.generations.Update(id, store.GenerationPatch{JobTitle: &title})
	if err != nil {
		respondGenerationError(w, id, err)
		return
	}
	s.log.Info("Resume metadata update", zap.String("resume_id", id))
	respondJSON(w, http.StatusOK, updated, nil)
}

func (s *Server) handleUpdateResumeHTML(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var payload struct {
		ResumeHTML *string `json:"resume_html"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.ResumeHTML == nil {
		respondError(w, http.StatusBadRequest, "resume_html is required")
		return
	}

	updated, err := s.generations.Update(id, store.GenerationPatch{ResumeHTML: payload.ResumeHTML})
	if err != nil {
		respondGenerationError(w, id, err)
		return
	}
	s.log.Info("Manual resume HTML update", zap.String("resume_id", id))
	respondJSON(w, http.StatusOK, updated, nil)
}

func (s *Server) handleDeleteGeneration(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := s.generations.Delete(id); err != nil {
		respondGenerationError(w, id, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id}, nil)
}

// handleExport prints the resume and the cover letter to PDF through one
// shared Chrome session and records the asset paths on the record.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	record, ok := s.getGeneration(w, id)
	if !ok {
		return
	}
	if strings.TrimSpace(record.ResumeHTML) == "" {
		respondError(w, http.StatusBadRequest, "Resume HTML is empty; generate or edit it before exporting.")
		return
	}

	resumeRel, resumeAbs := s.generations.ResumePDFPaths(id)
	coverRel, coverAbs := s.generations.CoverLetterPDFPaths(id)

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.GetPDFTimeout())
	defer cancel()

	browser, err := s.exporter.Start(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer browser.Close()

	coverHTML := render.CoverLetter(record.CoverLetter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := browser.Print(gctx, record.ResumeHTML, resumeAbs); err != nil {
			return fmt.Errorf("Failed to export resume PDF: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := browser.Print(gctx, coverHTML, coverAbs); err != nil {
			return fmt.Errorf("Failed to export cover letter PDF: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Error("PDF export failed", zap.String("resume_id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	updated, err := s.generations.Update(id, store.GenerationPatch{
		ResumePDFPath:      &resumeRel,
		CoverLetterPDFPath: &coverRel,
	})
	if err != nil {
		respondGenerationError(w, id, err)
		return
	}

	s.log.Info("Exported PDFs",
		zap.String("resume_id", id),
		zap.String("resume_pdf", resumeRel),
		zap.String("cover_pdf", coverRel))

	respondJSON(w, http.StatusOK, updated, nil)
}

func (s *Server) handleOpenResumeHTML(w http.ResponseWriter, r *http.Request) {
	record, ok := s.getGeneration(w, pathID(r))
	if !ok {
		return
	}
	if record.ResumePath == "" {
		respondError(w, http.StatusNotFound, "Resume HTML path not found")
		return
	}
	s.serveGeneratedAsset(w, r, record.ResumePath)
}

func (s *Server) handleOpenCoverLetter(w http.ResponseWriter, r *http.Request) {
	record, ok := s.getGeneration(w, pathID(r))
	if !ok {
		return
	}
	if record.CoverLetterPath == "" {
		respondError(w, http.StatusNotFound, "Cover letter path not found")
		return
	}
	s.serveGeneratedAsset(w, r, record.CoverLetterPath)
}
