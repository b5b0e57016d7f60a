package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"careerdesk/internal/ai"
	"careerdesk/internal/ingest"
	"careerdesk/internal/render"
	"careerdesk/internal/store"
)

// handleAIProject drafts a project entry from free-form context and writes
// it into the master data, creating referenced skills on the way. With a
// project_id the draft replaces that entry instead of adding a new one.
func (s *Server) handleAIProject(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Context   string `json:"context"`
		ProjectID string `json:"project_id"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	contextText := strings.TrimSpace(payload.Context)
	if contextText == "" {
		respondError(w, http.StatusBadRequest, "context is required")
		return
	}
	if !s.drafter.Configured() {
		respondAIError(w, ai.ErrNotConfigured)
		return
	}

	var existing *store.Project
	if payload.ProjectID != "" {
		projects, err := s.master.ListProjects()
		if err != nil {
			respondStoreError(w, err)
			return
		}
		for i := range projects {
			if projects[i].ID == payload.ProjectID {
				existing = &projects[i]
				break
			}
		}
		if existing == nil {
			respondError(w, http.StatusNotFound, fmt.Sprintf("Project '%s' not found", payload.ProjectID))
			return
		}
	}

	master, err := s.master.Snapshot()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	prompts := s.fetchPrompts()

	s.log.Info("AI project request start",
		zap.Int("context_chars", len(contextText)),
		zap.String("project_id", payload.ProjectID),
		zap.Bool("has_existing_project", existing != nil))
	start := time.Now()

	draft, err := s.drafter.DraftProject(r.Context(), master, contextText, existing, prompts[store.PromptProjectExtra])
	s.log.Info("AI project request complete",
		zap.String("project_id", payload.ProjectID),
		zap.Duration("duration", time.Since(start)))
	if err != nil {
		s.log.Error("AI project request failed", zap.Error(err))
		respondAIError(w, err)
		return
	}

	skillIDs, err := s.master.EnsureSkills(draft.Skills)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	experienceIDs := []string{}
	for _, ref := range draft.LinkedExperience {
		lookup := strings.TrimSpace(string(ref))
		if lookup == "" {
			continue
		}
		id, ok, err := s.master.FindExperienceID(lookup)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		if ok {
			experienceIDs = append(experienceIDs, id)
		}
	}

	patch := store.ProjectPatch{
		Name:             &draft.Name,
		Year:             &draft.Year,
		DescriptionShort: &draft.DescriptionShort,
		Bullets:          &draft.Bullets,
		SkillsUsed:       &skillIDs,
		LinkedExperience: &experienceIDs,
	}

	var (
		saved  store.Project
		action string
		status int
	)
	if existing != nil {
		saved, err = s.master.UpdateProject(existing.ID, patch)
		action, status = "updated", http.StatusOK
	} else {
		saved, err = s.master.CreateProject(patch)
		action, status = "created", http.StatusCreated
	}
	if err != nil {
		respondStoreError(w, err)
		return
	}

	s.log.Info("AI project write success",
		zap.String("project_id", saved.ID),
		zap.String("action", action),
		zap.Strings("skills_used", skillIDs),
		zap.Int("bullets", len(saved.Bullets)))

	respondJSON(w, status, saved, map[string]any{
		"action":      action,
		"project_id":  saved.ID,
		"skills_used": skillIDs,
	})
}

// handleGenerateResume drafts a tailored resume plan for a job ad, renders
// it to HTML, and stores the package as a new generation record.
func (s *Server) handleGenerateResume(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		JobAd string `json:"job_ad"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	jobAd := strings.TrimSpace(payload.JobAd)
	if jobAd == "" {
		respondError(w, http.StatusBadRequest, "job_ad is required")
		return
	}

	master, err := s.master.Snapshot()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	prompts := s.fetchPrompts()

	s.log.Info("AI resume generation start", zap.Int("job_ad_chars", len(jobAd)))
	start := time.Now()

	draft, err := s.drafter.DraftResume(r.Context(), master, jobAd, prompts[store.PromptResumeExtra])
	if err != nil {
		s.log.Error("AI resume generation failed", zap.Error(err))
		respondAIError(w, err)
		return
	}

	resumeHTML, err := render.Resume(master, draft.Package, s.themeCSS)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	record, err := s.generations.Create(store.GenerationInput{
		JobTitle:         draft.Package.JobTitle,
		JobAd:            jobAd,
		Summary:          draft.Package.Summary,
		ResumeHTML:       resumeHTML,
		ExperienceIDs:    draft.ExperienceIDs,
		ProjectIDs:       draft.ProjectIDs,
		SkillLabels:      draft.SkillLabels,
		ReasoningEffort:  draft.Package.ReasoningEffort,
		Verbosity:        draft.Package.Verbosity,
		ResumeTokenCount: draft.ResumeTokenCount,
		ExperiencePlan:   draft.Package.Experience,
		ProjectPlan:      draft.Package.Projects,
		SkillsPlan:       draft.Package.Skills,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	s.log.Info("AI resume generation success",
		zap.String("resume_id", record.ID),
		zap.Duration("duration", time.Since(start)),
		zap.Int("experience_count", len(record.ExperienceIDs)),
		zap.Int("project_count", len(record.ProjectIDs)))

	respondJSON(w, http.StatusCreated, record, nil)
}

// handleCoverLetter updates a generation's cover letter. A non-null
// cover_letter field in the payload stores that text as a manual edit and
// clears the token count; otherwise the letter is drafted by the provider.
func (s *Server) handleCoverLetter(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var payload struct {
		Instructions string  `json:"instructions"`
		CoverLetter  *string `json:"cover_letter"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	record, ok := s.getGeneration(w, id)
	if !ok {
		return
	}

	if payload.CoverLetter != nil {
		updated, err := s.generations.Update(id, store.GenerationPatch{CoverLetter: payload.CoverLetter})
		if err != nil {
			respondGenerationError(w, id, err)
			return
		}
		s.log.Info("Manual cover letter update", zap.String("resume_id", id))
		respondJSON(w, http.StatusOK, updated, nil)
		return
	}

	instructions := strings.TrimSpace(payload.Instructions)
	prompts := s.fetchPrompts()
	parts := make([]string, 0, 2)
	for _, part := range []string{prompts[store.PromptCoverLetterExtra], instructions} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	combined := strings.Join(parts, "\n")

	master, err := s.master.Snapshot()
	if err != nil {
		respondStoreError(w, err)
		return
	}

	s.log.Info("AI cover letter generation start",
		zap.String("resume_id", id),
		zap.Bool("has_instructions", instructions != ""))
	start := time.Now()

	draft, err := s.drafter.DraftCoverLetter(r.Context(), master, record.Generation, combined)
	if err != nil {
		s.log.Error("AI cover letter generation failed", zap.Error(err))
		respondAIError(w, err)
		return
	}

	updated, err := s.generations.Update(id, store.GenerationPatch{
		CoverLetter:           &draft.Text,
		CoverLetterTokenCount: draft.TokenCount,
	})
	if err != nil {
		respondGenerationError(w, id, err)
		return
	}

	s.log.Info("AI cover letter generation success",
		zap.String("resume_id", id),
		zap.Duration("duration", time.Since(start)))

	respondJSON(w, http.StatusOK, updated, nil)
}

// handleIngestJobAd extracts plain text from an uploaded job ad file so
// the UI can feed .pdf and .docx postings into the resume flow.
func (s *Server) handleIngestJobAd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(ingest.MaxFileSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, ingest.MaxFileSize+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	text, err := ingest.ExtractText(header.Filename, data)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.log.Info("Job ad ingested",
		zap.String("filename", header.Filename),
		zap.Int("chars", len(text)))

	respondJSON(w, http.StatusOK, map[string]any{"text": text}, map[string]any{
		"filename": header.Filename,
		"chars":    len(text),
	})
}
