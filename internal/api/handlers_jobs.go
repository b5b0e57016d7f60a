package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"careerdesk/internal/store"
)

func (s *Server) handleListJobs(w http.ResponseWriter, _ *http.Request) {
	jobs, err := s.jobs.List()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, jobs, map[string]any{"count": len(jobs)})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Slug string `json:"slug"`
		store.JobPatch
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	slug := strings.TrimSpace(payload.Slug)
	if slug == "" {
		respondError(w, http.StatusBadRequest, "slug is required")
		return
	}
	job, err := s.jobs.Create(slug, payload.JobPatch)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, job, nil)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Get(mux.Vars(r)["slug"])
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job, nil)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	var patch store.JobPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	job, err := s.jobs.Update(slug, patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job, nil)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	if err := s.jobs.Delete(slug); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": slug}, nil)
}
