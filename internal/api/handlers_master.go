package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"

	"careerdesk/internal/store"
)

func (s *Server) handleMasterSnapshot(w http.ResponseWriter, _ *http.Request) {
	doc, err := s.master.Snapshot()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc, nil)
}

func (s *Server) handleSummaryKeys(w http.ResponseWriter, _ *http.Request) {
	keys, err := s.master.SummaryKeys()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, keys, map[string]any{"count": len(keys)})
}

func (s *Server) handleListProjects(w http.ResponseWriter, _ *http.Request) {
	projects, err := s.master.ListProjects()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, projects, map[string]any{"count": len(projects)})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var patch store.ProjectPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	project, err := s.master.CreateProject(patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, project, nil)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var patch store.ProjectPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	project, err := s.master.UpdateProject(id, patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, project, nil)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.master.DeleteProject(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id}, nil)
}

// handleListSkills returns the skill categories, each entry annotated with
// the projects that use it. ?include_usage=0 drops the annotations.
func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	includeUsage := true
	switch strings.ToLower(r.URL.Query().Get("include_usage")) {
	case "0", "false":
		includeUsage = false
	}

	if includeUsage {
		groups, err := s.master.ListSkillsWithUsage()
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, groups, skillsMeta(groups))
		return
	}

	groups, err := s.master.ListSkills()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groups, skillsMeta(groups))
}

func skillsMeta[T any](groups map[string][]T) map[string]any {
	categories := make([]string, 0, len(groups))
	count := 0
	for name, entries := range groups {
		categories = append(categories, name)
		count += len(entries)
	}
	sort.Strings(categories)
	return map[string]any{"categories": categories, "count": count}
}

func (s *Server) handleAddSkill(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Category string `json:"category"`
		Label    string `json:"label"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	skill, err := s.master.AddSkill(payload.Category, payload.Label)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, skill, nil)
}

func (s *Server) handleUpdateSkill(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var patch store.SkillPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	skill, err := s.master.UpdateSkill(vars["category"], vars["id"], patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, skill, nil)
}

func (s *Server) handleDeleteSkill(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.master.DeleteSkill(vars["category"], vars["id"]); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": vars["id"]}, nil)
}

func (s *Server) handleListExperience(w http.ResponseWriter, _ *http.Request) {
	entries, err := s.master.ListExperience()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries, map[string]any{"count": len(entries)})
}

func (s *Server) handleCreateExperience(w http.ResponseWriter, r *http.Request) {
	var patch store.ExperiencePatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	entry, err := s.master.CreateExperience(patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry, nil)
}

func (s *Server) handleUpdateExperience(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var patch store.ExperiencePatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	entry, err := s.master.UpdateExperience(id, patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry, nil)
}

func (s *Server) handleDeleteExperience(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.master.DeleteExperience(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id}, nil)
}
