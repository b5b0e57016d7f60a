package api

import "net/http"

func (s *Server) handleGetPrompts(w http.ResponseWriter, _ *http.Request) {
	prompts, err := s.prompts.Get()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, prompts, nil)
}

// handleUpdatePrompts accepts a JSON object and applies the string-valued
// entries; the store drops unknown keys.
func (s *Server) handleUpdatePrompts(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	updates := make(map[string]string, len(payload))
	for key, value := range payload {
		if text, ok := value.(string); ok {
			updates[key] = text
		}
	}
	prompts, err := s.prompts.Update(updates)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, prompts, nil)
}
