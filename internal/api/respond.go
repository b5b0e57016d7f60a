package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"careerdesk/internal/ai"
	"careerdesk/internal/store"
)

type envelope struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func respondJSON(w http.ResponseWriter, status int, data any, meta map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data, Meta: meta})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: errorBody{Message: message, Status: status}})
}

// decodeJSON reads the request body into dst. An empty body decodes to the
// zero value so handlers can treat it like an empty payload.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// respondStoreError maps store sentinel errors onto HTTP statuses and
// surfaces the store's message.
func respondStoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrInvalid):
		status = http.StatusBadRequest
	}
	respondError(w, status, err.Error())
}

// respondAIError distinguishes a missing provider key (a client problem)
// from a failed drafting call (an upstream one).
func respondAIError(w http.ResponseWriter, err error) {
	if errors.Is(err, ai.ErrNotConfigured) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondError(w, http.StatusBadGateway, err.Error())
}
