package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/burnout909/ai-cpx-app-sub001/pipeline"
)

// Handler scores a session synchronously over HTTP. The body is a pipeline
// request; the response is the full grade report.
type Handler struct {
	Pipeline *pipeline.Pipeline
}

func (h *Handler) ProcessRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	logger := makeRequestLogger(r)

	if r.Method != http.MethodPost {
		logger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	var request pipeline.Request
	if err := json.Unmarshal(body, &request); err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not parse scoring request")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	logger.Info().Str("session_id", request.SessionID).Msg("Starting pipeline for request from API")
	result, err := h.Pipeline.Run(r.Context(), request)
	if err != nil {
		logger.Err(err).Int("status", http.StatusUnprocessableEntity).Msg("Scoring pipeline failed")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.Err(err).Msg("Failed to encode scoring result")
		return
	}
	logger.Info().Int("status", http.StatusOK).Msg("Finished processing request")
}
