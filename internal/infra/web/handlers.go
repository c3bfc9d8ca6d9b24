package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"asklaw-backend/internal/domain"
	"asklaw-backend/internal/domain/model"
	"asklaw-backend/internal/usecase"
)

type askRequest struct {
	UserID   string `json:"user_id"`
	Question string `json:"question"`
}

type askResponse struct {
	JobID string `json:"job_id"`
}

type statusResponse struct {
	Status string `json:"status"`
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
	Cached bool   `json:"cached,omitempty"`
}

// askSubmitHandler admits a question and returns the job ID immediately.
func askSubmitHandler(askUC usecase.AskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		jobID, err := askUC.Submit(r.Context(), req.UserID, req.Question)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, "user_id and question required", http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to admit question", http.StatusServiceUnavailable)
			return
		}

		writeJSON(w, http.StatusAccepted, askResponse{JobID: jobID})
	}
}

// askStatusHandler reports job status; for done jobs it includes the answer,
// for failed jobs the stored error message.
func askStatusHandler(askUC usecase.AskUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")

		view, err := askUC.Status(r.Context(), jobID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				http.Error(w, "Task not found", http.StatusNotFound)
			case errors.Is(err, domain.ErrInconsistentState):
				log.Error().Err(err).Str("job_id", jobID).Msg("inconsistent job state served to client")
				http.Error(w, "Internal inconsistency", http.StatusInternalServerError)
			default:
				http.Error(w, "Status unavailable", http.StatusServiceUnavailable)
			}
			return
		}

		resp := statusResponse{Status: string(view.Status), Cached: view.Cached}
		switch view.Status {
		case model.AskJobStatusDone:
			resp.Answer = view.Answer
		case model.AskJobStatusError:
			resp.Error = view.Error
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
