package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
	"github.com/p-n-ai/risk-snapshot/internal/flow"
)

const maxBodyBytes = 1 << 20

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// decodeJSON reads a size-limited JSON body into v. An empty body leaves v
// untouched when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// respondFlowError maps engine errors onto HTTP statuses.
func respondFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, flow.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "session_not_found", "session not found")
	case errors.Is(err, flow.ErrUnknownTrack):
		respondError(w, http.StatusNotFound, "track_not_found", err.Error())
	case errors.Is(err, assessment.ErrInvalidProfile):
		respondError(w, http.StatusBadRequest, "invalid_profile", err.Error())
	case errors.Is(err, assessment.ErrUnknownQuestion):
		respondError(w, http.StatusNotFound, "question_not_found", err.Error())
	case errors.Is(err, flow.ErrQuestionHidden):
		respondError(w, http.StatusConflict, "question_hidden", err.Error())
	case errors.Is(err, flow.ErrInvalidCategory):
		respondError(w, http.StatusBadRequest, "invalid_category", err.Error())
	case errors.Is(err, flow.ErrAlreadyFinished):
		respondError(w, http.StatusConflict, "already_finished", "assessment already finished")
	case errors.Is(err, flow.ErrNotFinished):
		respondError(w, http.StatusConflict, "not_finished", "assessment not finished yet")
	case errors.Is(err, flow.ErrNoQuestions):
		respondError(w, http.StatusUnprocessableEntity, "no_questions", err.Error())
	default:
		slog.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
