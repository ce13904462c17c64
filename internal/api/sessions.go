package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
	"github.com/p-n-ai/risk-snapshot/internal/flow"
)

type startSessionRequest struct {
	Track        assessment.TrackID  `json:"track"`
	// RespondentID keys saved progress. It acts as a bearer token, so clients
	// should send a random value.
	RespondentID string              `json:"respondentId"`
	Profile      *assessment.Profile `json:"profile"`
}

type answerRequest struct {
	Answer *bool `json:"answer"`
}

type navigateRequest struct {
	Action string `json:"action"`
	Index  *int   `json:"index"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Track == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "track is required")
		return
	}

	st, err := s.flow.Start(r.Context(), flow.StartRequest{
		Track:        req.Track,
		RespondentID: req.RespondentID,
		Profile:      req.Profile,
	})
	if err != nil {
		respondFlowError(w, err)
		return
	}
	s.metrics.sessionStarted(st.Track, st.Resumed)
	respondJSON(w, http.StatusCreated, st)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	st, err := s.flow.Status(chi.URLParam(r, "id"))
	if err != nil {
		respondFlowError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Answer == nil {
		respondError(w, http.StatusBadRequest, "validation_error", "answer must be true or false")
		return
	}

	st, err := s.flow.Answer(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "qid"), *req.Answer)
	if err != nil {
		respondFlowError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	id := chi.URLParam(r, "id")
	var (
		st  flow.Status
		err error
	)
	switch req.Action {
	case "next":
		st, err = s.flow.Next(r.Context(), id)
		if err == nil && st.Finished() {
			s.metrics.sessionFinished(st.Track, st.Result.Level)
		}
	case "back":
		st, err = s.flow.Back(r.Context(), id)
	case "goto":
		if req.Index == nil {
			respondError(w, http.StatusBadRequest, "validation_error", "index is required for goto")
			return
		}
		st, err = s.flow.Goto(r.Context(), id, *req.Index)
	default:
		respondError(w, http.StatusBadRequest, "validation_error", "action must be next, back or goto")
		return
	}
	if err != nil {
		respondFlowError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.flow.Save(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondFlowError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	c, first, err := s.flow.Finish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondFlowError(w, err)
		return
	}
	if first {
		s.metrics.sessionFinished(c.Track.ID, c.Result.Level)
	}
	respondJSON(w, http.StatusOK, s.resultView(c))
}

func (s *Server) handleRestartSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.flow.Status(id)
	if err != nil {
		respondFlowError(w, err)
		return
	}
	if err := s.flow.Restart(r.Context(), id); err != nil {
		respondFlowError(w, err)
		return
	}
	s.forgetGuidance(id)
	s.metrics.sessionRestarted(st.Track)
	respondJSON(w, http.StatusOK, map[string]bool{"restarted": true})
}
