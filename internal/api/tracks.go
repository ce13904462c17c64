package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
)

type trackSummary struct {
	ID          assessment.TrackID    `json:"id"`
	Title       string                `json:"title"`
	Roles       []assessment.RoleInfo `json:"roles"`
	Categories  []assessment.Category `json:"categories"`
	Countries   []string              `json:"countries"`
	Industries  []string              `json:"industries"`
	Questions   int                   `json:"questions"`
	Classifier  string                `json:"classifier"`
	Denominator string                `json:"denominator"`
}

func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	tracks := s.catalog.AllTracks()
	out := make([]trackSummary, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, trackSummary{
			ID:          t.ID,
			Title:       t.Title,
			Roles:       t.Roles,
			Categories:  t.Categories,
			Countries:   t.Countries(),
			Industries:  t.Industries(),
			Questions:   len(t.Questions),
			Classifier:  classifierName(t.Classifier),
			Denominator: t.Denominator.String(),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func classifierName(c assessment.Classifier) string {
	if z, ok := c.(assessment.ZeroScoreOverride); ok {
		c = z.Next
	}
	switch c.(type) {
	case assessment.AbsoluteBands:
		return "absolute"
	case assessment.PercentageBands:
		return "percentage"
	default:
		return "default"
	}
}

func (s *Server) handleReference(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.catalog.Reference())
}

func (s *Server) handleIndustryInsight(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if s.guidance == nil {
		respondError(w, http.StatusNotFound, "industry_not_found", "no insights for industry "+name)
		return
	}
	in, ok := s.guidance.IndustryInsights(name)
	if !ok {
		respondError(w, http.StatusNotFound, "industry_not_found", "no insights for industry "+name)
		return
	}
	respondJSON(w, http.StatusOK, in)
}
