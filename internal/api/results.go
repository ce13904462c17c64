package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/p-n-ai/risk-snapshot/internal/ai"
	"github.com/p-n-ai/risk-snapshot/internal/assessment"
	"github.com/p-n-ai/risk-snapshot/internal/flow"
	"github.com/p-n-ai/risk-snapshot/internal/guidance"
	"github.com/p-n-ai/risk-snapshot/internal/questionbank"
	"github.com/p-n-ai/risk-snapshot/internal/report"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxCachedGuidance = 10000
)

type resultView struct {
	SessionID       string                        `json:"sessionId"`
	Result          assessment.Result             `json:"result"`
	Comparisons     []assessment.Comparison       `json:"comparisons"`
	Profile         assessment.Profile            `json:"profile"`
	IndustryInsight *questionbank.IndustryInsight `json:"industryInsight,omitempty"`
	FinishedAt      time.Time                     `json:"finishedAt"`
}

func (s *Server) resultView(c flow.Completion) resultView {
	v := resultView{
		SessionID:   c.SessionID,
		Result:      c.Result,
		Comparisons: c.Comparisons(),
		Profile:     c.Profile,
		FinishedAt:  c.FinishedAt,
	}
	if s.guidance != nil && c.Profile.Sector == assessment.SectorPrivate {
		if in, ok := s.guidance.IndustryInsights(c.Profile.Industry); ok {
			v.IndustryInsight = &in
		}
	}
	return v
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	c, err := s.flow.Completed(chi.URLParam(r, "id"))
	if err != nil {
		respondFlowError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.resultView(c))
}

func guidanceRequest(c flow.Completion) guidance.Request {
	return guidance.Request{
		Result:       c.Result,
		Country:      c.Profile.Country,
		Industry:     c.Profile.Industry,
		RespondentID: c.RespondentID,
	}
}

// guidanceFor returns the session's guidance, generating it on first use.
// Fallback texts are not cached so a later request can succeed.
func (s *Server) guidanceFor(ctx context.Context, c flow.Completion) string {
	if text, ok := s.cachedGuidance(c.SessionID); ok {
		return text
	}
	if s.guidance == nil {
		return guidance.FallbackUnavailable
	}
	text := s.guidance.Generate(ctx, guidanceRequest(c))
	s.rememberGuidance(c.SessionID, text)
	return text
}

func (s *Server) cachedGuidance(id string) (string, bool) {
	s.guidanceMu.Lock()
	defer s.guidanceMu.Unlock()
	text, ok := s.guidanceCache[id]
	return text, ok
}

func (s *Server) rememberGuidance(id, text string) {
	if text == "" || guidance.IsFallback(text) {
		return
	}
	s.guidanceMu.Lock()
	defer s.guidanceMu.Unlock()
	if len(s.guidanceCache) >= maxCachedGuidance {
		clear(s.guidanceCache)
	}
	s.guidanceCache[id] = text
}

func (s *Server) forgetGuidance(id string) {
	s.guidanceMu.Lock()
	defer s.guidanceMu.Unlock()
	delete(s.guidanceCache, id)
}

func (s *Server) handleGuidance(w http.ResponseWriter, r *http.Request) {
	c, err := s.flow.Completed(chi.URLParam(r, "id"))
	if err != nil {
		respondFlowError(w, err)
		return
	}
	text := s.guidanceFor(r.Context(), c)
	respondJSON(w, http.StatusOK, map[string]any{
		"guidance": text,
		"fallback": guidance.IsFallback(text),
	})
}

// streamMessage is one websocket frame of the guidance stream.
type streamMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

func (s *Server) handleGuidanceStream(w http.ResponseWriter, r *http.Request) {
	c, err := s.flow.Completed(chi.URLParam(r, "id"))
	if err != nil {
		respondFlowError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, s.acceptOptions())
	if err != nil {
		slog.Warn("guidance stream upgrade failed", "session_id", c.SessionID, "error", err)
		return
	}
	defer conn.CloseNow()

	// Reads are not expected; CloseRead cancels ctx when the client goes away.
	ctx := conn.CloseRead(r.Context())

	if text, ok := s.cachedGuidance(c.SessionID); ok {
		s.streamCached(ctx, conn, text)
		return
	}

	var chunks <-chan ai.StreamChunk
	if s.guidance == nil {
		ch := make(chan ai.StreamChunk, 1)
		ch <- ai.StreamChunk{Content: guidance.FallbackUnavailable, Done: true}
		close(ch)
		chunks = ch
	} else {
		chunks = s.guidance.Stream(ctx, guidanceRequest(c))
	}

	var full strings.Builder
	for chunk := range chunks {
		if chunk.Error != nil {
			slog.Warn("guidance stream interrupted", "session_id", c.SessionID, "error", chunk.Error)
			_ = wsjson.Write(ctx, conn, streamMessage{Type: "error", Content: guidance.FallbackError})
			conn.Close(websocket.StatusInternalError, "guidance failed")
			return
		}
		if chunk.Content != "" {
			full.WriteString(chunk.Content)
			if err := wsjson.Write(ctx, conn, streamMessage{Type: "chunk", Content: chunk.Content}); err != nil {
				return
			}
		}
		if chunk.Done {
			break
		}
	}
	if ctx.Err() != nil {
		return
	}

	text := strings.TrimSpace(full.String())
	s.rememberGuidance(c.SessionID, text)
	if err := wsjson.Write(ctx, conn, streamMessage{Type: "done", Content: fallbackMarker(text)}); err != nil {
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) streamCached(ctx context.Context, conn *websocket.Conn, text string) {
	if err := wsjson.Write(ctx, conn, streamMessage{Type: "chunk", Content: text}); err != nil {
		return
	}
	if err := wsjson.Write(ctx, conn, streamMessage{Type: "done"}); err != nil {
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

// fallbackMarker tags the done frame when the streamed text was a fallback.
func fallbackMarker(text string) string {
	if guidance.IsFallback(text) {
		return "fallback"
	}
	return ""
}

func (s *Server) acceptOptions() *websocket.AcceptOptions {
	var patterns []string
	for _, o := range s.cfg.CORSOrigins {
		if o == "*" {
			return &websocket.AcceptOptions{InsecureSkipVerify: true}
		}
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		patterns = append(patterns, o)
	}
	return &websocket.AcceptOptions{OriginPatterns: patterns}
}

func (s *Server) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	c, err := s.flow.Completed(chi.URLParam(r, "id"))
	if err != nil {
		respondFlowError(w, err)
		return
	}
	buf, err := report.Workbook(c.Result, c.Comparisons())
	if err != nil {
		slog.Error("rendering workbook failed", "session_id", c.SessionID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to render report")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="risk-snapshot-%s.xlsx"`, c.Track.ID))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("writing workbook failed", "session_id", c.SessionID, "error", err)
	}
}

type emailRequest struct {
	Email          string `json:"email"`
	Message        string `json:"message"`
	Guidance       string `json:"guidance"`
	AttachWorkbook bool   `json:"attachWorkbook"`
}

func (s *Server) handleEmailReport(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := report.ValidateEmail(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_email", "Please enter a valid email address.")
		return
	}
	if s.deliverer == nil {
		respondError(w, http.StatusServiceUnavailable, "delivery_unavailable", "email delivery is not configured")
		return
	}

	c, err := s.flow.Completed(chi.URLParam(r, "id"))
	if err != nil {
		respondFlowError(w, err)
		return
	}

	text := req.Guidance
	if text == "" {
		text = s.guidanceFor(r.Context(), c)
	}

	d := report.Delivery{
		Email:           req.Email,
		PersonalMessage: req.Message,
		Result:          c.Result,
		Track:           c.Track.ID,
		Guidance:        text,
	}
	if req.AttachWorkbook {
		buf, err := report.Workbook(c.Result, c.Comparisons())
		if err != nil {
			slog.Error("rendering workbook failed", "session_id", c.SessionID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to render report")
			return
		}
		d.Attachment = buf.Bytes()
	}

	out := s.deliverer.Deliver(r.Context(), d)
	s.metrics.reportDelivered(out.Success)
	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = report.MessageFailed
		}
		respondError(w, http.StatusBadGateway, "delivery_failed", msg)
		return
	}
	respondJSON(w, http.StatusOK, out)
}
