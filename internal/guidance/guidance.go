// Package guidance produces the narrative report shown next to an assessment
// result. Generation never fails: every problem maps to a fixed fallback text.
package guidance

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/p-n-ai/risk-snapshot/internal/ai"
	"github.com/p-n-ai/risk-snapshot/internal/assessment"
	"github.com/p-n-ai/risk-snapshot/internal/questionbank"
)

// Fallback texts returned instead of generated guidance.
const (
	FallbackUnavailable = "Customized guidance is currently unavailable. The API key may not be configured correctly. Please check the setup."
	FallbackAuth        = "There was an issue with the API key. Customized guidance cannot be generated."
	FallbackError       = "There was an error generating customized guidance. Please try again later."
	FallbackBudget      = "Customized guidance limit reached. Please try again tomorrow."
)

// Fallback reasons reported to OnFallback.
const (
	ReasonUnavailable = "unavailable"
	ReasonAuth        = "auth"
	ReasonError       = "error"
	ReasonEmpty       = "empty"
	ReasonBudget      = "budget"
)

const (
	defaultMaxTokens = 2048
	defaultTimeout   = 60 * time.Second
)

// Completer is the AI surface used by the generator. *ai.Router satisfies it.
type Completer interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (ai.CompletionResponse, error)
	StreamComplete(ctx context.Context, req ai.CompletionRequest) (<-chan ai.StreamChunk, error)
}

// InsightSource looks up industry risk tables. *questionbank.Loader satisfies it.
type InsightSource interface {
	Insight(industry string) (questionbank.IndustryInsight, bool)
}

// Request describes one guidance generation.
type Request struct {
	Result       assessment.Result
	Country      string
	Industry     string
	RespondentID string
}

// Config holds generator dependencies. AI may be nil, in which case every
// request yields FallbackUnavailable.
type Config struct {
	AI         Completer
	Budget     ai.BudgetChecker
	Insights   InsightSource
	Model      string
	MaxTokens  int
	Timeout    time.Duration
	OnFallback func(reason string)
}

// Generator builds prompts and calls the AI gateway.
type Generator struct {
	ai         Completer
	budget     ai.BudgetChecker
	insights   InsightSource
	model      string
	maxTokens  int
	timeout    time.Duration
	onFallback func(reason string)
}

// NewGenerator creates a guidance generator.
func NewGenerator(cfg Config) *Generator {
	g := &Generator{
		ai:         cfg.AI,
		budget:     cfg.Budget,
		insights:   cfg.Insights,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		timeout:    cfg.Timeout,
		onFallback: cfg.OnFallback,
	}
	if g.maxTokens <= 0 {
		g.maxTokens = defaultMaxTokens
	}
	if g.timeout <= 0 {
		g.timeout = defaultTimeout
	}
	return g
}

// IndustryInsights returns the typical risks and opportunities of industry.
func (g *Generator) IndustryInsights(industry string) (questionbank.IndustryInsight, bool) {
	if g.insights == nil || industry == "" {
		return questionbank.IndustryInsight{}, false
	}
	return g.insights.Insight(industry)
}

func (g *Generator) request(req Request) ai.CompletionRequest {
	var insight *questionbank.IndustryInsight
	if in, ok := g.IndustryInsights(req.Industry); ok {
		insight = &in
	}
	return ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: SystemPrompt(req.Result.Track)},
			{Role: "user", Content: UserPrompt(req, insight)},
		},
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Task:      ai.TaskGuidance,
	}
}

// precheck returns a fallback reason when the request must not reach the AI.
func (g *Generator) precheck(req Request) string {
	if g.ai == nil {
		return ReasonUnavailable
	}
	if g.budget != nil && req.RespondentID != "" {
		ok, err := g.budget.Check(req.RespondentID)
		if err != nil {
			slog.Warn("guidance budget check failed", "error", err)
		} else if !ok {
			return ReasonBudget
		}
	}
	return ""
}

// Generate returns Markdown guidance for req or a fallback text.
func (g *Generator) Generate(ctx context.Context, req Request) string {
	if reason := g.precheck(req); reason != "" {
		return g.fallback(reason, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.ai.Complete(ctx, g.request(req))
	if err != nil {
		if errors.Is(err, ai.ErrUnauthorized) {
			return g.fallback(ReasonAuth, err)
		}
		return g.fallback(ReasonError, err)
	}
	g.record(req.RespondentID, resp.TotalTokens())

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return g.fallback(ReasonEmpty, nil)
	}
	return text
}

// Stream returns guidance as a chunk stream. Failures before the first chunk
// produce a single chunk carrying the fallback text; failures mid-stream are
// passed through as an error chunk.
func (g *Generator) Stream(ctx context.Context, req Request) <-chan ai.StreamChunk {
	if reason := g.precheck(req); reason != "" {
		return single(g.fallback(reason, nil))
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	src, err := g.ai.StreamComplete(ctx, g.request(req))
	if err != nil {
		cancel()
		if errors.Is(err, ai.ErrUnauthorized) {
			return single(g.fallback(ReasonAuth, err))
		}
		return single(g.fallback(ReasonError, err))
	}

	out := make(chan ai.StreamChunk)
	go func() {
		defer cancel()
		defer close(out)

		var n int
		for chunk := range src {
			n += len(strings.TrimSpace(chunk.Content))
			if chunk.Error == nil && chunk.Done && n == 0 {
				chunk = ai.StreamChunk{Content: g.fallback(ReasonEmpty, nil), Done: true}
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
			if chunk.Error != nil || chunk.Done {
				break
			}
		}
		// Streams carry no usage metadata; four characters per token is close
		// enough for budgeting.
		g.record(req.RespondentID, n/4)
	}()
	return out
}

func (g *Generator) record(respondentID string, tokens int) {
	if g.budget == nil || respondentID == "" {
		return
	}
	if err := g.budget.Record(respondentID, tokens); err != nil {
		slog.Warn("recording guidance tokens failed", "error", err)
	}
}

func (g *Generator) fallback(reason string, err error) string {
	if err != nil {
		slog.Error("guidance generation failed", "reason", reason, "error", err)
	} else {
		slog.Warn("guidance unavailable", "reason", reason)
	}
	if g.onFallback != nil {
		g.onFallback(reason)
	}
	switch reason {
	case ReasonUnavailable:
		return FallbackUnavailable
	case ReasonAuth:
		return FallbackAuth
	case ReasonBudget:
		return FallbackBudget
	default:
		return FallbackError
	}
}

// IsFallback reports whether text is one of the fixed fallback texts.
func IsFallback(text string) bool {
	switch text {
	case FallbackUnavailable, FallbackAuth, FallbackError, FallbackBudget:
		return true
	}
	return false
}

func single(text string) <-chan ai.StreamChunk {
	ch := make(chan ai.StreamChunk, 1)
	ch <- ai.StreamChunk{Content: text, Done: true}
	close(ch)
	return ch
}
