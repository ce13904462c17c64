// Package flow drives an assessment session from onboarding to result. It
// owns the in-memory session state, applies answers through the assessment
// engine, moves between categories and persists progress after every change.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
	"github.com/p-n-ai/risk-snapshot/internal/progress"
)

const defaultIdleTimeout = 24 * time.Hour

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrAlreadyFinished = errors.New("session already finished")
	ErrNotFinished     = errors.New("session not finished")
	ErrUnknownTrack    = errors.New("unknown track")
	ErrQuestionHidden  = errors.New("question is not visible")
	ErrInvalidCategory = errors.New("category index out of range")
	ErrNoQuestions     = errors.New("no questions apply to this profile")
)

// TrackSource resolves track definitions. *questionbank.Loader satisfies it.
type TrackSource interface {
	Track(id assessment.TrackID) (*assessment.Track, bool)
}

// Config holds engine dependencies.
type Config struct {
	Tracks TrackSource
	// Progress is optional; without it sessions are not resumable.
	Progress progress.Store
	Events   EventLogger
	// IdleTimeout evicts sessions untouched for longer (default 24h).
	IdleTimeout time.Duration
}

// Engine manages assessment sessions.
type Engine struct {
	tracks   TrackSource
	progress progress.Store
	events   EventLogger
	idle     time.Duration
	now      func() time.Time
	newID    func() string

	mu       sync.Mutex
	sessions map[string]*session
}

// NewEngine creates a flow engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Tracks == nil {
		return nil, fmt.Errorf("track source is nil")
	}
	events := cfg.Events
	if events == nil {
		events = NopEventLogger{}
	}
	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = defaultIdleTimeout
	}
	return &Engine{
		tracks:   cfg.Tracks,
		progress: cfg.Progress,
		events:   events,
		idle:     idle,
		now:      time.Now,
		newID:    uuid.NewString,
		sessions: make(map[string]*session),
	}, nil
}

type session struct {
	mu sync.Mutex

	id           string
	respondentID string
	persist      bool
	track        *assessment.Track
	profile      assessment.Profile
	questions    []assessment.Question
	categories   []assessment.Category
	answers      assessment.AnswerSet
	index        int
	resumed      bool
	result       *assessment.Result
	startedAt    time.Time
	finishedAt   time.Time

	// unix nanos of the last mutation, read by eviction without s.mu.
	lastActive atomic.Int64
}

func (s *session) key() progress.Key {
	return progress.Key{RespondentID: s.respondentID, Track: s.track.ID}
}

// StartRequest opens a session. Profile may be nil to resume whatever the
// respondent saved last; RespondentID may be empty for an anonymous session
// that is never persisted.
type StartRequest struct {
	Track        assessment.TrackID
	RespondentID string
	Profile      *assessment.Profile
}

// Start creates a session. A saved snapshot is resumed when its profile
// selects the same questions as the requested one; otherwise it is discarded.
func (e *Engine) Start(ctx context.Context, req StartRequest) (Status, error) {
	t, ok := e.tracks.Track(req.Track)
	if !ok {
		return Status{}, fmt.Errorf("%w: %q", ErrUnknownTrack, req.Track)
	}

	s := &session{
		id:           e.newID(),
		respondentID: req.RespondentID,
		persist:      req.RespondentID != "" && e.progress != nil,
		track:        t,
		answers:      assessment.AnswerSet{},
		startedAt:    e.now(),
	}
	if s.respondentID == "" {
		s.respondentID = s.id
	}

	snap := e.load(ctx, s)
	switch {
	case req.Profile != nil:
		p, err := assessment.NewProfile(t, *req.Profile)
		if err != nil {
			return Status{}, err
		}
		s.profile = p
		if snap != nil && !sameSelection(snap.Profile, p) {
			e.clear(ctx, s)
			snap = nil
		}
	case snap != nil:
		s.profile = snap.Profile
	default:
		return Status{}, fmt.Errorf("%w: role is required", assessment.ErrInvalidProfile)
	}

	s.questions = assessment.Filter(t, s.profile)
	if len(s.questions) == 0 {
		return Status{}, ErrNoQuestions
	}
	s.categories = assessment.Categories(t, s.questions)

	if snap != nil {
		for _, q := range s.questions {
			if v, ok := snap.Answers[q.ID]; ok {
				s.answers[q.ID] = v
			}
		}
		s.index = clamp(snap.CurrentCategoryIndex, len(s.categories))
		s.resumed = true
	}
	e.touch(s)

	e.mu.Lock()
	e.evictIdle()
	e.sessions[s.id] = s
	e.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	eventType := EventStarted
	if s.resumed {
		eventType = EventResumed
	} else {
		e.save(ctx, s)
	}
	e.logEvent(s, eventType, map[string]any{
		"role":      string(s.profile.Role),
		"questions": len(s.questions),
		"answered":  len(s.answers),
	})

	slog.Info("assessment session started",
		"session_id", s.id,
		"track", t.ID,
		"resumed", s.resumed,
		"questions", len(s.questions),
	)
	return s.status(), nil
}

// Status returns the current view of a session.
func (e *Engine) Status(id string) (Status, error) {
	s, err := e.session(id)
	if err != nil {
		return Status{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status(), nil
}

// Answer records a yes/no answer. Dependents whose condition no longer holds
// lose their answers.
func (e *Engine) Answer(ctx context.Context, id, questionID string, value bool) (Status, error) {
	return e.mutate(ctx, id, func(s *session) error {
		q, ok := findQuestion(s.questions, questionID)
		if !ok {
			return fmt.Errorf("%w: %q", assessment.ErrUnknownQuestion, questionID)
		}
		if !assessment.IsVisible(q, s.answers) {
			return fmt.Errorf("%w: %q", ErrQuestionHidden, questionID)
		}
		s.answers = assessment.ApplyAnswer(s.questions, s.answers, questionID, value)
		e.logEvent(s, EventAnswered, map[string]any{"question_id": questionID, "value": value})
		return nil
	})
}

// Goto moves to the category at index.
func (e *Engine) Goto(ctx context.Context, id string, index int) (Status, error) {
	return e.mutate(ctx, id, func(s *session) error {
		if index < 0 || index >= len(s.categories) {
			return fmt.Errorf("%w: %d", ErrInvalidCategory, index)
		}
		s.index = index
		return nil
	})
}

// Next moves to the following category. On the last category it finishes
// the session instead.
func (e *Engine) Next(ctx context.Context, id string) (Status, error) {
	s, err := e.session(id)
	if err != nil {
		return Status{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		return Status{}, ErrAlreadyFinished
	}
	if s.index < len(s.categories)-1 {
		s.index++
		e.touch(s)
		e.save(ctx, s)
	} else {
		e.finish(ctx, s)
	}
	return s.status(), nil
}

// Back moves to the previous category. It is a no-op on the first one.
func (e *Engine) Back(ctx context.Context, id string) (Status, error) {
	return e.mutate(ctx, id, func(s *session) error {
		if s.index > 0 {
			s.index--
		}
		return nil
	})
}

// Save persists the session explicitly. Unlike the automatic saves after
// each change, failures are returned.
func (e *Engine) Save(ctx context.Context, id string) error {
	s, err := e.session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		return ErrAlreadyFinished
	}
	if !s.persist {
		return nil
	}
	return e.progress.Save(ctx, s.key(), s.snapshot())
}

// Finish scores the session and clears its saved progress. Finishing twice
// returns the same completion; first reports whether this call produced it.
func (e *Engine) Finish(ctx context.Context, id string) (c Completion, first bool, err error) {
	s, err := e.session(id)
	if err != nil {
		return Completion{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		e.finish(ctx, s)
		first = true
	}
	return s.completion(), first, nil
}

// Completion is a finished session's result with the context needed to
// report on it.
type Completion struct {
	SessionID    string
	RespondentID string
	Track        *assessment.Track
	Profile      assessment.Profile
	Result       assessment.Result
	FinishedAt   time.Time
}

// Comparisons returns the benchmark comparisons of the result.
func (c Completion) Comparisons() []assessment.Comparison {
	return assessment.CompareAll(c.Track, c.Result)
}

// Completed returns the result of a finished session.
func (e *Engine) Completed(id string) (Completion, error) {
	s, err := e.session(id)
	if err != nil {
		return Completion{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Completion{}, ErrNotFinished
	}
	return s.completion(), nil
}

// Restart discards the session and its saved progress so the next Start
// begins fresh.
func (e *Engine) Restart(ctx context.Context, id string) error {
	e.mu.Lock()
	s, ok := e.sessions[id]
	delete(e.sessions, id)
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e.clear(ctx, s)
	e.logEvent(s, EventRestarted, map[string]any{"answered": len(s.answers)})
	slog.Info("assessment session restarted", "session_id", s.id, "track", s.track.ID)
	return nil
}

// Len returns the number of live sessions.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

func (e *Engine) session(id string) (*session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// mutate runs fn on an unfinished session, then saves it.
func (e *Engine) mutate(ctx context.Context, id string, fn func(*session) error) (Status, error) {
	s, err := e.session(id)
	if err != nil {
		return Status{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		return Status{}, ErrAlreadyFinished
	}
	if err := fn(s); err != nil {
		return Status{}, err
	}
	e.touch(s)
	e.save(ctx, s)
	return s.status(), nil
}

func (e *Engine) finish(ctx context.Context, s *session) {
	r := assessment.ComputeResult(s.track, s.questions, s.answers)
	s.result = &r
	s.finishedAt = e.now()
	e.touch(s)
	e.clear(ctx, s)
	e.logEvent(s, EventFinished, map[string]any{
		"raw":   r.Raw,
		"max":   r.Max,
		"level": string(r.Level),
	})
	slog.Info("assessment session finished",
		"session_id", s.id,
		"track", s.track.ID,
		"level", r.Level,
		"raw", r.Raw,
		"max", r.Max,
	)
}

func (e *Engine) load(ctx context.Context, s *session) *progress.Snapshot {
	if !s.persist {
		return nil
	}
	snap, err := e.progress.Load(ctx, s.key())
	if err != nil {
		slog.Warn("loading saved progress failed", "track", s.track.ID, "error", err)
		return nil
	}
	return snap
}

// save persists s. Failures only cost resumability and are logged.
func (e *Engine) save(ctx context.Context, s *session) {
	if !s.persist {
		return
	}
	if err := e.progress.Save(ctx, s.key(), s.snapshot()); err != nil {
		slog.Warn("saving progress failed", "session_id", s.id, "track", s.track.ID, "error", err)
	}
}

func (e *Engine) clear(ctx context.Context, s *session) {
	if !s.persist {
		return
	}
	if err := e.progress.Clear(ctx, s.key()); err != nil {
		slog.Warn("clearing progress failed", "session_id", s.id, "track", s.track.ID, "error", err)
	}
}

func (e *Engine) logEvent(s *session, eventType string, data map[string]any) {
	err := e.events.LogEvent(Event{
		SessionID:    s.id,
		RespondentID: s.respondentID,
		Track:        s.track.ID,
		EventType:    eventType,
		Data:         data,
	})
	if err != nil {
		slog.Warn("logging event failed", "type", eventType, "session_id", s.id, "error", err)
	}
}

func (e *Engine) touch(s *session) {
	s.lastActive.Store(e.now().UnixNano())
}

// evictIdle drops stale sessions. Callers hold e.mu.
func (e *Engine) evictIdle() {
	cutoff := e.now().Add(-e.idle).UnixNano()
	for id, s := range e.sessions {
		if s.lastActive.Load() < cutoff {
			delete(e.sessions, id)
		}
	}
}

// completion requires s.mu held and s.result set.
func (s *session) completion() Completion {
	return Completion{
		SessionID:    s.id,
		RespondentID: s.respondentID,
		Track:        s.track,
		Profile:      s.profile,
		Result:       *s.result,
		FinishedAt:   s.finishedAt,
	}
}

func (s *session) snapshot() progress.Snapshot {
	return progress.Snapshot{
		Profile:              s.profile,
		Answers:              s.answers.Clone(),
		CurrentCategoryIndex: s.index,
	}
}

// sameSelection reports whether two profiles select the same questions.
// Demographics travel with the session but never change the selection.
func sameSelection(a, b assessment.Profile) bool {
	return a.Role == b.Role &&
		a.Sector == b.Sector &&
		a.OrgType == b.OrgType &&
		a.Industry == b.Industry &&
		a.Country == b.Country
}

func findQuestion(questions []assessment.Question, id string) (assessment.Question, bool) {
	for _, q := range questions {
		if q.ID == id {
			return q, true
		}
	}
	return assessment.Question{}, false
}

func clamp(i, n int) int {
	if i < 0 || n == 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
