package ai

import (
	"fmt"
	"sync"
	"time"
)

// BudgetChecker checks and records token usage per respondent.
type BudgetChecker interface {
	// Check returns true if the respondent has budget remaining.
	Check(respondentID string) (bool, error)
	// Record adds token usage for a respondent.
	Record(respondentID string, tokens int) error
	// Usage returns current usage and limit. A zero limit means unlimited.
	Usage(respondentID string) (used int64, limit int64, err error)
}

// InMemoryBudget caps the AI tokens each respondent may consume within a
// rolling window. Usage resets when the window elapses.
type InMemoryBudget struct {
	mu     sync.Mutex
	limit  int64
	window time.Duration
	now    func() time.Time
	usage  map[string]*budgetEntry
}

type budgetEntry struct {
	used    int64
	resetAt time.Time
}

// NewInMemoryBudget creates a tracker allowing limit tokens per window.
// A limit of zero or less disables the cap.
func NewInMemoryBudget(limit int64, window time.Duration) *InMemoryBudget {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &InMemoryBudget{
		limit:  limit,
		window: window,
		now:    time.Now,
		usage:  make(map[string]*budgetEntry),
	}
}

func (b *InMemoryBudget) entry(respondentID string) *budgetEntry {
	now := b.now()
	e, ok := b.usage[respondentID]
	if !ok || !now.Before(e.resetAt) {
		e = &budgetEntry{resetAt: now.Add(b.window)}
		b.usage[respondentID] = e
	}
	return e
}

func (b *InMemoryBudget) Check(respondentID string) (bool, error) {
	if b.limit <= 0 {
		return true, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entry(respondentID).used < b.limit, nil
}

func (b *InMemoryBudget) Record(respondentID string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entry(respondentID).used += int64(tokens)
	return nil
}

func (b *InMemoryBudget) Usage(respondentID string) (int64, int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entry(respondentID).used, b.limit, nil
}
