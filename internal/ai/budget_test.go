package ai

import (
	"testing"
	"time"
)

func TestInMemoryBudget_Unlimited(t *testing.T) {
	b := NewInMemoryBudget(0, time.Hour)
	b.Record("r1", 1_000_000)

	ok, err := b.Check("r1")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !ok {
		t.Error("Check() = false, want true (zero limit means unlimited)")
	}
}

func TestInMemoryBudget_Limits(t *testing.T) {
	tests := []struct {
		name   string
		limit  int64
		record int
		want   bool
	}{
		{"within budget", 1000, 500, true},
		{"over budget", 100, 150, false},
		{"exact budget", 100, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewInMemoryBudget(tt.limit, time.Hour)
			if err := b.Record("r1", tt.record); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
			ok, _ := b.Check("r1")
			if ok != tt.want {
				t.Errorf("Check() = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestInMemoryBudget_IsolatedRespondents(t *testing.T) {
	b := NewInMemoryBudget(100, time.Hour)
	b.Record("r1", 200)

	if ok, _ := b.Check("r2"); !ok {
		t.Error("Check(r2) = false, want true")
	}
}

func TestInMemoryBudget_WindowResets(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	b := NewInMemoryBudget(100, time.Hour)
	b.now = func() time.Time { return now }

	b.Record("r1", 150)
	if ok, _ := b.Check("r1"); ok {
		t.Fatal("Check() = true before window elapsed")
	}

	now = now.Add(time.Hour)
	if ok, _ := b.Check("r1"); !ok {
		t.Error("Check() = false after window elapsed, want true")
	}
	used, limit, _ := b.Usage("r1")
	if used != 0 || limit != 100 {
		t.Errorf("Usage() = %d, %d; want 0, 100", used, limit)
	}
}

func TestInMemoryBudget_NegativeTokens(t *testing.T) {
	b := NewInMemoryBudget(100, time.Hour)
	if err := b.Record("r1", -1); err == nil {
		t.Error("Record() should reject negative tokens")
	}
}
