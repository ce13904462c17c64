package flow_test

import (
	"testing"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
	"github.com/p-n-ai/risk-snapshot/internal/flow"
)

func TestMemoryEventLogger_LogEvent(t *testing.T) {
	logger := flow.NewMemoryEventLogger()

	err := logger.LogEvent(flow.Event{
		SessionID:    "s-1",
		RespondentID: "r-1",
		Track:        assessment.TrackNFP,
		EventType:    flow.EventFinished,
		Data: map[string]any{
			"level": "Defined",
		},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	events := logger.Events()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].EventType != flow.EventFinished {
		t.Errorf("EventType = %q, want %q", events[0].EventType, flow.EventFinished)
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestMemoryEventLogger_RequiresType(t *testing.T) {
	if err := flow.NewMemoryEventLogger().LogEvent(flow.Event{SessionID: "s-1"}); err == nil {
		t.Error("expected error for missing event type")
	}
}

func TestPostgresEventLogger_LogEvent_NilPool(t *testing.T) {
	logger := flow.NewPostgresEventLogger(nil)

	err := logger.LogEvent(flow.Event{
		SessionID: "s-1",
		EventType: flow.EventStarted,
	})
	if err == nil {
		t.Fatal("expected error for nil pool")
	}
}
