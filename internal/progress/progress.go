// Package progress persists in-flight assessment sessions so a respondent can
// resume where they left off.
//
// Backends store opaque JSON keyed by respondent and track. SnapshotStore sits
// in front of a backend and owns encoding, validation and the fail-open policy:
// a snapshot that cannot be decoded is cleared and treated as absent.
package progress

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
)

//go:embed schema/snapshot.schema.json
var schemaFS embed.FS

var (
	// ErrNotFound is returned by backends when no snapshot is stored for a key.
	ErrNotFound = errors.New("progress not found")
	// ErrMalformed marks snapshot data that fails decoding or validation.
	ErrMalformed = errors.New("malformed progress snapshot")
)

// Key identifies one respondent's progress on one track.
type Key struct {
	RespondentID string
	Track        assessment.TrackID
}

func (k Key) validate() error {
	if k.RespondentID == "" {
		return fmt.Errorf("respondent id is required")
	}
	if k.Track == "" {
		return fmt.Errorf("track is required")
	}
	return nil
}

// Snapshot is the persisted state of an in-flight session.
type Snapshot struct {
	Profile              assessment.Profile   `json:"profile"`
	Answers              assessment.AnswerSet `json:"answers"`
	CurrentCategoryIndex int                  `json:"currentCategoryIndex"`
	SavedAt              time.Time            `json:"savedAt"`
}

// Store saves, loads and clears snapshots.
type Store interface {
	Save(ctx context.Context, key Key, snap Snapshot) error
	// Load returns (nil, nil) when nothing usable is stored.
	Load(ctx context.Context, key Key) (*Snapshot, error)
	Clear(ctx context.Context, key Key) error
}

// Backend stores raw snapshot bytes.
type Backend interface {
	Put(ctx context.Context, key Key, data []byte) error
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key Key) ([]byte, error)
	Delete(ctx context.Context, key Key) error
}

// TrackSource resolves track definitions. *questionbank.Loader satisfies it.
type TrackSource interface {
	Track(id assessment.TrackID) (*assessment.Track, bool)
}

// SnapshotStore is a Store over any Backend.
type SnapshotStore struct {
	backend Backend
	tracks  TrackSource
	schema  *gojsonschema.Schema
	now     func() time.Time
}

// NewSnapshotStore wraps backend with snapshot encoding and validation.
func NewSnapshotStore(backend Backend, tracks TrackSource) (*SnapshotStore, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	data, err := schemaFS.ReadFile("schema/snapshot.schema.json")
	if err != nil {
		return nil, fmt.Errorf("reading snapshot schema: %w", err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("compiling snapshot schema: %w", err)
	}
	return &SnapshotStore{
		backend: backend,
		tracks:  tracks,
		schema:  schema,
		now:     time.Now,
	}, nil
}

// Save stores snap under key, stamping SavedAt.
func (s *SnapshotStore) Save(ctx context.Context, key Key, snap Snapshot) error {
	if err := key.validate(); err != nil {
		return err
	}
	snap.SavedAt = s.now().UTC()
	if snap.Answers == nil {
		snap.Answers = assessment.AnswerSet{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.backend.Put(ctx, key, data); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// Load returns the stored snapshot. Absent and malformed snapshots both yield
// (nil, nil); malformed ones are deleted so they are not retried.
func (s *SnapshotStore) Load(ctx context.Context, key Key) (*Snapshot, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	snap, err := s.Decode(key.Track, data)
	if err != nil {
		slog.Warn("discarding unreadable progress snapshot",
			"track", key.Track,
			"respondent_id", key.RespondentID,
			"error", err,
		)
		if err := s.backend.Delete(ctx, key); err != nil {
			slog.Warn("clearing unreadable progress snapshot", "track", key.Track, "error", err)
		}
		return nil, nil
	}
	return snap, nil
}

// Clear removes the snapshot for key. Clearing an absent key is not an error.
func (s *SnapshotStore) Clear(ctx context.Context, key Key) error {
	if err := key.validate(); err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	return nil
}

// Decode parses and validates raw snapshot JSON. Answers to questions the
// track no longer defines are dropped.
func (s *SnapshotStore) Decode(track assessment.TrackID, data []byte) (*Snapshot, error) {
	res, err := s.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformed, strings.Join(msgs, "; "))
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if snap.Answers == nil {
		snap.Answers = assessment.AnswerSet{}
	}

	if s.tracks == nil {
		return &snap, nil
	}
	t, ok := s.tracks.Track(track)
	if !ok {
		return nil, fmt.Errorf("%w: unknown track %q", ErrMalformed, track)
	}
	if err := snap.Profile.Validate(t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for id := range snap.Answers {
		if _, ok := t.Question(id); !ok {
			delete(snap.Answers, id)
		}
	}
	return &snap, nil
}
