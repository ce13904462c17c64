// Package questionbank loads the static question banks, maturity bands and
// benchmark tables of every assessment track.
//
// Banks ship embedded in the binary. A directory may be supplied to override
// individual files; invalid overrides are skipped with a warning and the
// embedded copy is used instead.
package questionbank

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
)

//go:embed data/*.yaml schema/*.json
var embedded embed.FS

const referenceFile = "reference.yaml"

var trackFiles = []struct {
	id   assessment.TrackID
	file string
}{
	{assessment.TrackExecutive, "executive.yaml"},
	{assessment.TrackNFP, "nfp.yaml"},
}

// Overrides replaces the scoring strategy declared by a track file. Empty
// fields keep the declared value.
type Overrides struct {
	Classifier  string
	Denominator string
}

// Option configures a Loader.
type Option func(*Loader)

// WithOverrides sets scoring overrides for one track.
func WithOverrides(track assessment.TrackID, o Overrides) Option {
	return func(l *Loader) {
		l.overrides[track] = o
	}
}

// Loader loads and caches track banks.
type Loader struct {
	dir       string
	overrides map[assessment.TrackID]Overrides
	schema    *gojsonschema.Schema
	tracks    map[assessment.TrackID]*assessment.Track
	reference Reference
	mu        sync.RWMutex
}

// NewLoader loads every track. dir may be empty to use only the embedded banks.
func NewLoader(dir string, opts ...Option) (*Loader, error) {
	l := &Loader{
		dir:       dir,
		overrides: make(map[assessment.TrackID]Overrides),
	}
	for _, opt := range opts {
		opt(l)
	}

	schemaData, err := embedded.ReadFile("schema/track.schema.json")
	if err != nil {
		return nil, fmt.Errorf("reading track schema: %w", err)
	}
	l.schema, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaData))
	if err != nil {
		return nil, fmt.Errorf("compiling track schema: %w", err)
	}

	if err := l.Reload(); err != nil {
		return nil, fmt.Errorf("loading question banks: %w", err)
	}

	slog.Info("question banks loaded", "tracks", len(l.tracks), "dir", dir)
	return l, nil
}

// Reload re-reads every bank. On error the previously loaded banks are kept.
func (l *Loader) Reload() error {
	tracks := make(map[assessment.TrackID]*assessment.Track, len(trackFiles))
	for _, tf := range trackFiles {
		t, err := l.loadTrack(tf.file)
		if err != nil {
			return fmt.Errorf("%s: %w", tf.file, err)
		}
		if t.ID != tf.id {
			return fmt.Errorf("%s: declares track %q, want %q", tf.file, t.ID, tf.id)
		}
		tracks[t.ID] = t
	}

	ref, err := l.loadReference()
	if err != nil {
		return fmt.Errorf("%s: %w", referenceFile, err)
	}

	l.mu.Lock()
	l.tracks = tracks
	l.reference = ref
	l.mu.Unlock()
	return nil
}

// Track returns a track by id.
func (l *Loader) Track(id assessment.TrackID) (*assessment.Track, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.tracks[id]
	return t, ok
}

// AllTracks returns every loaded track in a stable order.
func (l *Loader) AllTracks() []*assessment.Track {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*assessment.Track, 0, len(trackFiles))
	for _, tf := range trackFiles {
		if t, ok := l.tracks[tf.id]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Reference returns the onboarding vocabularies.
func (l *Loader) Reference() Reference {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.reference
}

// Insight returns the risks and opportunities listed for an industry.
func (l *Loader) Insight(industry string) (IndustryInsight, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, in := range l.reference.Industries {
		if strings.EqualFold(in.Name, industry) {
			return in, true
		}
	}
	return IndustryInsight{}, false
}

func (l *Loader) loadTrack(name string) (*assessment.Track, error) {
	if data, ok := l.readOverride(name); ok {
		t, err := l.parseTrack(data)
		if err == nil {
			return t, nil
		}
		slog.Warn("skipping invalid question bank override",
			"path", filepath.Join(l.dir, name),
			"error", err,
		)
	}

	data, err := embedded.ReadFile("data/" + name)
	if err != nil {
		return nil, err
	}
	return l.parseTrack(data)
}

func (l *Loader) loadReference() (Reference, error) {
	var ref Reference
	if data, ok := l.readOverride(referenceFile); ok {
		err := yaml.Unmarshal(data, &ref)
		if err == nil {
			return ref, nil
		}
		slog.Warn("skipping invalid reference override",
			"path", filepath.Join(l.dir, referenceFile),
			"error", err,
		)
		ref = Reference{}
	}

	data, err := embedded.ReadFile("data/" + referenceFile)
	if err != nil {
		return ref, err
	}
	if err := yaml.Unmarshal(data, &ref); err != nil {
		return ref, err
	}
	return ref, nil
}

func (l *Loader) readOverride(name string) ([]byte, bool) {
	if l.dir == "" {
		return nil, false
	}
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("reading question bank override", "path", filepath.Join(l.dir, name), "error", err)
		}
		return nil, false
	}
	return data, true
}

func (l *Loader) parseTrack(data []byte) (*assessment.Track, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := l.validate(doc); err != nil {
		return nil, err
	}

	var tf TrackFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("decode track: %w", err)
	}
	return Build(tf, l.overrides[assessment.TrackID(tf.Track)])
}

func (l *Loader) validate(doc any) error {
	res, err := l.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate track: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("track does not match schema: %s", strings.Join(msgs, "; "))
}
