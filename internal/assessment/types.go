// Package assessment implements the question-filtering, conditional-disclosure,
// scoring and maturity-classification engine shared by every assessment track.
//
// All functions in this package are pure: they never mutate their inputs and
// perform no I/O. Tracks are immutable once built and may be shared across
// goroutines.
package assessment

import "errors"

// TrackID identifies an assessment track.
type TrackID string

const (
	TrackExecutive TrackID = "executive"
	TrackNFP       TrackID = "nfp"
)

// Sector is the Executive-track organisation sector.
type Sector string

const (
	SectorPublic  Sector = "public"
	SectorPrivate Sector = "private"
)

// OrgType is the NFP-track organisation type.
type OrgType string

const (
	OrgTypeNGO         OrgType = "ngo"
	OrgTypeAssociation OrgType = "association"
)

// Role is a track-specific respondent role identifier.
type Role string

// Tier groups roles by access level. A question restricted to a tier is only
// shown to respondents whose role is in that tier or above.
type Tier string

const (
	TierOperational Tier = "operational"
	TierStrategic   Tier = "strategic"
)

func (t Tier) rank() int {
	switch t {
	case TierOperational:
		return 1
	case TierStrategic:
		return 2
	default:
		return 0
	}
}

// Level is an ordinal maturity level.
type Level string

const (
	LevelInitial               Level = "Initial"
	LevelManaged               Level = "Managed"
	LevelDefined               Level = "Defined"
	LevelQuantitativelyManaged Level = "Quantitatively Managed"
	LevelOptimized             Level = "Optimized"
	LevelUnknown               Level = "Unknown"
)

// UnknownInterpretation accompanies LevelUnknown.
const UnknownInterpretation = "Could not determine maturity level."

var (
	ErrInvalidProfile  = errors.New("invalid respondent profile")
	ErrUnknownQuestion = errors.New("unknown question")
)

// RoleInfo describes one entry of a track's role vocabulary.
type RoleInfo struct {
	ID    Role   `json:"id"`
	Label string `json:"label"`
	Tier  Tier   `json:"tier"`
}

// Dependency makes a question visible only while another question holds the
// required answer.
type Dependency struct {
	QuestionID string `json:"questionId"`
	Required   bool   `json:"required"`
}

// Question is an immutable yes/no question of a track's bank.
type Question struct {
	ID         string      `json:"id"`
	Category   string      `json:"category"`
	Text       string      `json:"text"`
	Tier       Tier        `json:"tier,omitempty"`
	Industries []string    `json:"industries,omitempty"`
	Country    string      `json:"country,omitempty"`
	DependsOn  *Dependency `json:"dependsOn,omitempty"`
}

// Category groups questions for navigation and sub-scoring.
type Category struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Country     string `json:"country,omitempty"`
}

// CategoryExclusion drops a whole category for one organisation type.
type CategoryExclusion struct {
	OrgType  OrgType
	Category string
}

// AnswerSet maps question ids to yes (true) or no (false). A missing key
// means unanswered.
type AnswerSet map[string]bool

// Clone returns an independent copy of the set.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// CategoryScore is the raw and maximum score of one category.
type CategoryScore struct {
	CategoryID string  `json:"categoryId"`
	Title      string  `json:"title"`
	Raw        int     `json:"raw"`
	Max        int     `json:"max"`
	Percentage float64 `json:"percentage"`
}

// Result is the terminal snapshot of a completed assessment.
type Result struct {
	Track          TrackID         `json:"track"`
	Raw            int             `json:"raw"`
	Max            int             `json:"max"`
	Percentage     float64         `json:"percentage"`
	Level          Level           `json:"level"`
	Interpretation string          `json:"interpretation"`
	Categories     []CategoryScore `json:"categories"`
}

// Category returns the score of the given category.
func (r Result) Category(id string) (CategoryScore, bool) {
	for _, c := range r.Categories {
		if c.CategoryID == id {
			return c, true
		}
	}
	return CategoryScore{}, false
}

// BenchmarkEntry is the reference score distribution of a typical respondent
// at one maturity level.
type BenchmarkEntry struct {
	Level          Level          `json:"level"`
	AverageScore   int            `json:"averageScore"`
	CategoryScores map[string]int `json:"categoryScores"`
}

// Track is the full configuration of one assessment variant.
type Track struct {
	ID         TrackID
	Title      string
	StorageKey string
	Roles      []RoleInfo
	Categories []Category
	Questions  []Question
	Exclusions []CategoryExclusion

	// IndustryRule enables sector/industry filtering.
	IndustryRule bool
	// PruneRestricted re-checks tier restrictions element by element for
	// lower-tier respondents once all other rules have run.
	PruneRestricted bool

	Denominator Denominator
	Classifier  Classifier
	Benchmarks  []BenchmarkEntry
}

// RoleTier returns the tier of role, or false if the role is not part of the
// track's vocabulary.
func (t *Track) RoleTier(role Role) (Tier, bool) {
	for _, r := range t.Roles {
		if r.ID == role {
			return r.Tier, true
		}
	}
	return "", false
}

// Question looks up a question of the unfiltered bank by id.
func (t *Track) Question(id string) (Question, bool) {
	for _, q := range t.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Category looks up a declared category by id.
func (t *Track) Category(id string) (Category, bool) {
	for _, c := range t.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// CategorySize returns the number of questions in a category of the
// unfiltered bank.
func (t *Track) CategorySize(id string) int {
	n := 0
	for _, q := range t.Questions {
		if q.Category == id {
			n++
		}
	}
	return n
}

// Benchmark returns the benchmark entry for a level.
func (t *Track) Benchmark(level Level) (BenchmarkEntry, bool) {
	for _, b := range t.Benchmarks {
		if b.Level == level {
			return b, true
		}
	}
	return BenchmarkEntry{}, false
}

// Countries returns every country referenced by the bank, in first-seen order.
func (t *Track) Countries() []string {
	return t.distinct(func(q Question) []string {
		if q.Country == "" {
			return nil
		}
		return []string{q.Country}
	})
}

// Industries returns every industry referenced by the bank, in first-seen order.
func (t *Track) Industries() []string {
	return t.distinct(func(q Question) []string { return q.Industries })
}

func (t *Track) distinct(values func(Question) []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, q := range t.Questions {
		for _, v := range values(q) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
