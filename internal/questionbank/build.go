package questionbank

import (
	"fmt"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
)

var levels = map[string]assessment.Level{
	string(assessment.LevelInitial):               assessment.LevelInitial,
	string(assessment.LevelManaged):               assessment.LevelManaged,
	string(assessment.LevelDefined):               assessment.LevelDefined,
	string(assessment.LevelQuantitativelyManaged): assessment.LevelQuantitativelyManaged,
	string(assessment.LevelOptimized):             assessment.LevelOptimized,
}

// Build converts a decoded track file into an immutable assessment track and
// checks the cross-references a schema cannot express.
func Build(tf TrackFile, o Overrides) (*assessment.Track, error) {
	t := &assessment.Track{
		ID:              assessment.TrackID(tf.Track),
		Title:           tf.Title,
		StorageKey:      tf.StorageKey,
		IndustryRule:    tf.IndustryRule,
		PruneRestricted: !tf.IndustryRule,
	}
	if t.StorageKey == "" {
		t.StorageKey = tf.Track + "AssessmentProgress"
	}

	for _, r := range tf.Roles {
		t.Roles = append(t.Roles, assessment.RoleInfo{
			ID:    assessment.Role(r.ID),
			Label: r.Label,
			Tier:  assessment.Tier(r.Tier),
		})
	}

	categories := make(map[string]CategoryEntry, len(tf.Categories))
	for _, c := range tf.Categories {
		if _, dup := categories[c.ID]; dup {
			return nil, fmt.Errorf("duplicate category %q", c.ID)
		}
		categories[c.ID] = c
		t.Categories = append(t.Categories, assessment.Category{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Country:     c.Country,
		})
	}

	for _, ex := range tf.Exclusions {
		if _, ok := categories[ex.Category]; !ok {
			return nil, fmt.Errorf("exclusion references unknown category %q", ex.Category)
		}
		t.Exclusions = append(t.Exclusions, assessment.CategoryExclusion{
			OrgType:  assessment.OrgType(ex.OrgType),
			Category: ex.Category,
		})
	}

	questions, err := buildQuestions(tf.Questions, categories)
	if err != nil {
		return nil, err
	}
	t.Questions = questions

	absolute, err := buildBands(tf.Bands)
	if err != nil {
		return nil, err
	}
	percentage, err := buildPercentBands(tf.PercentageBands, absolute)
	if err != nil {
		return nil, err
	}

	kind := tf.Classifier
	if o.Classifier != "" {
		kind = o.Classifier
	}
	var c assessment.Classifier
	switch kind {
	case "absolute":
		c = absolute
	case "percentage":
		if len(percentage) == 0 {
			return nil, fmt.Errorf("percentage classifier requires percentage_bands")
		}
		c = percentage
	default:
		return nil, fmt.Errorf("unknown classifier %q", kind)
	}
	if tf.ZeroScoreOverride {
		c = assessment.ZeroScoreOverride{
			Next:           c,
			Interpretation: absolute.Interpretation(assessment.LevelInitial),
		}
	}
	t.Classifier = c

	denominator := tf.Denominator
	if o.Denominator != "" {
		denominator = o.Denominator
	}
	t.Denominator, err = assessment.ParseDenominator(denominator)
	if err != nil {
		return nil, err
	}

	for _, b := range tf.Benchmarks {
		level, ok := levels[b.Level]
		if !ok {
			return nil, fmt.Errorf("benchmark has unknown level %q", b.Level)
		}
		for id := range b.CategoryScores {
			if _, ok := categories[id]; !ok {
				return nil, fmt.Errorf("benchmark %s references unknown category %q", b.Level, id)
			}
		}
		t.Benchmarks = append(t.Benchmarks, assessment.BenchmarkEntry{
			Level:          level,
			AverageScore:   b.AverageScore,
			CategoryScores: b.CategoryScores,
		})
	}

	return t, nil
}

func buildQuestions(entries []QuestionEntry, categories map[string]CategoryEntry) ([]assessment.Question, error) {
	seen := make(map[string]bool, len(entries))
	out := make([]assessment.Question, 0, len(entries))
	for _, e := range entries {
		if seen[e.ID] {
			return nil, fmt.Errorf("duplicate question id %q", e.ID)
		}
		seen[e.ID] = true

		cat, ok := categories[e.Category]
		if !ok {
			return nil, fmt.Errorf("question %s: unknown category %q", e.ID, e.Category)
		}

		country := e.Country
		if cat.Country != "" {
			if country != "" && country != cat.Country {
				return nil, fmt.Errorf("question %s: country %q conflicts with category country %q", e.ID, country, cat.Country)
			}
			country = cat.Country
		}

		q := assessment.Question{
			ID:         e.ID,
			Category:   e.Category,
			Text:       e.Text,
			Tier:       assessment.Tier(e.Role),
			Industries: e.Industries,
			Country:    country,
		}
		if e.DependsOn != nil {
			q.DependsOn = &assessment.Dependency{QuestionID: e.DependsOn.Question, Required: e.DependsOn.Answer}
		}
		out = append(out, q)
	}

	for _, q := range out {
		if q.DependsOn == nil {
			continue
		}
		if q.DependsOn.QuestionID == q.ID {
			return nil, fmt.Errorf("question %s depends on itself", q.ID)
		}
		if !seen[q.DependsOn.QuestionID] {
			return nil, fmt.Errorf("question %s depends on unknown question %q", q.ID, q.DependsOn.QuestionID)
		}
	}
	return out, nil
}

func buildBands(entries []BandEntry) (assessment.AbsoluteBands, error) {
	out := make(assessment.AbsoluteBands, 0, len(entries))
	for i, e := range entries {
		level, ok := levels[e.Level]
		if !ok {
			return nil, fmt.Errorf("band %d: unknown level %q", i, e.Level)
		}
		if e.Min > e.Max {
			return nil, fmt.Errorf("band %s: min %d exceeds max %d", e.Level, e.Min, e.Max)
		}
		if i > 0 && e.Min <= entries[i-1].Max {
			return nil, fmt.Errorf("band %s overlaps band %s", e.Level, entries[i-1].Level)
		}
		out = append(out, assessment.Band{
			Level:          level,
			Min:            e.Min,
			Max:            e.Max,
			Interpretation: e.Interpretation,
		})
	}
	return out, nil
}

func buildPercentBands(entries []PercentEntry, absolute assessment.AbsoluteBands) (assessment.PercentageBands, error) {
	out := make(assessment.PercentageBands, 0, len(entries))
	for i, e := range entries {
		level, ok := levels[e.Level]
		if !ok {
			return nil, fmt.Errorf("percentage band %d: unknown level %q", i, e.Level)
		}
		if i > 0 && e.MaxPercent <= entries[i-1].MaxPercent {
			return nil, fmt.Errorf("percentage band %s is not above %s", e.Level, entries[i-1].Level)
		}
		out = append(out, assessment.PercentBand{
			Level:          level,
			MaxPercent:     e.MaxPercent,
			Interpretation: absolute.Interpretation(level),
		})
	}
	return out, nil
}
