package assessment

import "math"

// Score is the classifier input.
type Score struct {
	Raw         int
	Max         int
	AllAnswered bool
}

// Percent returns Raw as a percentage of Max, or 0 when Max is zero.
func (s Score) Percent() float64 {
	if s.Max == 0 {
		return 0
	}
	// Scale before dividing so band edges such as 3/10 land exactly on 30.
	return float64(s.Raw) * 100 / float64(s.Max)
}

// Classification is a maturity level with its interpretation.
type Classification struct {
	Level          Level  `json:"level"`
	Interpretation string `json:"interpretation"`
}

var unknown = Classification{Level: LevelUnknown, Interpretation: UnknownInterpretation}

// Classifier maps a score to a maturity level. Implementations are total:
// inputs outside every band yield LevelUnknown.
type Classifier interface {
	Classify(s Score) Classification
}

// Band is an inclusive [Min, Max] raw-score range.
type Band struct {
	Level          Level
	Min            int
	Max            int
	Interpretation string
}

// AbsoluteBands classifies raw scores against ascending, disjoint bands. The
// first band containing the score wins.
type AbsoluteBands []Band

func (b AbsoluteBands) Classify(s Score) Classification {
	for _, band := range b {
		if s.Raw >= band.Min && s.Raw <= band.Max {
			return Classification{Level: band.Level, Interpretation: band.Interpretation}
		}
	}
	return unknown
}

// Interpretation returns the interpretation attached to level, if any.
func (b AbsoluteBands) Interpretation(level Level) string {
	for _, band := range b {
		if band.Level == level {
			return band.Interpretation
		}
	}
	return ""
}

// PercentBand matches percentages up to and including MaxPercent.
type PercentBand struct {
	Level          Level
	MaxPercent     float64
	Interpretation string
}

// PercentageBands classifies Raw/Max as a percentage against ascending
// thresholds. The first threshold at or above the percentage wins.
type PercentageBands []PercentBand

func (b PercentageBands) Classify(s Score) Classification {
	p := s.Percent()
	if p < 0 || math.IsNaN(p) {
		return unknown
	}
	for _, band := range b {
		if p <= band.MaxPercent {
			return Classification{Level: band.Level, Interpretation: band.Interpretation}
		}
	}
	return unknown
}

// ZeroScoreOverride forces LevelInitial when every applicable question was
// answered and none scored. Other inputs are delegated to Next.
type ZeroScoreOverride struct {
	Next           Classifier
	Interpretation string
}

func (z ZeroScoreOverride) Classify(s Score) Classification {
	if s.AllAnswered && s.Raw == 0 {
		return Classification{Level: LevelInitial, Interpretation: z.Interpretation}
	}
	if z.Next == nil {
		return unknown
	}
	return z.Next.Classify(s)
}

// DefaultPercentBands returns the standard 30/50/70/90/100 thresholds.
func DefaultPercentBands() PercentageBands {
	return PercentageBands{
		{Level: LevelInitial, MaxPercent: 30},
		{Level: LevelManaged, MaxPercent: 50},
		{Level: LevelDefined, MaxPercent: 70},
		{Level: LevelQuantitativelyManaged, MaxPercent: 90},
		{Level: LevelOptimized, MaxPercent: 100},
	}
}

// DefaultClassifier is used by tracks that configure none.
func DefaultClassifier() Classifier {
	return ZeroScoreOverride{Next: DefaultPercentBands()}
}
