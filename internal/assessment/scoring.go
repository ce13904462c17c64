package assessment

import "fmt"

// Denominator selects which filtered questions count towards the maximum
// score.
type Denominator int

const (
	// DenominatorAllFiltered counts every filtered question, including
	// conditional questions that were never shown.
	DenominatorAllFiltered Denominator = iota
	// DenominatorVisibleOnly counts only questions visible under the final
	// answers.
	DenominatorVisibleOnly
)

func (d Denominator) String() string {
	switch d {
	case DenominatorAllFiltered:
		return "all_filtered"
	case DenominatorVisibleOnly:
		return "visible_only"
	default:
		return "unknown"
	}
}

// ParseDenominator parses the String form of a Denominator.
func ParseDenominator(s string) (Denominator, error) {
	switch s {
	case "all_filtered":
		return DenominatorAllFiltered, nil
	case "visible_only":
		return DenominatorVisibleOnly, nil
	default:
		return 0, fmt.Errorf("unknown denominator strategy %q", s)
	}
}

// Scored returns the questions that contribute to raw and max scores.
func (d Denominator) Scored(questions []Question, answers AnswerSet) []Question {
	if d == DenominatorVisibleOnly {
		return VisibleQuestions(questions, answers)
	}
	return questions
}

// ComputeResult scores answers against the filtered questions of t and
// classifies the outcome. Category order follows the track's declaration.
func ComputeResult(t *Track, questions []Question, answers AnswerSet) Result {
	scored := t.Denominator.Scored(questions, answers)

	byCategory := make(map[string]*CategoryScore)
	res := Result{Track: t.ID}
	for _, c := range Categories(t, questions) {
		res.Categories = append(res.Categories, CategoryScore{CategoryID: c.ID, Title: c.Title})
	}
	for i := range res.Categories {
		byCategory[res.Categories[i].CategoryID] = &res.Categories[i]
	}

	for _, q := range scored {
		res.Max++
		cs := byCategory[q.Category]
		if cs != nil {
			cs.Max++
		}
		if answers[q.ID] {
			res.Raw++
			if cs != nil {
				cs.Raw++
			}
		}
	}

	for i := range res.Categories {
		res.Categories[i].Percentage = ratio(res.Categories[i].Raw, res.Categories[i].Max)
	}
	res.Percentage = ratio(res.Raw, res.Max)

	c := t.Classifier
	if c == nil {
		c = DefaultClassifier()
	}
	cl := c.Classify(Score{
		Raw:         res.Raw,
		Max:         res.Max,
		AllAnswered: MeasureProgress(questions, answers).Complete(),
	})
	res.Level = cl.Level
	res.Interpretation = cl.Interpretation
	return res
}

// ratio returns n/d, or 0 when d is zero.
func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
