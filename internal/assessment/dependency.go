package assessment

// IsVisible reports whether q is currently shown given answers. Questions
// without a dependency are always visible.
func IsVisible(q Question, answers AnswerSet) bool {
	if q.DependsOn == nil {
		return true
	}
	v, ok := answers[q.DependsOn.QuestionID]
	return ok && v == q.DependsOn.Required
}

// VisibleQuestions returns the subset of questions visible under answers.
func VisibleQuestions(questions []Question, answers AnswerSet) []Question {
	out := make([]Question, 0, len(questions))
	for _, q := range questions {
		if IsVisible(q, answers) {
			out = append(out, q)
		}
	}
	return out
}

// ApplyAnswer returns a copy of answers with id set to value. Answers of
// direct dependents of id whose required value differs from value are
// removed. The prune is single-level: dependents of a pruned dependent keep
// their answers.
func ApplyAnswer(questions []Question, answers AnswerSet, id string, value bool) AnswerSet {
	out := answers.Clone()
	out[id] = value
	for _, q := range questions {
		if q.DependsOn == nil || q.DependsOn.QuestionID != id {
			continue
		}
		if q.DependsOn.Required != value {
			delete(out, q.ID)
		}
	}
	return out
}

// CategoryCompletion reports whether every visible question of category id
// has an answer. A category without visible questions is complete.
func CategoryCompletion(questions []Question, id string, answers AnswerSet) bool {
	for _, q := range questions {
		if q.Category != id || !IsVisible(q, answers) {
			continue
		}
		if _, ok := answers[q.ID]; !ok {
			return false
		}
	}
	return true
}

// Progress summarises how much of the visible questionnaire is answered.
type Progress struct {
	Answered int     `json:"answered"`
	Visible  int     `json:"visible"`
	Percent  float64 `json:"percent"`
}

// Complete reports whether every visible question has been answered.
func (p Progress) Complete() bool {
	return p.Answered == p.Visible
}

// MeasureProgress counts answered questions among the visible ones.
func MeasureProgress(questions []Question, answers AnswerSet) Progress {
	var p Progress
	for _, q := range questions {
		if !IsVisible(q, answers) {
			continue
		}
		p.Visible++
		if _, ok := answers[q.ID]; ok {
			p.Answered++
		}
	}
	p.Percent = ratio(p.Answered, p.Visible) * 100
	return p
}
