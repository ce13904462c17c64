package flow

import (
	"time"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
)

// CategoryStatus is one entry of the category navigation.
type CategoryStatus struct {
	assessment.Category
	Visible  int  `json:"visible"`
	Complete bool `json:"complete"`
}

// QuestionView is a visible question with its current answer, nil when
// unanswered.
type QuestionView struct {
	assessment.Question
	Answer *bool `json:"answer"`
}

// Status is a snapshot of a session as shown to the respondent.
type Status struct {
	SessionID            string              `json:"sessionId"`
	RespondentID         string              `json:"respondentId"`
	Track                assessment.TrackID  `json:"track"`
	Profile              assessment.Profile  `json:"profile"`
	Categories           []CategoryStatus    `json:"categories"`
	CurrentCategoryIndex int                 `json:"currentCategoryIndex"`
	Questions            []QuestionView      `json:"questions"`
	Progress             assessment.Progress `json:"progress"`
	LastCategory         bool                `json:"lastCategory"`
	Resumed              bool                `json:"resumed"`
	StartedAt            time.Time           `json:"startedAt"`
	Result               *assessment.Result  `json:"result,omitempty"`
}

// Finished reports whether the session has a result.
func (st Status) Finished() bool {
	return st.Result != nil
}

// Current returns the category being answered, if any.
func (st Status) Current() (CategoryStatus, bool) {
	if st.CurrentCategoryIndex < 0 || st.CurrentCategoryIndex >= len(st.Categories) {
		return CategoryStatus{}, false
	}
	return st.Categories[st.CurrentCategoryIndex], true
}

// status builds the view. Callers hold s.mu.
func (s *session) status() Status {
	st := Status{
		SessionID:            s.id,
		RespondentID:         s.respondentID,
		Track:                s.track.ID,
		Profile:              s.profile,
		CurrentCategoryIndex: s.index,
		Progress:             assessment.MeasureProgress(s.questions, s.answers),
		LastCategory:         s.index == len(s.categories)-1,
		Resumed:              s.resumed,
		StartedAt:            s.startedAt,
	}
	if s.result != nil {
		r := *s.result
		st.Result = &r
	}

	st.Categories = make([]CategoryStatus, 0, len(s.categories))
	for _, c := range s.categories {
		visible := assessment.VisibleQuestions(assessment.InCategory(s.questions, c.ID), s.answers)
		st.Categories = append(st.Categories, CategoryStatus{
			Category: c,
			Visible:  len(visible),
			Complete: assessment.CategoryCompletion(s.questions, c.ID, s.answers),
		})
	}

	st.Questions = []QuestionView{}
	if cur, ok := st.Current(); ok {
		for _, q := range assessment.VisibleQuestions(assessment.InCategory(s.questions, cur.ID), s.answers) {
			view := QuestionView{Question: q}
			if v, ok := s.answers[q.ID]; ok {
				view.Answer = &v
			}
			st.Questions = append(st.Questions, view)
		}
	}
	return st
}
