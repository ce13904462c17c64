package assessment_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
)

func TestComputeResult_PercentageScenario(t *testing.T) {
	track := flatTrack(15, assessment.ZeroScoreOverride{Next: assessment.DefaultPercentBands()})
	answers := assessment.AnswerSet{}
	for i := 1; i <= 15; i++ {
		answers[strconv.Itoa(i)] = i <= 8
	}

	res := assessment.ComputeResult(track, track.Questions, answers)

	if res.Raw != 8 || res.Max != 15 {
		t.Fatalf("score = %d/%d, want 8/15", res.Raw, res.Max)
	}
	if math.Abs(res.Percentage-0.5333) > 0.001 {
		t.Errorf("Percentage = %f, want ~0.533", res.Percentage)
	}
	if res.Level != assessment.LevelDefined {
		t.Errorf("Level = %q, want %q", res.Level, assessment.LevelDefined)
	}
}

func TestComputeResult_ZeroScoreOverride(t *testing.T) {
	bands := nfpTrack().Classifier
	track := flatTrack(50, bands)
	answers := assessment.AnswerSet{}
	for _, q := range track.Questions {
		answers[q.ID] = false
	}

	res := assessment.ComputeResult(track, track.Questions, answers)
	if res.Level != assessment.LevelInitial {
		t.Errorf("Level = %q, want %q", res.Level, assessment.LevelInitial)
	}
	if res.Interpretation != "ad hoc" {
		t.Errorf("Interpretation = %q, want %q", res.Interpretation, "ad hoc")
	}

	// Zero falls outside every absolute band when the override does not apply.
	partial := assessment.AnswerSet{"1": false}
	res = assessment.ComputeResult(track, track.Questions, partial)
	if res.Level != assessment.LevelUnknown {
		t.Errorf("Level = %q, want %q", res.Level, assessment.LevelUnknown)
	}
	if res.Interpretation != assessment.UnknownInterpretation {
		t.Errorf("Interpretation = %q, want %q", res.Interpretation, assessment.UnknownInterpretation)
	}
}

func TestComputeResult_DenominatorStrategies(t *testing.T) {
	track := executiveTrack()
	qs := assessment.Filter(track, assessment.Profile{Role: "csuite", Sector: assessment.SectorPublic})
	// 1, 2, 142, 3, 12 are applicable; 142 is hidden because 2 is "no".
	answers := assessment.AnswerSet{"1": true, "2": false, "3": true, "12": true}

	tests := []struct {
		name       string
		strategy   assessment.Denominator
		wantMax    int
		wantGovMax int
	}{
		{"all filtered", assessment.DenominatorAllFiltered, 5, 3},
		{"visible only", assessment.DenominatorVisibleOnly, 4, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track.Denominator = tt.strategy
			res := assessment.ComputeResult(track, qs, answers)
			if res.Raw != 3 {
				t.Errorf("Raw = %d, want 3", res.Raw)
			}
			if res.Max != tt.wantMax {
				t.Errorf("Max = %d, want %d", res.Max, tt.wantMax)
			}
			gov, ok := res.Category("gov")
			if !ok {
				t.Fatal("category gov missing")
			}
			if gov.Max != tt.wantGovMax || gov.Raw != 1 {
				t.Errorf("gov = %d/%d, want 1/%d", gov.Raw, gov.Max, tt.wantGovMax)
			}
		})
	}
}

func TestComputeResult_CategoryOrderAndPercentages(t *testing.T) {
	track := executiveTrack()
	qs := assessment.Filter(track, assessment.Profile{Role: "csuite", Sector: assessment.SectorPrivate, Industry: "Fintech"})
	answers := assessment.AnswerSet{"1": true, "2": true, "142": true, "3": false, "10": true, "12": false}

	res := assessment.ComputeResult(track, qs, answers)

	want := []string{"gov", "proc", "ind"}
	if len(res.Categories) != len(want) {
		t.Fatalf("Categories = %+v, want %v", res.Categories, want)
	}
	for i, id := range want {
		if res.Categories[i].CategoryID != id {
			t.Errorf("Categories[%d] = %q, want %q", i, res.Categories[i].CategoryID, id)
		}
	}
	if res.Categories[0].Percentage != 1 {
		t.Errorf("gov percentage = %f, want 1", res.Categories[0].Percentage)
	}
	if res.Categories[2].Percentage != 0.5 {
		t.Errorf("ind percentage = %f, want 0.5", res.Categories[2].Percentage)
	}
}

func TestComputeResult_EmptyQuestions(t *testing.T) {
	track := flatTrack(0, assessment.DefaultPercentBands())

	res := assessment.ComputeResult(track, nil, nil)
	if res.Percentage != 0 || math.IsNaN(res.Percentage) {
		t.Errorf("Percentage = %f, want 0", res.Percentage)
	}
	if res.Level != assessment.LevelInitial {
		t.Errorf("Level = %q, want %q", res.Level, assessment.LevelInitial)
	}
}

func TestComputeResult_Monotonic(t *testing.T) {
	track := executiveTrack()
	qs := assessment.Filter(track, assessment.Profile{Role: "csuite", Sector: assessment.SectorPrivate, Industry: "Energy", Country: "Canada"})

	base := assessment.AnswerSet{}
	for _, q := range qs {
		base[q.ID] = false
	}
	base["2"] = true

	before := assessment.ComputeResult(track, qs, base)
	for _, q := range qs {
		if q.ID == "2" {
			continue
		}
		next := base.Clone()
		next[q.ID] = true
		after := assessment.ComputeResult(track, qs, next)
		if after.Raw < before.Raw {
			t.Errorf("raising %s decreased raw score %d -> %d", q.ID, before.Raw, after.Raw)
		}
		b, _ := before.Category(q.Category)
		a, _ := after.Category(q.Category)
		if a.Raw < b.Raw {
			t.Errorf("raising %s decreased %s score %d -> %d", q.ID, q.Category, b.Raw, a.Raw)
		}
	}
}

func TestComputeResult_DoesNotMutateAnswers(t *testing.T) {
	track := executiveTrack()
	answers := assessment.AnswerSet{"2": true}

	assessment.ComputeResult(track, track.Questions, answers)

	if len(answers) != 1 || !answers["2"] {
		t.Errorf("answers = %v, want unchanged", answers)
	}
}

func TestParseDenominator(t *testing.T) {
	for _, d := range []assessment.Denominator{assessment.DenominatorAllFiltered, assessment.DenominatorVisibleOnly} {
		got, err := assessment.ParseDenominator(d.String())
		if err != nil {
			t.Fatalf("ParseDenominator(%q) error = %v", d.String(), err)
		}
		if got != d {
			t.Errorf("ParseDenominator(%q) = %v, want %v", d.String(), got, d)
		}
	}

	if _, err := assessment.ParseDenominator("weighted"); err == nil {
		t.Error("ParseDenominator() should reject unknown strategies")
	}
}
