package assessment_test

import (
	"strconv"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
)

func dep(id string, required bool) *assessment.Dependency {
	return &assessment.Dependency{QuestionID: id, Required: required}
}

// executiveTrack is a small synthetic bank exercising every Executive rule.
func executiveTrack() *assessment.Track {
	return &assessment.Track{
		ID: assessment.TrackExecutive,
		Roles: []assessment.RoleInfo{
			{ID: "csuite", Tier: assessment.TierStrategic},
			{ID: "chief_risk_officer", Tier: assessment.TierStrategic},
			{ID: "senior_leader", Tier: assessment.TierOperational},
		},
		Categories: []assessment.Category{
			{ID: "gov", Title: "Governance & Culture"},
			{ID: "proc", Title: "Process & Framework"},
			{ID: "ind", Title: "Industry Specific"},
			{ID: "data", Title: "Data Protection & Whistleblowing"},
		},
		Questions: []assessment.Question{
			{ID: "1", Category: "gov", Text: "board agenda", Tier: assessment.TierStrategic},
			{ID: "2", Category: "gov", Text: "risk appetite statement"},
			{ID: "142", Category: "gov", Text: "appetite reviewed", DependsOn: dep("2", true)},
			{ID: "3", Category: "proc", Text: "business case"},
			{ID: "10", Category: "ind", Text: "stress tests", Industries: []string{"Fintech", "Real Estate"}},
			{ID: "11", Category: "ind", Text: "grid resilience", Industries: []string{"Energy"}},
			{ID: "12", Category: "ind", Text: "general private"},
			{ID: "20", Category: "data", Text: "POPIA", Country: "South Africa"},
			{ID: "21", Category: "data", Text: "PIPEDA", Country: "Canada"},
		},
		IndustryRule: true,
		Denominator:  assessment.DenominatorVisibleOnly,
		Classifier:   assessment.ZeroScoreOverride{Next: assessment.DefaultPercentBands()},
		Benchmarks: []assessment.BenchmarkEntry{
			{Level: assessment.LevelDefined, AverageScore: 3, CategoryScores: map[string]int{"gov": 1, "proc": 1}},
			{Level: assessment.LevelOptimized, AverageScore: 6, CategoryScores: map[string]int{"gov": 3, "proc": 1, "ind": 2}},
		},
	}
}

// nfpTrack is a small synthetic bank exercising every NFP rule.
func nfpTrack() *assessment.Track {
	return &assessment.Track{
		ID: assessment.TrackNFP,
		Roles: []assessment.RoleInfo{
			{ID: "executive", Tier: assessment.TierStrategic},
			{ID: "manager", Tier: assessment.TierOperational},
			{ID: "finance_officer", Tier: assessment.TierOperational},
		},
		Categories: []assessment.Category{
			{ID: "c1", Title: "Risk Culture and Leadership"},
			{ID: "c9", Title: "Professional Bodies/Associations"},
			{ID: "c10", Title: "Thematic Risk Management"},
			{ID: "c11", Title: "NPO Act Compliance (South Africa)", Country: "South Africa"},
		},
		Questions: []assessment.Question{
			{ID: "1.1", Category: "c1", Text: "leadership understands ERM"},
			{ID: "1.2", Category: "c1", Text: "CEO endorses ERM", Tier: assessment.TierStrategic},
			{ID: "9.1", Category: "c9", Text: "professional standards"},
			{ID: "10.1", Category: "c10", Text: "beneficiary feedback"},
			{ID: "10.2", Category: "c10", Text: "feedback trend analysis", DependsOn: dep("10.1", true)},
			{ID: "11.1", Category: "c11", Text: "founding document", Tier: assessment.TierStrategic, Country: "South Africa"},
		},
		Exclusions: []assessment.CategoryExclusion{
			{OrgType: assessment.OrgTypeNGO, Category: "c9"},
			{OrgType: assessment.OrgTypeAssociation, Category: "c10"},
		},
		PruneRestricted: true,
		Denominator:     assessment.DenominatorAllFiltered,
		Classifier: assessment.ZeroScoreOverride{
			Interpretation: "ad hoc",
			Next: assessment.AbsoluteBands{
				{Level: assessment.LevelInitial, Min: 1, Max: 20},
				{Level: assessment.LevelManaged, Min: 21, Max: 40},
				{Level: assessment.LevelDefined, Min: 41, Max: 59},
				{Level: assessment.LevelQuantitativelyManaged, Min: 60, Max: 79},
				{Level: assessment.LevelOptimized, Min: 80, Max: 99},
			},
		},
	}
}

// flatTrack builds a track of n unconditional questions in one category.
func flatTrack(n int, c assessment.Classifier) *assessment.Track {
	t := &assessment.Track{
		ID:         assessment.TrackExecutive,
		Roles:      []assessment.RoleInfo{{ID: "csuite", Tier: assessment.TierStrategic}},
		Categories: []assessment.Category{{ID: "all", Title: "All"}},
		Classifier: c,
	}
	for i := 1; i <= n; i++ {
		t.Questions = append(t.Questions, assessment.Question{ID: strconv.Itoa(i), Category: "all"})
	}
	return t
}

func ids(qs []assessment.Question) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
