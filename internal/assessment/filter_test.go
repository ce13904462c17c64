package assessment_test

import (
	"reflect"
	"testing"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
)

func TestFilter_IndustryRule(t *testing.T) {
	track := executiveTrack()

	tests := []struct {
		name    string
		profile assessment.Profile
		want    []string
		exclude []string
	}{
		{
			name:    "private fintech matches list",
			profile: assessment.Profile{Role: "csuite", Sector: assessment.SectorPrivate, Industry: "Fintech"},
			want:    []string{"10", "12"},
			exclude: []string{"11"},
		},
		{
			name:    "private energy matches single value",
			profile: assessment.Profile{Role: "csuite", Sector: assessment.SectorPrivate, Industry: "Energy"},
			want:    []string{"11", "12"},
			exclude: []string{"10"},
		},
		{
			name:    "private without industry keeps general questions only",
			profile: assessment.Profile{Role: "csuite", Sector: assessment.SectorPrivate},
			want:    []string{"12"},
			exclude: []string{"10", "11"},
		},
		{
			name:    "public excludes every tagged question",
			profile: assessment.Profile{Role: "csuite", Sector: assessment.SectorPublic},
			want:    []string{"12"},
			exclude: []string{"10", "11"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(assessment.Filter(track, tt.profile))
			for _, id := range tt.want {
				if !contains(got, id) {
					t.Errorf("Filter() = %v, want it to include %s", got, id)
				}
			}
			for _, id := range tt.exclude {
				if contains(got, id) {
					t.Errorf("Filter() = %v, want it to exclude %s", got, id)
				}
			}
		})
	}
}

func TestFilter_RoleRule(t *testing.T) {
	track := executiveTrack()

	tests := []struct {
		role assessment.Role
		want bool
	}{
		{"csuite", true},
		{"chief_risk_officer", true},
		{"senior_leader", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got := contains(ids(assessment.Filter(track, assessment.Profile{Role: tt.role})), "1")
			if got != tt.want {
				t.Errorf("question 1 included = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_CountryRule(t *testing.T) {
	track := executiveTrack()

	got := ids(assessment.Filter(track, assessment.Profile{Role: "csuite", Country: "South Africa"}))
	if !contains(got, "20") {
		t.Errorf("Filter() = %v, want South African question 20", got)
	}
	if contains(got, "21") {
		t.Errorf("Filter() = %v, Canadian question 21 should be excluded", got)
	}

	got = ids(assessment.Filter(track, assessment.Profile{Role: "csuite"}))
	if contains(got, "20") || contains(got, "21") {
		t.Errorf("Filter() = %v, country questions should be excluded without a country", got)
	}
}

func TestFilter_CategoryExclusion(t *testing.T) {
	track := nfpTrack()

	tests := []struct {
		orgType  assessment.OrgType
		dropped  string
		retained string
	}{
		{assessment.OrgTypeNGO, "c9", "c10"},
		{assessment.OrgTypeAssociation, "c10", "c9"},
	}

	for _, tt := range tests {
		t.Run(string(tt.orgType), func(t *testing.T) {
			qs := assessment.Filter(track, assessment.Profile{Role: "executive", OrgType: tt.orgType})
			for _, q := range qs {
				if q.Category == tt.dropped {
					t.Errorf("question %s of excluded category %s was included", q.ID, tt.dropped)
				}
			}
			if len(assessment.InCategory(qs, tt.retained)) == 0 {
				t.Errorf("category %s should be retained", tt.retained)
			}
		})
	}
}

func TestFilter_ManagerPruning(t *testing.T) {
	track := nfpTrack()
	p := assessment.Profile{Role: "manager", Country: "South Africa"}

	qs := assessment.Filter(track, p)
	for _, q := range qs {
		if q.Tier != "" {
			t.Errorf("restricted element %s survived pruning", q.ID)
		}
	}

	var cats []string
	for _, c := range assessment.Categories(track, qs) {
		cats = append(cats, c.ID)
	}
	want := []string{"c1", "c9", "c10"}
	if !reflect.DeepEqual(cats, want) {
		t.Errorf("Categories() = %v, want %v", cats, want)
	}

	exec := assessment.Filter(track, assessment.Profile{Role: "executive", Country: "South Africa"})
	if !contains(ids(exec), "11.1") {
		t.Error("executives should see restricted country element 11.1")
	}
}

func TestFilter_DeterministicAndOrdered(t *testing.T) {
	track := executiveTrack()
	p := assessment.Profile{Role: "csuite", Sector: assessment.SectorPrivate, Industry: "Fintech", Country: "Canada"}

	first := ids(assessment.Filter(track, p))
	second := ids(assessment.Filter(track, p))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Filter() not deterministic: %v vs %v", first, second)
	}

	want := []string{"1", "2", "142", "3", "10", "12", "21"}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("Filter() = %v, want %v", first, want)
	}
}

func TestFilter_DoesNotMutateBank(t *testing.T) {
	track := nfpTrack()
	before := len(track.Questions)

	assessment.Filter(track, assessment.Profile{Role: "manager"})

	if len(track.Questions) != before {
		t.Errorf("bank size = %d, want %d", len(track.Questions), before)
	}
	if track.Questions[1].Tier != assessment.TierStrategic {
		t.Error("bank question was modified")
	}
}
