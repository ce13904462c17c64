package assessment_test

import (
	"errors"
	"testing"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
)

func TestProfile_Validate(t *testing.T) {
	exec := executiveTrack()
	nfp := nfpTrack()

	tests := []struct {
		name    string
		track   *assessment.Track
		profile assessment.Profile
		wantErr bool
	}{
		{"executive private with industry", exec, assessment.Profile{Role: "csuite", Sector: assessment.SectorPrivate, Industry: "Fintech"}, false},
		{"executive public", exec, assessment.Profile{Role: "senior_leader", Sector: assessment.SectorPublic}, false},
		{"executive without sector", exec, assessment.Profile{Role: "csuite"}, false},
		{"industry with public sector", exec, assessment.Profile{Role: "csuite", Sector: assessment.SectorPublic, Industry: "Energy"}, true},
		{"industry without sector", exec, assessment.Profile{Role: "csuite", Industry: "Energy"}, true},
		{"missing role", exec, assessment.Profile{Sector: assessment.SectorPublic}, true},
		{"role from other track", exec, assessment.Profile{Role: "manager"}, true},
		{"org type on executive", exec, assessment.Profile{Role: "csuite", OrgType: assessment.OrgTypeNGO}, true},
		{"unknown sector", exec, assessment.Profile{Role: "csuite", Sector: "mixed"}, true},
		{"nfp ngo", nfp, assessment.Profile{Role: "manager", OrgType: assessment.OrgTypeNGO, Country: "Lesotho"}, false},
		{"sector on nfp", nfp, assessment.Profile{Role: "manager", Sector: assessment.SectorPrivate}, true},
		{"unknown org type", nfp, assessment.Profile{Role: "manager", OrgType: "cooperative"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate(tt.track)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, assessment.ErrInvalidProfile) {
				t.Errorf("Validate() error = %v, want ErrInvalidProfile", err)
			}
		})
	}
}

func TestNewProfile_Canonicalises(t *testing.T) {
	track := executiveTrack()

	p, err := assessment.NewProfile(track, assessment.Profile{
		Role:     "csuite",
		Sector:   assessment.SectorPrivate,
		Industry: "  real estate ",
		Country:  "SOUTH AFRICA",
	})
	if err != nil {
		t.Fatalf("NewProfile() error = %v", err)
	}
	if p.Industry != "Real Estate" {
		t.Errorf("Industry = %q, want %q", p.Industry, "Real Estate")
	}
	if p.Country != "South Africa" {
		t.Errorf("Country = %q, want %q", p.Country, "South Africa")
	}
}

func TestNewProfile_KeepsUnknownCountry(t *testing.T) {
	p, err := assessment.NewProfile(executiveTrack(), assessment.Profile{Role: "csuite", Country: " Zambia "})
	if err != nil {
		t.Fatalf("NewProfile() error = %v", err)
	}
	if p.Country != "Zambia" {
		t.Errorf("Country = %q, want %q", p.Country, "Zambia")
	}
}

func TestProfile_Tier(t *testing.T) {
	track := nfpTrack()

	if got := (assessment.Profile{Role: "executive"}).Tier(track); got != assessment.TierStrategic {
		t.Errorf("Tier() = %q, want %q", got, assessment.TierStrategic)
	}
	if got := (assessment.Profile{Role: "finance_officer"}).Tier(track); got != assessment.TierOperational {
		t.Errorf("Tier() = %q, want %q", got, assessment.TierOperational)
	}
}
