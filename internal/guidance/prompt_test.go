package guidance_test

import (
	"strings"
	"testing"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
	"github.com/p-n-ai/risk-snapshot/internal/guidance"
	"github.com/p-n-ai/risk-snapshot/internal/questionbank"
)

func TestUserPrompt_Executive(t *testing.T) {
	p := guidance.UserPrompt(guidance.Request{Result: execResult(), Country: "Canada"}, nil)

	for _, want := range []string{
		"**Canada** within the **an unspecified industry**",
		"- **Overall Score**: 8 out of 15\n",
		`- **Maturity Level**: "Defined"`,
		"  - **Governance & Culture**: 3/4\n",
		"PIPEDA",
		"### Strategic Recommendations",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestUserPrompt_NFP(t *testing.T) {
	insight := &questionbank.IndustryInsight{Name: "Fintech", Risks: []string{"fraud"}}
	p := guidance.UserPrompt(guidance.Request{Result: nfpResult(), Industry: "Fintech"}, insight)

	for _, want := range []string{
		"operates in **an unspecified country**.",
		"- **Overall Score**: 45 out of 90 (50%)",
		"  - **Risk Culture**: 7/13 (54%)",
		"donor trust",
		"general best practices in governance",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(p, "fraud") {
		t.Error("NFP prompt should not include industry insights")
	}
}

func TestSystemPrompt(t *testing.T) {
	if !strings.Contains(guidance.SystemPrompt(assessment.TrackNFP), "Not-for-Profit") {
		t.Error("NFP persona should mention the sector")
	}
	if !strings.Contains(guidance.SystemPrompt(assessment.TrackExecutive), "C-suite") {
		t.Error("executive persona should address the C-suite")
	}
}

func TestCountryContext(t *testing.T) {
	tests := []struct {
		country string
		want    string
	}{
		{"South Africa", "POPIA"},
		{"Lesotho", "Data Protection Act, 2013"},
		{"United Kingdom", "Charity Commission"},
		{"New Zealand", "Privacy Act 2020"},
		{"Mauritius", "72-hour"},
		{"Other", "general best practices"},
		{"", "general best practices"},
	}

	for _, tt := range tests {
		if got := guidance.CountryContext(tt.country); !strings.Contains(got, tt.want) {
			t.Errorf("CountryContext(%q) = %q, want it to mention %q", tt.country, got, tt.want)
		}
	}
}
