package guidance

import (
	"fmt"
	"math"
	"strings"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
	"github.com/p-n-ai/risk-snapshot/internal/questionbank"
)

const sectionsExecutive = `Generate a concise, professional, and actionable executive summary in Markdown format. The tone should be strategic and empowering.

Structure the report with the following sections using Markdown headings:

### Executive Summary
(A brief, high-level paragraph summarizing the organization's current risk maturity posture, mentioning the level and what it implies.)

### Key Strengths
(A bulleted list of 2-3 areas where the organization is performing well, based on the higher-scoring categories. Be specific.)

### Areas for Improvement
(A bulleted list of 2-3 of the most critical areas needing attention, based on the lower-scoring categories. Be specific.)

### Strategic Recommendations
(A numbered list of 3-4 concrete, high-impact recommendations to help them advance to the next level of maturity. Link these recommendations back to the identified areas for improvement.)`

const sectionsNFP = `Generate a concise, professional, and actionable executive summary in Markdown format, tailored to the NFP context (mission-focus, donor trust, resource constraints). The tone should be supportive and strategic.

Structure the report with the following sections using Markdown headings:

### Executive Summary
(A brief, high-level paragraph summarizing the organization's current risk maturity posture, mentioning the level and what it implies for mission fulfillment and stakeholder trust.)

### Key Strengths
(A bulleted list of 2-3 areas where the organization demonstrates strong practices, based on the higher-scoring categories.)

### Areas for Improvement
(A bulleted list of 2-3 of the most critical areas needing attention to enhance resilience and effectiveness, based on the lower-scoring categories.)

### Strategic Recommendations
(A numbered list of 3-4 concrete, practical recommendations to help them improve. Frame these within the NFP context, focusing on actions that strengthen governance and program delivery.)`

// SystemPrompt returns the persona for a track.
func SystemPrompt(track assessment.TrackID) string {
	if track == assessment.TrackNFP {
		return "You are a world-class risk management consultant specializing in the Not-for-Profit (NFP) and NGO sectors. You are generating a narrative risk report for an NFP leader."
	}
	return "You are a world-class risk management consultant generating a narrative risk report for a C-suite executive."
}

// UserPrompt renders the result summary and report instructions.
func UserPrompt(req Request, insight *questionbank.IndustryInsight) string {
	var b strings.Builder
	r := req.Result
	nfp := r.Track == assessment.TrackNFP

	country := orDefault(req.Country, "an unspecified country")
	if nfp {
		fmt.Fprintf(&b, "Their organization operates in **%s**.\n\n", country)
	} else {
		fmt.Fprintf(&b, "Their organization operates in **%s** within the **%s**.\n\n",
			country, orDefault(req.Industry, "an unspecified industry"))
	}

	b.WriteString("Their assessment results are as follows:\n")
	if nfp {
		fmt.Fprintf(&b, "- **Overall Score**: %d out of %d (%d%%)\n", r.Raw, r.Max, percent(r.Percentage))
	} else {
		fmt.Fprintf(&b, "- **Overall Score**: %d out of %d\n", r.Raw, r.Max)
	}
	fmt.Fprintf(&b, "- **Maturity Level**: %q\n", string(r.Level))
	fmt.Fprintf(&b, "- **Interpretation**: %s\n", r.Interpretation)
	b.WriteString("- **Category Breakdown**:\n")
	for _, c := range r.Categories {
		if nfp {
			fmt.Fprintf(&b, "  - **%s**: %d/%d (%d%%)\n", c.Title, c.Raw, c.Max, percent(c.Percentage))
		} else {
			fmt.Fprintf(&b, "  - **%s**: %d/%d\n", c.Title, c.Raw, c.Max)
		}
	}

	if insight != nil && !nfp {
		b.WriteString("\nTypical risks in this industry: ")
		b.WriteString(strings.Join(insight.Risks, "; "))
		b.WriteString(".\nTypical opportunities: ")
		b.WriteString(strings.Join(insight.Opportunities, "; "))
		b.WriteString(".\n")
	}

	b.WriteString("\n")
	b.WriteString(CountryContext(req.Country))
	b.WriteString("\n\n")
	if nfp {
		b.WriteString(sectionsNFP)
	} else {
		b.WriteString(sectionsExecutive)
	}
	return b.String()
}

func percent(f float64) int {
	return int(math.Round(f * 100))
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
