package assessment

// Filter returns the questions of t that apply to profile p, in declaration
// order. Rules are applied conjunctively per question.
func Filter(t *Track, p Profile) []Question {
	tier := p.Tier(t)
	excluded := excludedCategories(t, p)

	out := make([]Question, 0, len(t.Questions))
	for _, q := range t.Questions {
		if excluded[q.Category] {
			continue
		}
		if !roleAllows(q, tier) {
			continue
		}
		if t.IndustryRule && !industryAllows(q, p) {
			continue
		}
		if !countryAllows(q, p) {
			continue
		}
		out = append(out, q)
	}

	if t.PruneRestricted && tier != TierStrategic {
		out = pruneRestricted(out)
	}
	return out
}

// Categories returns the declared categories of t that still hold at least one
// of questions, in declaration order.
func Categories(t *Track, questions []Question) []Category {
	present := make(map[string]bool, len(t.Categories))
	for _, q := range questions {
		present[q.Category] = true
	}
	out := make([]Category, 0, len(present))
	for _, c := range t.Categories {
		if present[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// InCategory returns the questions belonging to category id.
func InCategory(questions []Question, id string) []Question {
	var out []Question
	for _, q := range questions {
		if q.Category == id {
			out = append(out, q)
		}
	}
	return out
}

func roleAllows(q Question, tier Tier) bool {
	if q.Tier == "" {
		return true
	}
	return tier.rank() >= q.Tier.rank()
}

func industryAllows(q Question, p Profile) bool {
	if len(q.Industries) == 0 {
		return true
	}
	if p.Sector != SectorPrivate || p.Industry == "" {
		return false
	}
	for _, ind := range q.Industries {
		if ind == p.Industry {
			return true
		}
	}
	return false
}

func countryAllows(q Question, p Profile) bool {
	return q.Country == "" || q.Country == p.Country
}

func excludedCategories(t *Track, p Profile) map[string]bool {
	out := make(map[string]bool)
	if p.OrgType == "" {
		return out
	}
	for _, ex := range t.Exclusions {
		if ex.OrgType == p.OrgType {
			out[ex.Category] = true
		}
	}
	return out
}

// pruneRestricted drops every element still carrying a tier restriction.
// Categories emptied by the pass disappear from Categories automatically.
func pruneRestricted(questions []Question) []Question {
	out := make([]Question, 0, len(questions))
	for _, q := range questions {
		if q.Tier == "" {
			out = append(out, q)
		}
	}
	return out
}
