package questionbank

// TrackFile is the YAML document describing one assessment track.
type TrackFile struct {
	Track             string          `yaml:"track"`
	Title             string          `yaml:"title"`
	StorageKey        string          `yaml:"storage_key"`
	Classifier        string          `yaml:"classifier"`
	Denominator       string          `yaml:"denominator"`
	ZeroScoreOverride bool            `yaml:"zero_score_override"`
	IndustryRule      bool            `yaml:"industry_rule"`
	Roles             []RoleEntry     `yaml:"roles"`
	Exclusions        []Exclusion     `yaml:"exclusions"`
	Categories        []CategoryEntry `yaml:"categories"`
	Questions         []QuestionEntry `yaml:"questions"`
	Bands             []BandEntry     `yaml:"bands"`
	PercentageBands   []PercentEntry  `yaml:"percentage_bands"`
	Benchmarks        []BenchmarkFile `yaml:"benchmarks"`
}

// RoleEntry is one role of the track vocabulary.
type RoleEntry struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	Tier  string `yaml:"tier"`
}

// Exclusion drops a category for an organisation type.
type Exclusion struct {
	OrgType  string `yaml:"org_type"`
	Category string `yaml:"category"`
}

// CategoryEntry declares a category. A category-level country applies to
// every question in it.
type CategoryEntry struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Country     string `yaml:"country"`
}

// QuestionEntry is one question of the bank.
type QuestionEntry struct {
	ID         string     `yaml:"id"`
	Category   string     `yaml:"category"`
	Text       string     `yaml:"text"`
	Role       string     `yaml:"role"`
	Industries []string   `yaml:"industries"`
	Country    string     `yaml:"country"`
	DependsOn  *DependsOn `yaml:"depends_on"`
}

// DependsOn references a prerequisite question and its required answer.
type DependsOn struct {
	Question string `yaml:"question"`
	Answer   bool   `yaml:"answer"`
}

// BandEntry is an absolute raw-score band.
type BandEntry struct {
	Level          string `yaml:"level"`
	Min            int    `yaml:"min"`
	Max            int    `yaml:"max"`
	Interpretation string `yaml:"interpretation"`
}

// PercentEntry is a percentage threshold band.
type PercentEntry struct {
	Level      string  `yaml:"level"`
	MaxPercent float64 `yaml:"max_percent"`
}

// BenchmarkFile is the reference distribution for one maturity level.
type BenchmarkFile struct {
	Level          string         `yaml:"level"`
	AverageScore   int            `yaml:"average_score"`
	CategoryScores map[string]int `yaml:"category_scores"`
}

// Reference holds onboarding vocabularies and industry insight tables.
type Reference struct {
	Countries         []string          `yaml:"countries" json:"countries"`
	Professions       []string          `yaml:"professions" json:"professions"`
	AreasOfFocus      []string          `yaml:"areas_of_focus" json:"areasOfFocus"`
	YearsOfExperience []string          `yaml:"years_of_experience" json:"yearsOfExperience"`
	Industries        []IndustryInsight `yaml:"industries" json:"industries"`
}

// IndustryInsight lists the typical risks and opportunities of an industry.
type IndustryInsight struct {
	Name          string   `yaml:"name" json:"name"`
	Risks         []string `yaml:"risks" json:"risks"`
	Opportunities []string `yaml:"opportunities" json:"opportunities"`
}
