package assessment

// CategoryComparison decomposes a category's respondent and benchmark
// percentages into a shared overlap plus the excess of either side. At most
// one of the two advantages is non-zero.
type CategoryComparison struct {
	CategoryID          string  `json:"categoryId"`
	Title               string  `json:"title"`
	YourPercentage      float64 `json:"yourPercentage"`
	BenchmarkPercentage float64 `json:"benchmarkPercentage"`
	Overlap             float64 `json:"overlap"`
	YourAdvantage       float64 `json:"yourAdvantage"`
	BenchmarkAdvantage  float64 `json:"benchmarkAdvantage"`
}

// CompareToBenchmark compares each category of r with b. The respondent side
// uses the filtered category maximum from r; the benchmark side is divided by
// the unfiltered category size of t because benchmarks are calibrated against
// the full bank.
func CompareToBenchmark(t *Track, r Result, b BenchmarkEntry) []CategoryComparison {
	out := make([]CategoryComparison, 0, len(r.Categories))
	for _, cs := range r.Categories {
		yours := ratio(cs.Raw, cs.Max)
		theirs := ratio(b.CategoryScores[cs.CategoryID], t.CategorySize(cs.CategoryID))
		out = append(out, CategoryComparison{
			CategoryID:          cs.CategoryID,
			Title:               cs.Title,
			YourPercentage:      yours,
			BenchmarkPercentage: theirs,
			Overlap:             min(yours, theirs),
			YourAdvantage:       max(0, yours-theirs),
			BenchmarkAdvantage:  max(0, theirs-yours),
		})
	}
	return out
}

// OverallComparison compares raw overall scores with a benchmark average.
type OverallComparison struct {
	Level          Level `json:"level"`
	YourScore      int   `json:"yourScore"`
	BenchmarkScore int   `json:"benchmarkScore"`
	Delta          int   `json:"delta"`
}

// CompareOverall compares r's raw score with b's average score.
func CompareOverall(r Result, b BenchmarkEntry) OverallComparison {
	return OverallComparison{
		Level:          b.Level,
		YourScore:      r.Raw,
		BenchmarkScore: b.AverageScore,
		Delta:          r.Raw - b.AverageScore,
	}
}

// Comparison bundles the overall and per-category comparison with one
// benchmark entry.
type Comparison struct {
	Overall    OverallComparison    `json:"overall"`
	Categories []CategoryComparison `json:"categories"`
}

// CompareAll compares r against every benchmark of t, in declaration order.
func CompareAll(t *Track, r Result) []Comparison {
	out := make([]Comparison, 0, len(t.Benchmarks))
	for _, b := range t.Benchmarks {
		out = append(out, Comparison{
			Overall:    CompareOverall(r, b),
			Categories: CompareToBenchmark(t, r, b),
		})
	}
	return out
}
