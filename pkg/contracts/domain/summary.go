package domain

// RankedValue is a value with its occurrence count
type RankedValue struct {
	Value int `json:"value"`
	Count int `json:"count"`
}

// ContextSummary is the bounded digest of the table sent to the narrative
// generator. It never embeds the full table.
type ContextSummary struct {
	TotalDraws      int           `json:"total_draws"`
	FirstDate       string        `json:"first_date"`
	LastDate        string        `json:"last_date"`
	Years           []int         `json:"years"`
	MeanNumber      float64       `json:"mean_number"`
	MedianNumber    float64       `json:"median_number"`
	MeanSeries      float64       `json:"mean_series"`
	MedianSeries    float64       `json:"median_series"`
	UniqueNumbers   int           `json:"unique_numbers"`
	UniqueSeries    int           `json:"unique_series"`
	EvenCount       int           `json:"even_count"`
	OddCount        int           `json:"odd_count"`
	TopNumbers      []RankedValue `json:"top_numbers"`
	TopSeries       []RankedValue `json:"top_series"`
	AvgDrawsPerYear float64       `json:"avg_draws_per_year"`
	MaxDrawsPerYear int           `json:"max_draws_per_year"`
	TopWeekday      string        `json:"top_weekday"`
	Sample          []Draw        `json:"sample"`
}
