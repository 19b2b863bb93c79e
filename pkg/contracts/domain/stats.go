package domain

// OutlierReport summarizes the IQR fences of a numeric column
type OutlierReport struct {
	Column       string  `json:"column"`
	Count        int     `json:"count"`
	Q1           float64 `json:"q1"`
	Q3           float64 `json:"q3"`
	IQR          float64 `json:"iqr"`
	LowerBound   float64 `json:"lower_bound"`
	UpperBound   float64 `json:"upper_bound"`
	Outliers     int     `json:"outliers"`
	OutlierShare float64 `json:"outlier_percentage"`
}

// GroupStat holds the aggregates of one group
type GroupStat struct {
	Key    string  `json:"key"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// GroupStatsResult is a grouped aggregation of one numeric column
type GroupStatsResult struct {
	GroupBy string      `json:"group_by"`
	Value   string      `json:"value"`
	Groups  []GroupStat `json:"groups"`
}

// Frequency is one distinct value with its count and share
type Frequency struct {
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Trend directions
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendFlat       = "flat"
)

// TrendResult is an ordinary least squares fit against days since the first draw
type TrendResult struct {
	Column      string  `json:"column"`
	N           int     `json:"n"`
	Slope       float64 `json:"slope"`
	Intercept   float64 `json:"intercept"`
	RSquared    float64 `json:"r_squared"`
	PValue      float64 `json:"p_value"`
	Direction   string  `json:"direction"`
	Significant bool    `json:"significant"`
}

// MissingValue reports null cells of one raw column
type MissingValue struct {
	Column     string  `json:"column"`
	Missing    int     `json:"missing"`
	Percentage float64 `json:"percentage"`
}

// Description is the pandas-style describe() of a column
type Description struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// UniformityTest is a chi-square goodness of fit against equal expected counts
type UniformityTest struct {
	Column     string         `json:"column"`
	Categories []string       `json:"categories"`
	Observed   []float64      `json:"observed"`
	Expected   float64        `json:"expected"`
	ChiSquare  float64        `json:"chi_square"`
	DoF        int            `json:"degrees_of_freedom"`
	PValue     float64        `json:"p_value"`
	Uniform    bool           `json:"uniform"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// NormalityTest is a Shapiro-Wilk result
type NormalityTest struct {
	Column string  `json:"column"`
	N      int     `json:"n"`
	W      float64 `json:"w"`
	PValue float64 `json:"p_value"`
	Normal bool    `json:"normal"`
}

// LagCorrelation is the autocorrelation at one lag
type LagCorrelation struct {
	Lag         int     `json:"lag"`
	Value       float64 `json:"value"`
	Significant bool    `json:"significant"`
}

// Autocorrelation lists lag correlations with the 95% white noise bound
type Autocorrelation struct {
	Column string           `json:"column"`
	N      int              `json:"n"`
	Bound  float64          `json:"bound"`
	Lags   []LagCorrelation `json:"lags"`
}
