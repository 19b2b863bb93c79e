// Package api contains the request contracts of the dashboard JSON API.
package api

// PaginationRequest represents common pagination parameters
type PaginationRequest struct {
	Page     int `json:"page" query:"page" validate:"min=1"`
	PageSize int `json:"page_size" query:"page_size" validate:"min=1,max=500"`
}

// Offset returns the index of the first row of the page
func (p PaginationRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// DateRangeRequest represents a date range in requests
type DateRangeRequest struct {
	From string `json:"from" query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// FilterRequest narrows the table, as on the interactive page
type FilterRequest struct {
	Years     []int `json:"years,omitempty" query:"year" validate:"omitempty,dive,min=1900,max=2100"`
	NumberMin *int  `json:"number_min,omitempty" query:"number_min" validate:"omitempty,min=0,max=9999"`
	NumberMax *int  `json:"number_max,omitempty" query:"number_max" validate:"omitempty,min=0,max=9999"`
	SeriesMin *int  `json:"series_min,omitempty" query:"series_min" validate:"omitempty,min=0"`
	SeriesMax *int  `json:"series_max,omitempty" query:"series_max" validate:"omitempty,min=0"`
}

// RecordsQuery lists draws, filtered and paginated
type RecordsQuery struct {
	PaginationRequest
	DateRangeRequest
	FilterRequest
	Order string `json:"order" query:"order" validate:"omitempty,oneof=asc desc"`
}

// GroupStatsQuery selects a grouped aggregation
type GroupStatsQuery struct {
	GroupBy string `json:"group_by" query:"group_by" validate:"required"`
	Value   string `json:"value" query:"value" validate:"required"`
}

// ExportQuery selects the download format
type ExportQuery struct {
	Format string `json:"format" query:"format" validate:"omitempty,oneof=csv xlsx"`
}

// AskRequest is a free-form question about the dataset
type AskRequest struct {
	Question string `json:"question" validate:"required,min=3,max=2000"`
}

// ExplainMetricRequest asks for a plain-language explanation of a metric
type ExplainMetricRequest struct {
	Metric string  `json:"metric" validate:"required,max=200"`
	Value  float64 `json:"value"`
	Detail string  `json:"detail,omitempty" validate:"max=1000"`
}

// CriteriaQuery carries the table filters shared by stats and chart requests
type CriteriaQuery struct {
	DateRangeRequest
	FilterRequest
}

// StatsQuery selects the column and parameters of a statistics request
type StatsQuery struct {
	CriteriaQuery
	Column  string   `json:"column" query:"column" validate:"omitempty,column"`
	Columns []string `json:"columns,omitempty" query:"columns" validate:"omitempty,dive,numeric_column"`
	Top     int      `json:"top" query:"top" validate:"min=0,max=1000"`
	MaxLag  int      `json:"max_lag" query:"max_lag" validate:"min=0,max=100"`
}

// ClientLogRequest is a log entry sent by the dashboard page
type ClientLogRequest struct {
	Level   string                 `json:"level" validate:"omitempty,oneof=debug info warn error"`
	Message string                 `json:"message" validate:"required,max=2000"`
	Source  string                 `json:"source,omitempty" validate:"max=200"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
