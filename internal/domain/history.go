package domain

import "time"

// HistoricalRecord is one observed performance sample for a plan. Records
// arrive from noisy spreadsheet exports; publisher is free text here and is
// not constrained to the KnownPublishers list.
type HistoricalRecord struct {
	PlanID            string    `json:"plan_id"`
	Publisher         string    `json:"publisher"`
	Date              time.Time `json:"date"`
	Revenue           float64   `json:"revenue"`
	DistributionCount int       `json:"distribution"`
	Clicks            int       `json:"clicks"`
	Subcategory       string    `json:"subcategory,omitempty"`
}

// AggregatedMetrics is the per-plan rollup of all matching historical
// records. Computed fresh on every ranking run, never persisted on its own.
type AggregatedMetrics struct {
	// CTR is a percentage: clicks / distribution * 100, rounded to 2 places.
	CTR float64 `json:"ctr"`
	// EPC is revenue per click: revenue / clicks.
	EPC float64 `json:"epc"`
	// AvgRevenue is total revenue divided by the fixed 7-day lookback
	// window, not by the number of records present. Missing days count as
	// zero-revenue days.
	AvgRevenue float64 `json:"avg_revenue"`

	// Totals backing the ratios, kept for reporting.
	TotalRevenue      float64 `json:"total_revenue"`
	TotalDistribution int     `json:"total_distribution"`
	TotalClicks       int     `json:"total_clicks"`

	// SubcategoryFallback is true when the plan had no direct records and
	// the rollup came from records sharing its subcategory instead.
	SubcategoryFallback bool `json:"subcategory_fallback,omitempty"`
}

// HistoryWindowDays is the fixed lookback window for avgRevenue. The
// denominator is the calendar window, regardless of how many samples exist
// inside it.
const HistoryWindowDays = 7
