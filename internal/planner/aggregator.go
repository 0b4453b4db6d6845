// Package planner implements the plan ranking engine: metric aggregation,
// tag business rules, weighted scoring, and deterministic ranking.
//
// The pipeline is a pure, single-pass batch computation: one run consumes a
// snapshot of plans and historical records and produces one RankingResult.
// Nothing here blocks on I/O or holds state across runs.
package planner

import (
	"math"

	"github.com/ignite/planner-ranker/internal/domain"
)

// totals accumulates the raw sums behind a plan's aggregated metrics.
type totals struct {
	revenue      float64
	distribution int
	clicks       int
	records      int
}

func (t *totals) add(rec domain.HistoricalRecord) {
	t.revenue += rec.Revenue
	t.distribution += rec.DistributionCount
	t.clicks += rec.Clicks
	t.records++
}

// Aggregate computes one AggregatedMetrics per plan from the full set of
// historical records.
//
// The grouping key is planId alone, never (planId, publisher): revenue is
// attributed to the plan, so a plan's avgRevenue must read identically in
// every publisher scope. avgRevenue divides total revenue by the fixed
// 7-day window, not by the record count — missing days are zero-revenue
// days, not excluded samples.
//
// A plan with no direct records falls back to aggregating every record
// sharing its subcategory; a plan with no match either way gets all-zero
// metrics and still proceeds through ranking.
func Aggregate(plans []domain.Plan, records []domain.HistoricalRecord) map[string]domain.AggregatedMetrics {
	byPlan := make(map[string]*totals)
	bySubcategory := make(map[string]*totals)

	for _, rec := range records {
		t, ok := byPlan[rec.PlanID]
		if !ok {
			t = &totals{}
			byPlan[rec.PlanID] = t
		}
		t.add(rec)

		if rec.Subcategory != "" {
			st, ok := bySubcategory[rec.Subcategory]
			if !ok {
				st = &totals{}
				bySubcategory[rec.Subcategory] = st
			}
			st.add(rec)
		}
	}

	out := make(map[string]domain.AggregatedMetrics, len(plans))
	for _, plan := range plans {
		fallback := false
		t := byPlan[plan.PlanID]
		if t == nil || t.records == 0 {
			if plan.Subcategory != "" {
				t = bySubcategory[plan.Subcategory]
				fallback = t != nil && t.records > 0
			}
		}
		if t == nil || t.records == 0 {
			out[plan.PlanID] = domain.AggregatedMetrics{}
			continue
		}
		out[plan.PlanID] = metricsFromTotals(t, fallback)
	}
	return out
}

func metricsFromTotals(t *totals, fallback bool) domain.AggregatedMetrics {
	m := domain.AggregatedMetrics{
		TotalRevenue:        t.revenue,
		TotalDistribution:   t.distribution,
		TotalClicks:         t.clicks,
		AvgRevenue:          t.revenue / float64(domain.HistoryWindowDays),
		SubcategoryFallback: fallback,
	}
	if t.distribution > 0 {
		m.CTR = round2(100 * float64(t.clicks) / float64(t.distribution))
	}
	if t.clicks > 0 {
		m.EPC = t.revenue / float64(t.clicks)
	}
	return m
}

// round2 rounds to 2 decimal places.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
