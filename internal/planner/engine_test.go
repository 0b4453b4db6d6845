package planner

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/planner-ranker/internal/domain"
)

func TestRun_SinglePaidPlan(t *testing.T) {
	plans := []domain.Plan{{
		PlanID:     "P1",
		Tags:       []domain.Tag{domain.TagPaid},
		BudgetCap:  floatPtr(1000),
		Publishers: []domain.Publisher{"X"},
	}}
	records := []domain.HistoricalRecord{
		{PlanID: "P1", Publisher: "X", Date: day(1), Revenue: 700, DistributionCount: 1000, Clicks: 50},
	}

	result, incomplete := Run(plans, records, domain.DefaultWeights())
	assert.Empty(t, incomplete)
	require.Len(t, result.AllPublishers, 1)

	e := result.AllPublishers[0]
	assert.Equal(t, "P1", e.PlanID)
	assert.Equal(t, 1, e.FinalRank)
	assert.InDelta(t, 5.00, e.CTR, 1e-9)
	assert.InDelta(t, 14.0, e.EPC, 1e-9)
	assert.InDelta(t, 100.0, e.AvgRevenue, 1e-9)
	assert.InDelta(t, 6.303, e.Score, 1e-9)
	assert.InDelta(t, 6.303, e.AdjustedScore, 1e-9) // budgetCap=1000 → damping factor 1.0

	require.Contains(t, result.ByPublisher, "X")
	require.Len(t, result.ByPublisher["X"], 1)
	assert.Equal(t, 1, result.ByPublisher["X"][0].FinalRank)
}

func TestRun_BudgetDampedPlan(t *testing.T) {
	plans := []domain.Plan{{
		PlanID:     "P1",
		Tags:       []domain.Tag{domain.TagPaid},
		BudgetCap:  floatPtr(500),
		Publishers: []domain.Publisher{"X"},
	}}
	records := []domain.HistoricalRecord{
		{PlanID: "P1", Publisher: "X", Date: day(1), Revenue: 700, DistributionCount: 1000, Clicks: 50},
	}

	result, _ := Run(plans, records, domain.DefaultWeights())
	require.Len(t, result.AllPublishers, 1)
	assert.InDelta(t, 6.303, result.AllPublishers[0].Score, 1e-9)
	assert.InDelta(t, 3.1515, result.AllPublishers[0].AdjustedScore, 1e-9)
}

func TestRun_EmptyInputs(t *testing.T) {
	plans := []domain.Plan{{PlanID: "P1", Tags: []domain.Tag{domain.TagFOC}}}
	records := []domain.HistoricalRecord{{PlanID: "P1", Date: day(1)}}

	for _, tc := range []struct {
		name    string
		plans   []domain.Plan
		records []domain.HistoricalRecord
	}{
		{"no plans", nil, records},
		{"no records", plans, nil},
		{"nothing", nil, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			result, incomplete := Run(tc.plans, tc.records, domain.DefaultWeights())
			assert.True(t, result.Empty())
			assert.NotNil(t, result.ByPublisher)
			assert.Empty(t, incomplete)
		})
	}
}

func TestRun_PlanWithoutHistoryStillRanked(t *testing.T) {
	plans := []domain.Plan{
		{PlanID: "P1", Tags: []domain.Tag{domain.TagPaid}, BudgetCap: floatPtr(2000), Publishers: []domain.Publisher{"X"}},
		{PlanID: "P2", Tags: []domain.Tag{domain.TagPaid}, BudgetCap: floatPtr(2000), Publishers: []domain.Publisher{"X"}},
	}
	records := []domain.HistoricalRecord{
		{PlanID: "P1", Date: day(1), Revenue: 700, DistributionCount: 1000, Clicks: 50},
	}

	result, _ := Run(plans, records, domain.DefaultWeights())
	require.Len(t, result.AllPublishers, 2)

	// P2 has no history and no subcategory match: zero metrics, last rank.
	assert.Equal(t, "P1", result.AllPublishers[0].PlanID)
	assert.Equal(t, "P2", result.AllPublishers[1].PlanID)
	assert.Equal(t, 2, result.AllPublishers[1].FinalRank)
	assert.Zero(t, result.AllPublishers[1].CTR)
	assert.Zero(t, result.AllPublishers[1].AdjustedScore)
}

func TestRun_RankDensityAndTieBreak(t *testing.T) {
	var plans []domain.Plan
	for _, id := range []string{"P3", "P1", "P2"} {
		plans = append(plans, domain.Plan{
			PlanID:            id,
			Tags:              []domain.Tag{domain.TagMandatory},
			DistributionCount: intPtr(100),
			Publishers:        []domain.Publisher{"X"},
		})
	}
	// Identical records per plan → identical scores → planId ascending.
	var records []domain.HistoricalRecord
	for _, id := range []string{"P1", "P2", "P3"} {
		records = append(records, domain.HistoricalRecord{
			PlanID: id, Date: day(1), Revenue: 700, DistributionCount: 1000, Clicks: 50,
		})
	}

	result, _ := Run(plans, records, domain.DefaultWeights())
	require.Len(t, result.AllPublishers, 3)

	var ranks []int
	var ids []string
	for _, e := range result.AllPublishers {
		ranks = append(ranks, e.FinalRank)
		ids = append(ids, e.PlanID)
	}
	assert.Equal(t, []int{1, 2, 3}, ranks)
	assert.Equal(t, []string{"P1", "P2", "P3"}, ids)
}

func TestRun_CrossPublisherRevenueInvariance(t *testing.T) {
	plans := []domain.Plan{{
		PlanID:     "P1",
		Tags:       []domain.Tag{domain.TagPaid},
		BudgetCap:  floatPtr(1500),
		Publishers: []domain.Publisher{"A", "B"},
	}}
	records := []domain.HistoricalRecord{
		{PlanID: "P1", Publisher: "A", Date: day(1), Revenue: 350, DistributionCount: 500, Clicks: 25},
		{PlanID: "P1", Publisher: "B", Date: day(2), Revenue: 350, DistributionCount: 500, Clicks: 25},
	}

	result, _ := Run(plans, records, domain.DefaultWeights())

	require.Len(t, result.ByPublisher["A"], 1)
	require.Len(t, result.ByPublisher["B"], 1)
	require.Len(t, result.AllPublishers, 1)

	assert.Equal(t, "A, B", result.AllPublishers[0].Publisher)

	revA := result.ByPublisher["A"][0].AvgRevenue
	revB := result.ByPublisher["B"][0].AvgRevenue
	revAll := result.AllPublishers[0].AvgRevenue
	assert.Equal(t, revA, revB)
	assert.Equal(t, revA, revAll)
	assert.InDelta(t, 100.0, revA, 1e-9)
}

func TestRun_Deterministic(t *testing.T) {
	plans := []domain.Plan{
		{PlanID: "P2", Tags: []domain.Tag{domain.TagFOC}, ClicksToBeDelivered: intPtr(40), Publishers: []domain.Publisher{"A"}},
		{PlanID: "P1", Tags: []domain.Tag{domain.TagPaid}, BudgetCap: floatPtr(800), Publishers: []domain.Publisher{"A", "B"}},
		{PlanID: "P3", Tags: []domain.Tag{domain.TagMandatory}, DistributionCount: intPtr(300), Publishers: []domain.Publisher{"B"}},
	}
	records := []domain.HistoricalRecord{
		{PlanID: "P1", Date: day(1), Revenue: 700, DistributionCount: 1000, Clicks: 50},
		{PlanID: "P2", Date: day(2), Revenue: 210, DistributionCount: 900, Clicks: 30},
		{PlanID: "P3", Date: day(3), Revenue: 140, DistributionCount: 800, Clicks: 20},
	}

	first, _ := Run(plans, records, domain.DefaultWeights())
	second, _ := Run(plans, records, domain.DefaultWeights())
	assert.True(t, reflect.DeepEqual(first, second))
}

func TestRun_ReportsIncompleteFields(t *testing.T) {
	plans := []domain.Plan{
		{PlanID: "P1", Tags: []domain.Tag{domain.TagPaid}, Publishers: []domain.Publisher{"X"}}, // budget unset
	}
	records := []domain.HistoricalRecord{
		{PlanID: "P1", Date: day(1), Revenue: 700, DistributionCount: 1000, Clicks: 50},
	}

	result, incomplete := Run(plans, records, domain.DefaultWeights())
	require.Len(t, incomplete, 1)
	assert.Equal(t, "budget_cap", incomplete[0].Field)
	// Classification does not drop the plan from the output.
	assert.Len(t, result.AllPublishers, 1)
}
