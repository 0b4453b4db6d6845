package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/planner-ranker/internal/domain"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestProject_Paid(t *testing.T) {
	plan := domain.Plan{
		PlanID:    "P1",
		Tags:      []domain.Tag{domain.TagPaid},
		BudgetCap: floatPtr(1400),
		// Obligations from other tags are present but must be ignored.
		DistributionCount:   intPtr(999),
		ClicksToBeDelivered: intPtr(999),
	}
	m := domain.AggregatedMetrics{CTR: 5.00, EPC: 14}

	p := Project(plan, m)
	assert.InDelta(t, 100.0, p.ExpectedClicks, 1e-9)        // 1400/14
	assert.InDelta(t, 2000.0, p.ExpectedDistribution, 1e-9) // 100 / 0.05
	assert.InDelta(t, 1400.0, p.BudgetCap, 1e-9)
}

func TestProject_PaidZeroEPC(t *testing.T) {
	plan := domain.Plan{PlanID: "P1", Tags: []domain.Tag{domain.TagPaid}, BudgetCap: floatPtr(1000)}
	p := Project(plan, domain.AggregatedMetrics{})
	assert.Zero(t, p.ExpectedClicks)
	assert.Zero(t, p.ExpectedDistribution)
}

func TestProject_Mandatory(t *testing.T) {
	plan := domain.Plan{
		PlanID:            "P1",
		Tags:              []domain.Tag{domain.TagMandatory},
		DistributionCount: intPtr(200),
		BudgetCap:         floatPtr(5000), // must be forced to 0
	}
	m := domain.AggregatedMetrics{CTR: 5.00}

	p := Project(plan, m)
	assert.InDelta(t, 10.0, p.ExpectedClicks, 1e-9) // 200 * 5 / 100
	assert.InDelta(t, 200.0, p.ExpectedDistribution, 1e-9)
	assert.Zero(t, p.BudgetCap)
}

func TestProject_FOC(t *testing.T) {
	plan := domain.Plan{
		PlanID:              "P1",
		Tags:                []domain.Tag{domain.TagFOC},
		ClicksToBeDelivered: intPtr(50),
		BudgetCap:           floatPtr(5000),
	}
	m := domain.AggregatedMetrics{CTR: 2.00}

	p := Project(plan, m)
	assert.InDelta(t, 50.0, p.ExpectedClicks, 1e-9)         // passthrough
	assert.InDelta(t, 2500.0, p.ExpectedDistribution, 1e-9) // 50 / 0.02
	assert.Zero(t, p.BudgetCap)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		plan      domain.Plan
		wantField string
	}{
		{"untagged", domain.Plan{PlanID: "P1"}, "tags"},
		{"paid without budget", domain.Plan{PlanID: "P1", Tags: []domain.Tag{domain.TagPaid}}, "budget_cap"},
		{"mandatory without distribution", domain.Plan{PlanID: "P1", Tags: []domain.Tag{domain.TagMandatory}}, "distribution_count"},
		{"foc without clicks", domain.Plan{PlanID: "P1", Tags: []domain.Tag{domain.TagFOC}}, "clicks_to_be_delivered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			incomplete := Validate(tt.plan)
			require.Len(t, incomplete, 1)
			assert.Equal(t, tt.wantField, incomplete[0].Field)
			assert.Equal(t, "P1", incomplete[0].PlanID)
		})
	}
}

func TestValidate_ZeroValuesAreComplete(t *testing.T) {
	// Required fields may be 0; they just must be explicitly set.
	plans := []domain.Plan{
		{PlanID: "P1", Tags: []domain.Tag{domain.TagPaid}, BudgetCap: floatPtr(0)},
		{PlanID: "P2", Tags: []domain.Tag{domain.TagMandatory}, DistributionCount: intPtr(0)},
		{PlanID: "P3", Tags: []domain.Tag{domain.TagFOC}, ClicksToBeDelivered: intPtr(0)},
	}
	for _, p := range plans {
		assert.Empty(t, Validate(p), "plan %s", p.PlanID)
	}
}

func TestApplyTagTransition_AwayFromPaidClearsBudget(t *testing.T) {
	plan := domain.Plan{
		PlanID:    "P1",
		Tags:      []domain.Tag{domain.TagPaid},
		BudgetCap: floatPtr(2500),
	}

	out := ApplyTagTransition(plan, domain.TagMandatory)
	assert.Nil(t, out.BudgetCap)
	assert.Equal(t, []domain.Tag{domain.TagMandatory}, out.Tags)
	require.NotNil(t, out.DistributionCount)
	assert.Zero(t, *out.DistributionCount)

	// Input is untouched.
	require.NotNil(t, plan.BudgetCap)
	assert.InDelta(t, 2500.0, *plan.BudgetCap, 1e-9)
	assert.Equal(t, []domain.Tag{domain.TagPaid}, plan.Tags)
}

func TestApplyTagTransition_IntoFOCInitializesClicks(t *testing.T) {
	plan := domain.Plan{PlanID: "P1", Tags: []domain.Tag{domain.TagMandatory}, DistributionCount: intPtr(100)}

	out := ApplyTagTransition(plan, domain.TagFOC)
	require.NotNil(t, out.ClicksToBeDelivered)
	assert.Zero(t, *out.ClicksToBeDelivered)
	// The now-irrelevant distribution count is retained, not validated.
	require.NotNil(t, out.DistributionCount)
	assert.Equal(t, 100, *out.DistributionCount)
}

func TestApplyTagTransition_SameTagNoOp(t *testing.T) {
	plan := domain.Plan{PlanID: "P1", Tags: []domain.Tag{domain.TagPaid}, BudgetCap: floatPtr(750)}

	out := ApplyTagTransition(plan, domain.TagPaid)
	require.NotNil(t, out.BudgetCap)
	assert.InDelta(t, 750.0, *out.BudgetCap, 1e-9)
}
