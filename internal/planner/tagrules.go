package planner

import (
	"github.com/ignite/planner-ranker/internal/domain"
)

// Projection holds the tag-rule-derived fields attached to a plan before
// scoring: projected clicks and distribution, plus the budget cap after the
// tag rules have zeroed it where it does not apply.
type Projection struct {
	ExpectedClicks       float64
	ExpectedDistribution float64
	BudgetCap            float64
}

// Project applies the per-tag business rules to a plan and its aggregated
// metrics.
//
//   - Paid: the budget implies a click volume (budget / EPC), which in turn
//     implies a distribution volume through the historical CTR. Distribution
//     and click obligations from other tags are ignored.
//   - Mandatory: the committed distribution count drives expected clicks
//     through CTR; budget is forced to 0.
//   - FOC: the click obligation passes through as expected clicks and
//     implies distribution through CTR; budget is forced to 0.
//
// Divisions guard zero denominators: no historical EPC or CTR means no
// projection, not an error.
func Project(plan domain.Plan, m domain.AggregatedMetrics) Projection {
	var p Projection
	switch plan.ActiveTag() {
	case domain.TagPaid:
		p.BudgetCap = plan.BudgetCapValue()
		if m.EPC > 0 {
			p.ExpectedClicks = p.BudgetCap / m.EPC
		}
		if m.CTR > 0 {
			p.ExpectedDistribution = p.ExpectedClicks / (m.CTR / 100)
		}
	case domain.TagMandatory:
		p.ExpectedDistribution = float64(plan.DistributionCountValue())
		p.ExpectedClicks = p.ExpectedDistribution * m.CTR / 100
	case domain.TagFOC:
		p.ExpectedClicks = float64(plan.ClicksToBeDeliveredValue())
		if m.CTR > 0 {
			p.ExpectedDistribution = p.ExpectedClicks / (m.CTR / 100)
		}
	}
	return p
}

// Validate classifies a plan's field completeness for submission. It never
// blocks anything itself — the review step decides what to do with the
// classifications. The required numeric field per tag may legitimately be
// 0, but it must be explicitly set.
func Validate(plan domain.Plan) []domain.IncompleteField {
	var incomplete []domain.IncompleteField

	tag := plan.ActiveTag()
	if tag == "" {
		return append(incomplete, domain.IncompleteField{
			PlanID: plan.PlanID,
			Field:  "tags",
			Reason: "plan has no active tag",
		})
	}

	switch tag {
	case domain.TagPaid:
		if plan.BudgetCap == nil {
			incomplete = append(incomplete, domain.IncompleteField{
				PlanID: plan.PlanID,
				Tag:    tag,
				Field:  "budget_cap",
				Reason: "budget cap is required for Paid plans",
			})
		}
	case domain.TagMandatory:
		if plan.DistributionCount == nil {
			incomplete = append(incomplete, domain.IncompleteField{
				PlanID: plan.PlanID,
				Tag:    tag,
				Field:  "distribution_count",
				Reason: "distribution count is required for Mandatory plans",
			})
		}
	case domain.TagFOC:
		if plan.ClicksToBeDelivered == nil {
			incomplete = append(incomplete, domain.IncompleteField{
				PlanID: plan.PlanID,
				Tag:    tag,
				Field:  "clicks_to_be_delivered",
				Reason: "clicks to be delivered is required for FOC plans",
			})
		}
	}
	return incomplete
}

// ApplyTagTransition returns a copy of plan with newTag as its single
// active tag. Fields that no longer apply are cleared; the newly relevant
// numeric field is initialized to 0 if previously unset. A no-op when the
// tag is unchanged. Pure: the input plan is never mutated, so the function
// is callable identically from a UI layer or a batch importer.
func ApplyTagTransition(plan domain.Plan, newTag domain.Tag) domain.Plan {
	out := plan
	out.Publishers = append([]domain.Publisher(nil), plan.Publishers...)
	out.Tags = []domain.Tag{newTag}
	out.BudgetCap = copyFloat(plan.BudgetCap)
	out.DistributionCount = copyInt(plan.DistributionCount)
	out.ClicksToBeDelivered = copyInt(plan.ClicksToBeDelivered)

	if plan.ActiveTag() == newTag {
		return out
	}

	if newTag != domain.TagPaid {
		out.BudgetCap = nil
	}
	switch newTag {
	case domain.TagPaid:
		if out.BudgetCap == nil {
			zero := 0.0
			out.BudgetCap = &zero
		}
	case domain.TagMandatory:
		if out.DistributionCount == nil {
			zero := 0
			out.DistributionCount = &zero
		}
	case domain.TagFOC:
		if out.ClicksToBeDelivered == nil {
			zero := 0
			out.ClicksToBeDelivered = &zero
		}
	}
	return out
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func copyInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
