package planner

import (
	"github.com/ignite/planner-ranker/internal/domain"
)

// revenueScale divides avgRevenue in the weighted sum so its magnitude does
// not dominate CTR and EPC. Fixed by contract: changing it breaks score
// reproducibility across runs.
const revenueScale = 1000.0

// budgetDampingPivot is the budget cap at which the damping factor
// saturates at 1.0.
const budgetDampingPivot = 1000.0

// Score combines CTR, EPC and scaled average revenue into the raw weighted
// score. Total over all well-formed inputs: missing metrics contribute 0.
func Score(m domain.AggregatedMetrics, w domain.WeightConfig) float64 {
	return m.CTR*w.CTR + m.EPC*w.EPC + (m.AvgRevenue/revenueScale)*w.Revenue
}

// AdjustScore applies budget damping to the raw score. Only Paid plans are
// damped: a cap below the pivot penalizes the score proportionally, a cap
// at or above it leaves the score untouched. Mandatory and FOC plans carry
// no budget, so damping them would zero their scores incorrectly.
func AdjustScore(tag domain.Tag, budgetCap, score float64) float64 {
	if tag != domain.TagPaid {
		return score
	}
	factor := budgetCap / budgetDampingPivot
	if factor > 1 {
		factor = 1
	}
	if factor < 0 {
		factor = 0
	}
	return score * factor
}
