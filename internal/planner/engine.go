package planner

import (
	"strings"

	"github.com/ignite/planner-ranker/internal/domain"
	"github.com/ignite/planner-ranker/internal/pkg/logger"
)

// Run executes one ranking run over a complete snapshot of plans and
// historical records: aggregate, project, score, rank.
//
// An empty plan set or an empty record set yields an empty RankingResult,
// not an error, so callers can present a "no data" state. Incomplete-field
// classifications come back alongside the result; blocking on them is the
// caller's policy.
func Run(plans []domain.Plan, records []domain.HistoricalRecord, weights domain.WeightConfig) (domain.RankingResult, []domain.IncompleteField) {
	empty := domain.RankingResult{ByPublisher: map[string][]domain.RankedEntry{}}
	if len(plans) == 0 || len(records) == 0 {
		logger.Info("ranking run skipped: empty input set",
			"plans", len(plans), "records", len(records))
		return empty, nil
	}

	metrics := Aggregate(plans, records)

	var incomplete []domain.IncompleteField
	global := make([]domain.RankedEntry, 0, len(plans))
	perPublisher := make(map[string][]domain.RankedEntry)

	for _, plan := range plans {
		incomplete = append(incomplete, Validate(plan)...)

		m := metrics[plan.PlanID]
		proj := Project(plan, m)
		score := Score(m, weights)
		adjusted := AdjustScore(plan.ActiveTag(), proj.BudgetCap, score)

		entry := domain.RankedEntry{
			PlanID:               plan.PlanID,
			CTR:                  m.CTR,
			EPC:                  m.EPC,
			AvgRevenue:           m.AvgRevenue,
			ExpectedDistribution: proj.ExpectedDistribution,
			Tag:                  plan.ActiveTag(),
			Subcategory:          plan.Subcategory,
			ExpectedClicks:       proj.ExpectedClicks,
			BudgetCap:            proj.BudgetCap,
			Score:                score,
			AdjustedScore:        adjusted,
		}

		globalEntry := entry
		globalEntry.Publisher = joinPublishers(plan.Publishers)
		global = append(global, globalEntry)

		for _, pub := range plan.Publishers {
			pubEntry := entry
			pubEntry.Publisher = string(pub)
			perPublisher[string(pub)] = append(perPublisher[string(pub)], pubEntry)
		}
	}

	result := buildResult(global, perPublisher)
	logger.Info("ranking run complete",
		"plans", len(plans),
		"records", len(records),
		"publishers", len(result.ByPublisher),
		"incomplete_fields", len(incomplete))
	return result, incomplete
}

// joinPublishers renders a plan's publisher list for the all-plans scope,
// where the entry is not tied to a single publisher.
func joinPublishers(pubs []domain.Publisher) string {
	parts := make([]string, len(pubs))
	for i, p := range pubs {
		parts[i] = string(p)
	}
	return strings.Join(parts, ", ")
}
