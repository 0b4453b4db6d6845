package datanorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/planner-ranker/internal/domain"
	"github.com/ignite/planner-ranker/internal/pkg/logger"
)

// ErrMalformedRecord marks a row whose required identifier is absent after
// trying every known alias. The row is skipped; the batch continues.
var ErrMalformedRecord = errors.New("malformed record: missing plan identifier")

// NormalizeHistoryRow converts one raw historical row into a canonical
// HistoricalRecord. Individual malformed fields degrade to their defaults;
// only a missing plan identifier rejects the row.
func NormalizeHistoryRow(row RawRow, now time.Time) (domain.HistoricalRecord, error) {
	rec := domain.HistoricalRecord{}

	v, ok := row.Resolve(FieldPlanID)
	if !ok {
		return rec, ErrMalformedRecord
	}
	rec.PlanID = coerceString(v)
	if rec.PlanID == "" {
		return rec, ErrMalformedRecord
	}

	if v, ok := row.Resolve(FieldPublisher); ok {
		// Historical rows carry one free-text publisher; list-shaped cells
		// from sloppy exports collapse to their first element.
		if list := coerceList(v); len(list) > 0 {
			rec.Publisher = list[0]
		}
	}

	if v, ok := row.Resolve(FieldDate); ok {
		if d, parsed := coerceDate(v); parsed {
			rec.Date = d
		} else {
			logger.Warn("unparseable date, defaulting to processing date",
				"plan_id", rec.PlanID, "raw", coerceString(v))
			rec.Date = now
		}
	} else {
		rec.Date = now
	}

	if v, ok := row.Resolve(FieldRevenue); ok {
		rec.Revenue = coerceRevenue(v)
	}
	if v, ok := row.Resolve(FieldDistribution); ok {
		rec.DistributionCount = coerceCount(v)
	}
	if v, ok := row.Resolve(FieldClicks); ok {
		rec.Clicks = coerceCount(v)
	}
	if v, ok := row.Resolve(FieldSubcategory); ok {
		rec.Subcategory = coerceString(v)
	}

	return rec, nil
}

// NormalizePlanRow converts one raw plan/inventory row into a canonical
// Plan. When lookup is non-nil and resolves the plan ID, fields the row
// leaves unset are completed from the operator's last-saved edits.
func NormalizePlanRow(ctx context.Context, row RawRow, lookup PlanLookup) (domain.Plan, error) {
	plan := domain.Plan{}

	v, ok := row.Resolve(FieldPlanID)
	if !ok {
		return plan, ErrMalformedRecord
	}
	plan.PlanID = coerceString(v)
	if plan.PlanID == "" {
		return plan, ErrMalformedRecord
	}

	if v, ok := row.Resolve(FieldPublisher); ok {
		for _, p := range coerceList(v) {
			plan.Publishers = append(plan.Publishers, domain.Publisher(p))
		}
	}

	if v, ok := row.Resolve(FieldTags); ok {
		// Tag selection is single-select: only the first valid tag is kept.
		for _, t := range coerceList(v) {
			tag := domain.Tag(t)
			if domain.IsValidTag(tag) {
				plan.Tags = []domain.Tag{tag}
				break
			}
			logger.Warn("ignoring unknown plan tag", "plan_id", plan.PlanID, "tag", t)
		}
	}

	if v, ok := row.Resolve(FieldBudgetCap); ok {
		b := coerceFloat(v)
		if b < 0 {
			b = 0
		}
		plan.BudgetCap = &b
	}
	if v, ok := row.Resolve(FieldDistribution); ok {
		d := coerceCount(v)
		plan.DistributionCount = &d
	}
	if v, ok := row.Resolve(FieldClicksToBeDelivered); ok {
		c := coerceCount(v)
		plan.ClicksToBeDelivered = &c
	}
	if v, ok := row.Resolve(FieldSubcategory); ok {
		plan.Subcategory = coerceString(v)
	}
	if v, ok := row.Resolve(FieldBrandName); ok {
		plan.BrandName = coerceString(v)
	}

	if lookup != nil {
		if saved, found := lookup(ctx, plan.PlanID); found && saved != nil {
			mergeSavedPlan(&plan, saved)
		}
	}

	return plan, nil
}

// mergeSavedPlan fills fields the incoming row left unset from a previously
// saved plan. Row values always win over saved values.
func mergeSavedPlan(plan *domain.Plan, saved *domain.Plan) {
	if len(plan.Publishers) == 0 {
		plan.Publishers = append([]domain.Publisher(nil), saved.Publishers...)
	}
	if len(plan.Tags) == 0 {
		plan.Tags = append([]domain.Tag(nil), saved.Tags...)
	}
	if plan.BudgetCap == nil && saved.BudgetCap != nil {
		b := *saved.BudgetCap
		plan.BudgetCap = &b
	}
	if plan.DistributionCount == nil && saved.DistributionCount != nil {
		d := *saved.DistributionCount
		plan.DistributionCount = &d
	}
	if plan.ClicksToBeDelivered == nil && saved.ClicksToBeDelivered != nil {
		c := *saved.ClicksToBeDelivered
		plan.ClicksToBeDelivered = &c
	}
	if plan.Subcategory == "" {
		plan.Subcategory = saved.Subcategory
	}
	if plan.BrandName == "" {
		plan.BrandName = saved.BrandName
	}
}

// NormalizeHistory runs NormalizeHistoryRow over a batch, skipping
// malformed rows. The skip count comes back alongside the good records.
func NormalizeHistory(rows []RawRow, now time.Time) ([]domain.HistoricalRecord, int) {
	records := make([]domain.HistoricalRecord, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		rec, err := NormalizeHistoryRow(row, now)
		if err != nil {
			skipped++
			logger.Warn("skipping malformed history row", "row", fmt.Sprintf("%d", i), "err", err.Error())
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

// NormalizePlans runs NormalizePlanRow over a batch, skipping malformed
// rows.
func NormalizePlans(ctx context.Context, rows []RawRow, lookup PlanLookup) ([]domain.Plan, int) {
	plans := make([]domain.Plan, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		plan, err := NormalizePlanRow(ctx, row, lookup)
		if err != nil {
			skipped++
			logger.Warn("skipping malformed plan row", "row", fmt.Sprintf("%d", i), "err", err.Error())
			continue
		}
		plans = append(plans, plan)
	}
	return plans, skipped
}
