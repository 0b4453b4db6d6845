package datanorm

import "strings"

// CanonicalField is a normalized field name used across all import sources.
type CanonicalField string

const (
	FieldPlanID              CanonicalField = "plan_id"
	FieldPublisher           CanonicalField = "publisher"
	FieldTags                CanonicalField = "tags"
	FieldBudgetCap           CanonicalField = "budget_cap"
	FieldDistribution        CanonicalField = "distribution"
	FieldClicksToBeDelivered CanonicalField = "clicks_to_be_delivered"
	FieldSubcategory         CanonicalField = "subcategory"
	FieldBrandName           CanonicalField = "brand_name"
	FieldDate                CanonicalField = "date"
	FieldRevenue             CanonicalField = "revenue"
	FieldClicks              CanonicalField = "clicks"
)

// fieldAliases is the ordered list of known header spellings per canonical
// field. Resolution tries the aliases in order and takes the first present,
// non-null value; the table is data so the alias set stays testable and
// easy to extend.
var fieldAliases = map[CanonicalField][]string{
	FieldPlanID: {
		"plan_id", "planid", "plan id", "plan-id", "plan",
	},
	FieldPublisher: {
		"publisher", "publishers", "publisher_name", "publisher name", "channel",
	},
	FieldTags: {
		"tags", "tag", "plan_tag", "plan tag",
	},
	FieldBudgetCap: {
		"budget_cap", "budgetcap", "budget cap", "budget", "cap",
	},
	FieldDistribution: {
		"distribution_count", "distribution", "distribution count",
		"dist_count", "impressions", "sends",
	},
	FieldClicksToBeDelivered: {
		"clicks_to_be_delivered", "clicks to be delivered",
		"clicks_to_deliver", "foc_clicks", "promised_clicks",
	},
	FieldSubcategory: {
		"subcategory", "sub_category", "sub category", "category",
	},
	FieldBrandName: {
		"brand_name", "brandname", "brand name", "brand",
	},
	FieldDate: {
		"date", "report_date", "day", "report date",
	},
	FieldRevenue: {
		"revenue", "rev", "earnings", "amount", "total_revenue",
	},
	FieldClicks: {
		"clicks", "click", "total_clicks", "clicks_delivered",
	},
}

// normalizeHeader lowercases a raw header and strips surrounding whitespace
// and quotes, so "Plan_ID", " plan_id " and `"PLAN_ID"` all resolve alike.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Trim(h, "\"'")
}

// Resolve returns the first present, non-null value for field among its
// known aliases. The second return is false when every alias is absent or
// null.
func (r RawRow) Resolve(field CanonicalField) (interface{}, bool) {
	lowered := make(map[string]interface{}, len(r))
	for k, v := range r {
		lowered[normalizeHeader(k)] = v
	}
	for _, alias := range fieldAliases[field] {
		if v, ok := lowered[alias]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

// ColumnMapping holds the resolved mapping from CSV column indices to
// canonical fields.
type ColumnMapping struct {
	PlanIDIdx int
	FieldMap  map[int]CanonicalField // column index -> canonical field
	RawNames  []string               // original header names
}

// MapColumns takes a raw CSV header row and returns a resolved mapping.
// Returns nil if no plan identifier column is found — a row set without its
// identifier cannot be normalized at all.
func MapColumns(header []string) *ColumnMapping {
	m := &ColumnMapping{
		PlanIDIdx: -1,
		FieldMap:  make(map[int]CanonicalField, len(header)),
		RawNames:  header,
	}

	// Reverse index: alias spelling -> canonical field. Earlier aliases win
	// over later ones when two fields claim the same spelling.
	for i, h := range header {
		normalized := normalizeHeader(h)
	aliasScan:
		for field, aliases := range fieldAliases {
			for _, alias := range aliases {
				if normalized == alias {
					if _, taken := m.FieldMap[i]; !taken {
						m.FieldMap[i] = field
					}
					if field == FieldPlanID {
						m.PlanIDIdx = i
					}
					break aliasScan
				}
			}
		}
	}

	// Fallback: any header containing "plan" and "id" in some spelling.
	if m.PlanIDIdx < 0 {
		for i, h := range header {
			lower := strings.ToLower(h)
			if strings.Contains(lower, "plan") && strings.Contains(lower, "id") {
				m.FieldMap[i] = FieldPlanID
				m.PlanIDIdx = i
				break
			}
		}
	}

	if m.PlanIDIdx < 0 {
		return nil
	}
	return m
}

// Row converts one CSV record into a RawRow using the resolved mapping.
// Unmapped columns keep their original header name so downstream alias
// resolution still sees them.
func (m *ColumnMapping) Row(record []string) RawRow {
	row := make(RawRow, len(record))
	for i, val := range record {
		if i < len(m.RawNames) {
			row[m.RawNames[i]] = val
		}
	}
	return row
}
