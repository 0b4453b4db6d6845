package domain

// WeightConfig weighs CTR, EPC and average revenue in the composite score.
// Weights are free-form: they need not sum to 1.
type WeightConfig struct {
	CTR     float64 `json:"CTR" yaml:"ctr"`
	EPC     float64 `json:"EPC" yaml:"epc"`
	Revenue float64 `json:"Revenue" yaml:"revenue"`
}

// DefaultWeight is the weight applied to each metric when none is supplied.
const DefaultWeight = 0.33

// DefaultWeights returns the stock equal weighting.
func DefaultWeights() WeightConfig {
	return WeightConfig{CTR: DefaultWeight, EPC: DefaultWeight, Revenue: DefaultWeight}
}

// WithDefaults fills any zero weight with the default. In the request shape
// an omitted key decodes to 0, so 0 means "unspecified" rather than
// "ignore this metric".
func (w WeightConfig) WithDefaults() WeightConfig {
	if w.CTR == 0 {
		w.CTR = DefaultWeight
	}
	if w.EPC == 0 {
		w.EPC = DefaultWeight
	}
	if w.Revenue == 0 {
		w.Revenue = DefaultWeight
	}
	return w
}

// RankedEntry is one plan joined with its metrics, score and rank within a
// ranking scope. In the per-publisher scope Publisher is that scope's
// publisher; in the all-plans scope it is the plan's comma-joined publisher
// list.
type RankedEntry struct {
	PlanID               string  `json:"plan_id"`
	Publisher            string  `json:"publisher"`
	FinalRank            int     `json:"final_rank"`
	CTR                  float64 `json:"CTR"`
	EPC                  float64 `json:"EPC"`
	AvgRevenue           float64 `json:"avg_revenue"`
	ExpectedDistribution float64 `json:"distribution"`
	Tag                  Tag     `json:"tags"`
	Subcategory          string  `json:"subcategory"`
	ExpectedClicks       float64 `json:"expected_clicks"`
	BudgetCap            float64 `json:"budget_cap"`

	// Score and AdjustedScore are exposed for auditability. AdjustedScore
	// (score after budget damping) is the sort key.
	Score         float64 `json:"score"`
	AdjustedScore float64 `json:"adjusted_score"`
}

// RankingResult is the output of one ranking run: a global ordering plus an
// independent ordering per publisher.
type RankingResult struct {
	AllPublishers []RankedEntry            `json:"all_publishers"`
	ByPublisher   map[string][]RankedEntry `json:"by_publisher"`
}

// Empty reports whether the run produced no entries in any scope.
func (r *RankingResult) Empty() bool {
	return len(r.AllPublishers) == 0 && len(r.ByPublisher) == 0
}
