package datanorm

import (
	"context"
	"time"

	"github.com/ignite/planner-ranker/internal/domain"
)

// Kind is the record kind enum for a raw tabular row.
type Kind string

const (
	KindPlan    Kind = "plan"
	KindHistory Kind = "history"
)

// RawRow is one tabular row as it arrives from a spreadsheet export or a
// JSON upload: arbitrary-cased column names mapped to loosely typed values
// (string, float64, json.Number, bool, nil, or a slice for list-shaped
// cells).
type RawRow map[string]interface{}

// PlanLookup resolves a previously saved plan so a re-uploaded row can be
// completed from the operator's last edits. It is injected by the caller;
// the normalizer never talks to a concrete store.
type PlanLookup func(ctx context.Context, planID string) (*domain.Plan, bool)

// ImportResult tracks the outcome of one normalization batch.
type ImportResult struct {
	FileKey   string
	Kind      Kind
	TotalRows int
	GoodRows  int
	ErrorRows int
	Duration  time.Duration
}
