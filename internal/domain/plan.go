package domain

// Tag classifies how a distribution plan is paid for. A plan carries exactly
// one active tag at a time; tag selection is single-select.
type Tag string

const (
	TagPaid      Tag = "Paid"
	TagMandatory Tag = "Mandatory"
	TagFOC       Tag = "FOC"
)

// KnownTags is the closed set of valid plan tags.
var KnownTags = []Tag{TagPaid, TagMandatory, TagFOC}

// IsValidTag reports whether t is one of the predefined plan tags.
func IsValidTag(t Tag) bool {
	for _, k := range KnownTags {
		if t == k {
			return true
		}
	}
	return false
}

// Publisher identifies a distribution channel a plan can be assigned to.
type Publisher string

// KnownPublishers is the predefined publisher list offered in the review UI.
// Historical records may carry free-text publisher names outside this set;
// plan assignment is constrained to it.
var KnownPublishers = []Publisher{
	"Publisher_1",
	"Publisher_2",
	"Publisher_3",
	"Publisher_4",
	"Publisher_5",
}

// IsKnownPublisher reports whether p is in the predefined publisher list.
func IsKnownPublisher(p Publisher) bool {
	for _, k := range KnownPublishers {
		if p == k {
			return true
		}
	}
	return false
}

// Plan is one distribution opportunity to be ranked. The pointer fields are
// tri-state: nil means the reviewer has not supplied the value, which is
// distinct from an explicit 0.
type Plan struct {
	PlanID              string      `json:"plan_id"`
	Publishers          []Publisher `json:"publisher"`
	Tags                []Tag       `json:"tags"`
	BudgetCap           *float64    `json:"budget_cap,omitempty"`
	DistributionCount   *int        `json:"distribution_count,omitempty"`
	ClicksToBeDelivered *int        `json:"clicks_to_be_delivered,omitempty"`
	Subcategory         string      `json:"subcategory"`
	BrandName           string      `json:"brand_name"`
}

// ActiveTag returns the plan's single active tag, or "" when untagged.
func (p *Plan) ActiveTag() Tag {
	if len(p.Tags) == 0 {
		return ""
	}
	return p.Tags[0]
}

// HasPublisher reports whether the plan is assigned to pub.
func (p *Plan) HasPublisher(pub Publisher) bool {
	for _, pp := range p.Publishers {
		if pp == pub {
			return true
		}
	}
	return false
}

// BudgetCapValue returns the budget cap, treating unset as 0.
func (p *Plan) BudgetCapValue() float64 {
	if p.BudgetCap == nil {
		return 0
	}
	return *p.BudgetCap
}

// DistributionCountValue returns the committed distribution count, treating
// unset as 0.
func (p *Plan) DistributionCountValue() int {
	if p.DistributionCount == nil {
		return 0
	}
	return *p.DistributionCount
}

// ClicksToBeDeliveredValue returns the FOC click obligation, treating unset
// as 0.
func (p *Plan) ClicksToBeDeliveredValue() int {
	if p.ClicksToBeDelivered == nil {
		return 0
	}
	return *p.ClicksToBeDelivered
}

// IncompleteField reports one plan field that must be supplied before the
// plan can be submitted for ranking. It is a classification, not an error:
// the review step decides whether to block on it.
type IncompleteField struct {
	PlanID string `json:"plan_id"`
	Tag    Tag    `json:"tag"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
