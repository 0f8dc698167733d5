package criteria

// CriterionID identifier type
type CriterionID string

// Category enum as supplied by the extraction backend
type Category string

const (
	CategoryTechnical   Category = "technical"
	CategorySecurity    Category = "security"
	CategoryPerformance Category = "performance"
	CategorySupport     Category = "support"
	CategoryCompliance  Category = "compliance"
	CategoryIntegration Category = "integration"
	CategoryFinancial   Category = "financial"
	CategoryOther       Category = "other"
)

// Priority enum
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Criterion is one extracted RFP requirement. Owned by the extraction
// backend; this service treats it as read-only input.
type Criterion struct {
	ID              CriterionID `json:"id"`
	Text            string      `json:"text"`
	Category        Category    `json:"category,omitempty"`
	Priority        Priority    `json:"priority,omitempty"`
	SourceReference string      `json:"source_reference,omitempty"`
}

// Reference is one source citation attached to a judgment.
type Reference struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Judgment is the tri-state evaluation of one entity against one criterion.
// IsMet == nil means the backend could not decide. Immutable once received.
type Judgment struct {
	IsMet      *bool       `json:"is_met"`
	Summary    string      `json:"summary,omitempty"`
	References []Reference `json:"references,omitempty"`
}

// Compliant reports whether the judgment is strictly "met".
func (j Judgment) Compliant() bool {
	return j.IsMet != nil && *j.IsMet
}

// Equal compares two tri-state judgments by value (both true, both false,
// or both indeterminate).
func (j Judgment) Equal(other Judgment) bool {
	if j.IsMet == nil || other.IsMet == nil {
		return j.IsMet == nil && other.IsMet == nil
	}
	return *j.IsMet == *other.IsMet
}

// Validated pairs a criterion with the your-product judgment computed
// upstream by the validation backend.
type Validated struct {
	Criterion Criterion `json:"criterion"`
	Judgment  Judgment  `json:"judgment"`
}
