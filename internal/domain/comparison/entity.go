package comparison

import (
	"github.com/bryanwahyu/rfp-compare/internal/domain/criteria"
)

// Result is the atomic comparison record: one criterion against one named
// competitor. Created exactly once per (criterion, competitor) pair during a
// run and immutable afterwards.
type Result struct {
	CriterionID       criteria.CriterionID `json:"criterion_id"`
	CriterionText     string               `json:"criterion_text"`
	CriterionCategory criteria.Category    `json:"criterion_category,omitempty"`
	CompetitorName    string               `json:"competitor_name"`
	Yours             criteria.Judgment    `json:"your_judgment"`
	Theirs            criteria.Judgment    `json:"competitor_judgment"`
	Advantage         Advantage            `json:"advantage"`
	Recommendation    string               `json:"recommendation"`
}

// NewResult builds a Result with its derived advantage label and
// recommendation text. Pure function of its inputs.
func NewResult(c criteria.Criterion, yours, theirs criteria.Judgment, competitorName string) Result {
	return Result{
		CriterionID:       c.ID,
		CriterionText:     c.Text,
		CriterionCategory: c.Category,
		CompetitorName:    competitorName,
		Yours:             yours,
		Theirs:            theirs,
		Advantage:         Classify(yours, theirs),
		Recommendation:    Recommendation(yours, theirs, competitorName),
	}
}

// DisplayCategory resolves the roll-up category for this result's criterion.
func (r Result) DisplayCategory() criteria.DisplayCategory {
	return criteria.ClassifyCategory(criteria.Criterion{
		ID:       r.CriterionID,
		Text:     r.CriterionText,
		Category: r.CriterionCategory,
	})
}

// Tally counts advantage labels across a result list.
type Tally struct {
	Advantages   int `json:"advantages"`
	Competitive  int `json:"competitive"`
	Improvements int `json:"improvements"`
}

// CountAdvantages tallies the three labels over results.
func CountAdvantages(results []Result) Tally {
	var t Tally
	for _, r := range results {
		switch r.Advantage {
		case AdvantageLead:
			t.Advantages++
		case AdvantageCompetitive:
			t.Competitive++
		case AdvantageImprovement:
			t.Improvements++
		}
	}
	return t
}
