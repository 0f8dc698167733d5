package comparison

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/rfp-compare/internal/domain/criteria"
)

func ptr(b bool) *bool { return &b }

func judgment(v *bool) criteria.Judgment { return criteria.Judgment{IsMet: v} }

func TestClassifyAllPairs(t *testing.T) {
	states := map[string]*bool{"true": ptr(true), "false": ptr(false), "null": nil}

	for yourName, yours := range states {
		for theirName, theirs := range states {
			got := Classify(judgment(yours), judgment(theirs))

			// exactly one of the three labels
			assert.Contains(t, []Advantage{AdvantageLead, AdvantageCompetitive, AdvantageImprovement}, got,
				"pair (%s, %s)", yourName, theirName)

			// advantage iff yours is strictly true and theirs is not
			wantLead := yours != nil && *yours && (theirs == nil || !*theirs)
			assert.Equal(t, wantLead, got == AdvantageLead, "pair (%s, %s)", yourName, theirName)
		}
	}
}

func TestClassifyTiesAreParity(t *testing.T) {
	// ties count as parity even when both sides are non-compliant
	assert.Equal(t, AdvantageCompetitive, Classify(judgment(ptr(false)), judgment(ptr(false))))
	assert.Equal(t, AdvantageCompetitive, Classify(judgment(nil), judgment(nil)))
	assert.Equal(t, AdvantageCompetitive, Classify(judgment(ptr(true)), judgment(ptr(true))))
}

func TestClassifyNeedsImprovement(t *testing.T) {
	assert.Equal(t, AdvantageImprovement, Classify(judgment(ptr(false)), judgment(ptr(true))))
	assert.Equal(t, AdvantageImprovement, Classify(judgment(nil), judgment(ptr(true))))
	assert.Equal(t, AdvantageImprovement, Classify(judgment(nil), judgment(ptr(false))))
	assert.Equal(t, AdvantageImprovement, Classify(judgment(ptr(false)), judgment(nil)))
}

func TestRecommendationTemplates(t *testing.T) {
	tests := []struct {
		name    string
		yours   *bool
		theirs  *bool
		contain []string
	}{
		{"strong advantage", ptr(true), ptr(false), []string{"Acme", "advantage"}},
		{"advantage over indeterminate", ptr(true), nil, []string{"Strong advantage over Acme"}},
		{"gap", ptr(false), ptr(true), []string{"Acme has an advantage here", "gap"}},
		{"parity both unknown", nil, nil, []string{"parity", "Acme"}},
		{"parity both failed", ptr(false), ptr(false), []string{"Competitive parity with Acme"}},
		{"fallback", nil, ptr(false), []string{"differentiate from Acme"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recommendation(judgment(tt.yours), judgment(tt.theirs), "Acme")
			for _, want := range tt.contain {
				assert.True(t, strings.Contains(got, want), "want %q in %q", want, got)
			}
		})
	}
}

func TestNewResultDerivesFields(t *testing.T) {
	c := criteria.Criterion{ID: "c-1", Text: "Supports SSO", Category: criteria.CategorySecurity}
	res := NewResult(c, judgment(ptr(true)), judgment(ptr(false)), "Acme")

	assert.Equal(t, criteria.CriterionID("c-1"), res.CriterionID)
	assert.Equal(t, "Supports SSO", res.CriterionText)
	assert.Equal(t, "Acme", res.CompetitorName)
	assert.Equal(t, AdvantageLead, res.Advantage)
	assert.Contains(t, res.Recommendation, "Acme")
	assert.Equal(t, criteria.DisplaySecurity, res.DisplayCategory())
}

func TestCountAdvantages(t *testing.T) {
	results := []Result{
		{Advantage: AdvantageLead},
		{Advantage: AdvantageLead},
		{Advantage: AdvantageCompetitive},
		{Advantage: AdvantageImprovement},
	}
	tally := CountAdvantages(results)
	assert.Equal(t, 2, tally.Advantages)
	assert.Equal(t, 1, tally.Competitive)
	assert.Equal(t, 1, tally.Improvements)
}
