package comparison

import (
	"fmt"

	"github.com/bryanwahyu/rfp-compare/internal/domain/criteria"
)

// Advantage enum
type Advantage string

const (
	AdvantageLead        Advantage = "advantage"
	AdvantageCompetitive Advantage = "competitive"
	AdvantageImprovement Advantage = "needs_improvement"
)

// Classify derives the advantage label from the two tri-state judgments.
// First match wins:
//  1. yours met, theirs anything else       -> advantage
//  2. identical values (incl. both unknown) -> competitive
//  3. everything else                       -> needs_improvement
//
// Deliberately asymmetric: only a strict lead counts as an advantage, and a
// tie is parity even when both sides are non-compliant.
func Classify(yours, theirs criteria.Judgment) Advantage {
	if yours.Compliant() && !theirs.Compliant() {
		return AdvantageLead
	}
	if yours.Equal(theirs) {
		return AdvantageCompetitive
	}
	return AdvantageImprovement
}

// Recommendation picks the proposal-facing advice line for a judgment pair.
func Recommendation(yours, theirs criteria.Judgment, competitorName string) string {
	switch {
	case yours.Compliant() && !theirs.Compliant():
		return fmt.Sprintf("Strong advantage over %s. Highlight this capability in your proposal.", competitorName)
	case yours.IsMet != nil && !*yours.IsMet && theirs.Compliant():
		return fmt.Sprintf("%s has an advantage here. Consider addressing this gap or finding alternative approaches.", competitorName)
	case yours.Equal(theirs):
		return fmt.Sprintf("Competitive parity with %s. Focus on implementation quality and support.", competitorName)
	default:
		return fmt.Sprintf("Review implementation details to differentiate from %s.", competitorName)
	}
}
