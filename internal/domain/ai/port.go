package ai

import (
	"context"

	"github.com/bryanwahyu/rfp-compare/internal/domain/criteria"
)

// Validator is the external validation backend contract: one network call
// per (criterion, entity) pair. Each call fails independently; callers skip
// the pair and continue on error.
type Validator interface {
	ValidateCriterion(ctx context.Context, c criteria.Criterion, entityName string, useDeepResearch bool) (criteria.Judgment, error)
}
