package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/rfp-compare/internal/domain/criteria"
)

func secResult(id string, competitor string, yours, theirs *bool) Result {
	c := criteria.Criterion{ID: criteria.CriterionID(id), Text: "requirement " + id, Category: criteria.CategorySecurity}
	return NewResult(c, judgment(yours), judgment(theirs), competitor)
}

func TestYourOverallScoreBounds(t *testing.T) {
	assert.Equal(t, 0, YourOverallScore(nil))
	assert.Equal(t, 0, YourOverallScore([]Result{}))

	results := []Result{
		secResult("1", "Acme", ptr(true), ptr(false)),
		secResult("2", "Acme", ptr(false), ptr(false)),
		secResult("3", "Acme", nil, ptr(false)),
	}
	got := YourOverallScore(results)
	assert.Equal(t, 50, got) // (100 + 0 + 50) / 3
	assert.GreaterOrEqual(t, got, 0)
	assert.LessOrEqual(t, got, 100)
}

func TestScoreRoundsHalfUp(t *testing.T) {
	// 100 + 50 -> 75, 100 + 0 + 50 + 0 -> 37.5 rounds to 38
	results := []Result{
		secResult("1", "Acme", ptr(true), nil),
		secResult("2", "Acme", ptr(false), nil),
		secResult("3", "Acme", nil, nil),
		secResult("4", "Acme", ptr(false), nil),
	}
	assert.Equal(t, 38, YourOverallScore(results))
}

func TestCompetitorOverallScoreFiltersByName(t *testing.T) {
	results := []Result{
		secResult("1", "Acme", ptr(true), ptr(true)),
		secResult("2", "Acme", ptr(true), ptr(false)),
		secResult("1", "Globex", ptr(true), ptr(true)),
	}
	assert.Equal(t, 50, CompetitorOverallScore(results, "Acme"))
	assert.Equal(t, 100, CompetitorOverallScore(results, "Globex"))
	assert.Equal(t, 0, CompetitorOverallScore(results, "Initech"))
}

func TestComplianceSeriesOrderIsDeterministic(t *testing.T) {
	// insertion order Globex before Acme; series must sort competitors by name
	results := []Result{
		secResult("1", "Globex", ptr(true), ptr(true)),
		secResult("1", "Acme", ptr(true), ptr(false)),
	}
	series := ComplianceSeries(results, "MyProduct")
	require.Len(t, series, 3)
	assert.Equal(t, "MyProduct", series[0].Label)
	assert.Equal(t, "Acme", series[1].Label)
	assert.Equal(t, "Globex", series[2].Label)
}

func TestCategorySeriesAverageSelection(t *testing.T) {
	// two security rows: compA compliant (1/1), compB not (0/1)
	// average = round(((1/1 + 0/1) / 2) * 2) = 1
	results := []Result{
		secResult("1", "compA", ptr(true), ptr(true)),
		secResult("2", "compB", ptr(true), ptr(false)),
	}
	series := CategorySeries(results, SelectionAverage)
	require.Len(t, series, 1)
	assert.Equal(t, criteria.DisplaySecurity, series[0].Category)
	assert.Equal(t, 2, series[0].Yours)
	assert.Equal(t, 1, series[0].Competitor)
	assert.Equal(t, 2, series[0].Total)
}

func TestCategorySeriesSingleCompetitorSelection(t *testing.T) {
	results := []Result{
		secResult("1", "Acme", ptr(true), ptr(true)),
		secResult("2", "Acme", ptr(false), ptr(true)),
		secResult("1", "Globex", ptr(true), ptr(false)),
	}
	series := CategorySeries(results, "Acme")
	require.Len(t, series, 1)
	assert.Equal(t, 2, series[0].Yours)      // your compliant rows in category
	assert.Equal(t, 2, series[0].Competitor) // only Acme's compliant rows
	assert.Equal(t, 3, series[0].Total)      // totals are per comparison pair
}

func TestCategorySeriesSortedAndIdempotent(t *testing.T) {
	perf := criteria.Criterion{ID: "p1", Text: "fast response", Category: criteria.CategoryPerformance}
	fin := criteria.Criterion{ID: "f1", Text: "total cost", Category: criteria.CategoryFinancial}
	results := []Result{
		NewResult(perf, judgment(ptr(true)), judgment(ptr(false)), "Acme"),
		NewResult(fin, judgment(ptr(false)), judgment(ptr(true)), "Acme"),
		secResult("s1", "Acme", ptr(true), ptr(true)),
	}
	snapshot := make([]Result, len(results))
	copy(snapshot, results)

	first := CategorySeries(results, "Acme")
	second := CategorySeries(results, "Acme")

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, results, "input list must not be mutated")

	require.Len(t, first, 3)
	assert.Equal(t, criteria.DisplayFinancial, first[0].Category)
	assert.Equal(t, criteria.DisplayPerformance, first[1].Category)
	assert.Equal(t, criteria.DisplaySecurity, first[2].Category)
}

func TestBuildChartDataEmptyInput(t *testing.T) {
	data := BuildChartData(nil, "MyProduct", SelectionAverage)
	require.Len(t, data.ComplianceSeries, 1)
	assert.Equal(t, 0, data.ComplianceSeries[0].Score)
	assert.Empty(t, data.CategorySeries)
}
