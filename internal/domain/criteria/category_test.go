package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCategoryByCode(t *testing.T) {
	cases := []struct {
		code Category
		want DisplayCategory
	}{
		{CategoryTechnical, DisplayTechnical},
		{CategorySecurity, DisplaySecurity},
		{CategoryCompliance, DisplaySecurity},
		{CategoryPerformance, DisplayPerformance},
		{CategorySupport, DisplaySupport},
		{CategoryIntegration, DisplayIntegration},
		{CategoryFinancial, DisplayFinancial},
		{CategoryOther, DisplayGeneral},
	}
	for _, tc := range cases {
		got := ClassifyCategory(Criterion{Category: tc.code, Text: "irrelevant"})
		assert.Equal(t, tc.want, got, "code %q", tc.code)
	}
}

func TestClassifyCategoryUnknownCodeIsTitleCased(t *testing.T) {
	got := ClassifyCategory(Criterion{Category: "data residency"})
	assert.Equal(t, DisplayCategory("Data Residency"), got)

	// codes starting with a multibyte rune keep that rune intact
	got = ClassifyCategory(Criterion{Category: "évaluation économique"})
	assert.Equal(t, DisplayCategory("Évaluation Économique"), got)
}

func TestClassifyCategoryKeywordFallback(t *testing.T) {
	cases := []struct {
		text string
		want DisplayCategory
	}{
		{"Data must be encrypted at rest (encryption)", DisplaySecurity},
		{"99.9% availability guarantee", DisplayPerformance},
		{"System must run on commodity hardware", DisplayTechnical},
		{"24/7 support with 4h response", DisplaySupport},
		{"Must expose a REST API", DisplayIntegration},
		{"Total cost of ownership under budget", DisplayFinancial},
		{"Vendor must be ISO certified", DisplayGeneral},
	}
	for _, tc := range cases {
		got := ClassifyCategory(Criterion{Text: tc.text})
		assert.Equal(t, tc.want, got, "text %q", tc.text)
	}
}

func TestClassifyCategoryKeywordPriority(t *testing.T) {
	// security keywords outrank every later group when a text matches several
	got := ClassifyCategory(Criterion{Text: "security of the support API"})
	assert.Equal(t, DisplaySecurity, got)
}

func TestDisplayCategoriesOrder(t *testing.T) {
	cats := DisplayCategories()
	assert.Len(t, cats, 7)
	assert.Equal(t, DisplayTechnical, cats[0])
	assert.Equal(t, DisplayGeneral, cats[6])
}
