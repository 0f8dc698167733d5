package criteria

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DisplayCategory is the fixed grouping used for roll-up charts and tables.
type DisplayCategory string

const (
	DisplayTechnical   DisplayCategory = "Technical Requirements"
	DisplaySecurity    DisplayCategory = "Security & Compliance"
	DisplayPerformance DisplayCategory = "Performance & Scalability"
	DisplaySupport     DisplayCategory = "Support & Maintenance"
	DisplayIntegration DisplayCategory = "Integration & Compatibility"
	DisplayFinancial   DisplayCategory = "Financial"
	DisplayGeneral     DisplayCategory = "General Requirements"
)

// DisplayCategories returns the fixed set in display order.
func DisplayCategories() []DisplayCategory {
	return []DisplayCategory{
		DisplayTechnical,
		DisplaySecurity,
		DisplayPerformance,
		DisplaySupport,
		DisplayIntegration,
		DisplayFinancial,
		DisplayGeneral,
	}
}

// ClassifyCategory maps a criterion to its display category. The explicit
// category code from the extraction backend wins; keyword matching on the
// criterion text is the fallback for historical or imported data that
// arrived without a code.
func ClassifyCategory(c Criterion) DisplayCategory {
	if c.Category != "" {
		return displayForCode(c.Category)
	}
	return keywordCategory(c.Text)
}

func displayForCode(code Category) DisplayCategory {
	switch code {
	case CategoryTechnical:
		return DisplayTechnical
	case CategorySecurity, CategoryCompliance:
		return DisplaySecurity
	case CategoryPerformance:
		return DisplayPerformance
	case CategorySupport:
		return DisplaySupport
	case CategoryIntegration:
		return DisplayIntegration
	case CategoryFinancial:
		return DisplayFinancial
	case CategoryOther:
		return DisplayGeneral
	}
	// Unrecognized codes are shown verbatim, title-cased.
	return DisplayCategory(titleCase(string(code)))
}

// keyword groups checked in priority order; first hit wins
var keywordGroups = []struct {
	words    []string
	category DisplayCategory
}{
	{[]string{"security", "encryption", "compliance"}, DisplaySecurity},
	{[]string{"performance", "speed", "availability"}, DisplayPerformance},
	{[]string{"technical", "system", "technology"}, DisplayTechnical},
	{[]string{"support", "maintenance", "service"}, DisplaySupport},
	{[]string{"integration", "api", "compatibility"}, DisplayIntegration},
	{[]string{"cost", "price", "financial"}, DisplayFinancial},
}

func keywordCategory(text string) DisplayCategory {
	lower := strings.ToLower(text)
	for _, g := range keywordGroups {
		for _, w := range g.words {
			if strings.Contains(lower, w) {
				return g.category
			}
		}
	}
	return DisplayGeneral
}

func titleCase(s string) string {
	parts := strings.Fields(strings.ToLower(s))
	for i, p := range parts {
		r, size := utf8.DecodeRuneInString(p)
		parts[i] = string(unicode.ToUpper(r)) + p[size:]
	}
	return strings.Join(parts, " ")
}
