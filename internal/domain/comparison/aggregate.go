package comparison

import (
	"math"
	"sort"

	"github.com/bryanwahyu/rfp-compare/internal/domain/criteria"
)

// SelectionAverage is the sentinel selecting the average of all competitors
// instead of a single named one.
const SelectionAverage = "average"

// ScorePoint is one bar of the compliance chart.
type ScorePoint struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

// CategoryStat is one row of the per-category roll-up.
type CategoryStat struct {
	Category   criteria.DisplayCategory `json:"category"`
	Yours      int                      `json:"your_compliant"`
	Competitor int                      `json:"competitor_compliant"`
	Total      int                      `json:"total"`
}

// ChartData bundles the chart-ready series for the rendering layer.
type ChartData struct {
	ComplianceSeries []ScorePoint   `json:"compliance_series"`
	CategorySeries   []CategoryStat `json:"category_series"`
}

// judgmentScore: met=100, not met=0, indeterminate=50
func judgmentScore(j criteria.Judgment) int {
	if j.IsMet == nil {
		return 50
	}
	if *j.IsMet {
		return 100
	}
	return 0
}

// roundedMean rounds half up; zero values yield 0, never NaN.
func roundedMean(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// YourOverallScore averages the your-product judgment scores over all
// results. Under multi-competitor input the same criterion is counted once
// per comparison pair.
func YourOverallScore(results []Result) int {
	sum := 0
	for _, r := range results {
		sum += judgmentScore(r.Yours)
	}
	return roundedMean(sum, len(results))
}

// CompetitorOverallScore averages one competitor's judgment scores over its
// own results. Zero applicable results yield 0.
func CompetitorOverallScore(results []Result, name string) int {
	sum, n := 0, 0
	for _, r := range results {
		if r.CompetitorName != name {
			continue
		}
		sum += judgmentScore(r.Theirs)
		n++
	}
	return roundedMean(sum, n)
}

// CompetitorNames returns the unique competitor names in sorted order so
// derived series are deterministic regardless of insertion order.
func CompetitorNames(results []Result) []string {
	seen := map[string]bool{}
	var names []string
	for _, r := range results {
		if !seen[r.CompetitorName] {
			seen[r.CompetitorName] = true
			names = append(names, r.CompetitorName)
		}
	}
	sort.Strings(names)
	return names
}

// ComplianceSeries builds the ordered score pairs: the product first, then
// each unique competitor in sorted name order.
func ComplianceSeries(results []Result, productLabel string) []ScorePoint {
	series := []ScorePoint{{Label: productLabel, Score: YourOverallScore(results)}}
	for _, name := range CompetitorNames(results) {
		series = append(series, ScorePoint{Label: name, Score: CompetitorOverallScore(results, name)})
	}
	return series
}

// CategorySeries computes the per-category roll-up for the given selection:
// a competitor name, or SelectionAverage.
//
// The average is rate-based: each competitor's compliant/total rate within
// the category is averaged across competitors, then rescaled by the
// category's total row count and rounded. The rescale uses the category
// total rather than a per-competitor row count, so the result is not always
// the literal sum of compliant rows; that formula is kept as-is because the
// chart layer depends on it.
func CategorySeries(results []Result, selection string) []CategoryStat {
	byCategory := map[criteria.DisplayCategory][]Result{}
	for _, r := range results {
		cat := r.DisplayCategory()
		byCategory[cat] = append(byCategory[cat], r)
	}

	cats := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		cats = append(cats, string(cat))
	}
	sort.Strings(cats)

	out := make([]CategoryStat, 0, len(cats))
	for _, name := range cats {
		cat := criteria.DisplayCategory(name)
		rows := byCategory[cat]
		stat := CategoryStat{Category: cat, Total: len(rows)}
		for _, r := range rows {
			if r.Yours.Compliant() {
				stat.Yours++
			}
		}
		if selection == SelectionAverage {
			stat.Competitor = averageCompliantCount(rows)
		} else {
			for _, r := range rows {
				if r.CompetitorName == selection && r.Theirs.Compliant() {
					stat.Competitor++
				}
			}
		}
		out = append(out, stat)
	}
	return out
}

// averageCompliantCount averages per-competitor compliance rates within one
// category's rows, then rescales back to a count for charting consistency.
func averageCompliantCount(rows []Result) int {
	compliant := map[string]int{}
	total := map[string]int{}
	for _, r := range rows {
		total[r.CompetitorName]++
		if r.Theirs.Compliant() {
			compliant[r.CompetitorName]++
		}
	}
	if len(total) == 0 {
		return 0
	}
	rateSum := 0.0
	for name, n := range total {
		rateSum += float64(compliant[name]) / float64(n)
	}
	avgRate := rateSum / float64(len(total))
	return int(math.Round(avgRate * float64(len(rows))))
}

// BuildChartData derives both series for the rendering layer. Stateless and
// safe to re-invoke; the input list is never mutated.
func BuildChartData(results []Result, productLabel, selection string) ChartData {
	return ChartData{
		ComplianceSeries: ComplianceSeries(results, productLabel),
		CategorySeries:   CategorySeries(results, selection),
	}
}
