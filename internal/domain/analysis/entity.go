package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/rfp-compare/internal/domain/comparison"
)

// SchemaVersion tags every persisted record so future readers can migrate.
const SchemaVersion = 1

// AnalysisID identifier type
type AnalysisID string

// CompetitorInfo is the roster entry captured in analysis metadata.
type CompetitorInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Metadata carried alongside a stored result list.
type Metadata struct {
	Competitors      []CompetitorInfo `json:"competitors"`
	Advantages       int              `json:"advantages"`
	Competitive      int              `json:"competitive"`
	Improvements     int              `json:"improvements"`
	UsedDeepResearch bool             `json:"usedDeepResearch"`
	CustomName       string           `json:"customName,omitempty"`
	Imported         bool             `json:"imported,omitempty"`
	ManualSave       bool             `json:"manualSave,omitempty"`
	OriginalID       string           `json:"originalId,omitempty"`
	SchemaVersion    int              `json:"schemaVersion"`
}

// StoredAnalysis is one persisted competitive-analysis run. AnalysisData is
// immutable once written; only deletion removes it.
type StoredAnalysis struct {
	ID           AnalysisID          `json:"id"`
	CreatedAt    time.Time           `json:"timestamp"`
	ProductName  string              `json:"productName"`
	AnalysisData []comparison.Result `json:"analysisData"`
	Metadata     Metadata            `json:"metadata"`
}

// NewID generates a time-based identifier with a random suffix. Collisions
// are negligible but not formally impossible; a known limitation.
func NewID(now time.Time) AnalysisID {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return AnalysisID(fmt.Sprintf("%d-%s", now.UnixMilli(), suffix))
}

// Summary is the list-UI projection of a stored analysis.
type Summary struct {
	ID               AnalysisID `json:"id"`
	Title            string     `json:"title"`
	Date             time.Time  `json:"date"`
	CriteriaCount    int        `json:"criteriaCount"`
	Advantages       int        `json:"advantages"`
	Competitive      int        `json:"competitive"`
	Improvements     int        `json:"improvements"`
	CompetitorNames  []string   `json:"competitorNames"`
	UsedDeepResearch bool       `json:"usedDeepResearch"`
	Imported         bool       `json:"imported,omitempty"`
}

// Summarize projects a record for display. Never mutates the record.
func Summarize(a *StoredAnalysis) Summary {
	title := a.Metadata.CustomName
	if title == "" {
		title = a.ProductName
	}
	names := make([]string, 0, len(a.Metadata.Competitors))
	for _, c := range a.Metadata.Competitors {
		names = append(names, c.Name)
	}
	return Summary{
		ID:               a.ID,
		Title:            title,
		Date:             a.CreatedAt,
		CriteriaCount:    len(a.AnalysisData),
		Advantages:       a.Metadata.Advantages,
		Competitive:      a.Metadata.Competitive,
		Improvements:     a.Metadata.Improvements,
		CompetitorNames:  names,
		UsedDeepResearch: a.Metadata.UsedDeepResearch,
		Imported:         a.Metadata.Imported,
	}
}
