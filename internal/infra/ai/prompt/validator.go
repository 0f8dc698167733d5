package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/rfp-compare/internal/domain/criteria"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are an expert RFP analyst. Your task is to validate if a given criterion is met by a specified product or service, based on your knowledge and research. You must produce one valid JSON object only (no markdown, no commentary). Do not include code fences.

Requirements:
- Output must be a single JSON object.
- "is_met" is true when the criterion is met, false when it is not, and null when you cannot decide.
- "summary" is a concise justification of the verdict.
- "references" lists the sources used; YOU MUST ALWAYS PROVIDE FULL URLs TO YOUR SOURCES.

Schema (example with empty values):
{
  "is_met": null,
  "summary": "<string>",
  "references": [
    {"title": "<string>", "url": "<string>"}
  ]
}`
}

// GetUserPrompt builds a compact user message around one criterion/entity pair.
func GetUserPrompt(entityName, criterionText string) string {
	return fmt.Sprintf("Does %q meet the following RFP criterion? Respond with the JSON per schema.\nCriterion: %s", entityName, criterionText)
}

// ValidationResult matches the schema used by the system prompt.
type ValidationResult struct {
	IsMet      *bool  `json:"is_met"`
	Summary    string `json:"summary"`
	References []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"references"`
}

// ParseValidation decodes a model response into a judgment. Tolerates
// accidental code fences around the JSON body.
func ParseValidation(raw string) (criteria.Judgment, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	var res ValidationResult
	if err := json.Unmarshal([]byte(cleaned), &res); err != nil {
		return criteria.Judgment{}, fmt.Errorf("failed to parse validation response: %w", err)
	}
	j := criteria.Judgment{IsMet: res.IsMet, Summary: res.Summary}
	for _, r := range res.References {
		j.References = append(j.References, criteria.Reference{Title: r.Title, URL: r.URL})
	}
	return j, nil
}
