package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ExportDocument is the self-describing file shape: the stored record plus
// an export timestamp and format version tag.
type ExportDocument struct {
	StoredAnalysis
	ExportedAt time.Time `json:"exportedAt"`
	Version    int       `json:"version"`
}

// Encode serializes one record for download.
func Encode(a *StoredAnalysis, now time.Time) ([]byte, error) {
	doc := ExportDocument{
		StoredAnalysis: *a,
		ExportedAt:     now,
		Version:        SchemaVersion,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding analysis export: %w", err)
	}
	return data, nil
}

// ExportFilename builds competitive-analysis-{productName}-{last8ofId}.json.
func ExportFilename(a *StoredAnalysis) string {
	id := string(a.ID)
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return fmt.Sprintf("competitive-analysis-%s-%s.json", slug(a.ProductName), id)
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// ParseImport validates an uploaded document and rebuilds it as a fresh
// record: a brand-new id (never the file's own, which may already exist in
// the store), imported=true, and the original id retained for traceability.
func ParseImport(data []byte, newID AnalysisID) (*StoredAnalysis, error) {
	var doc ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if len(doc.AnalysisData) == 0 {
		return nil, fmt.Errorf("%w: analysisData is empty", ErrInvalidImport)
	}
	if doc.ProductName == "" {
		return nil, fmt.Errorf("%w: productName is missing", ErrInvalidImport)
	}
	if doc.CreatedAt.IsZero() {
		return nil, fmt.Errorf("%w: timestamp is missing", ErrInvalidImport)
	}

	imported := doc.StoredAnalysis
	imported.Metadata.OriginalID = string(doc.ID)
	imported.Metadata.Imported = true
	imported.Metadata.SchemaVersion = SchemaVersion
	imported.ID = newID
	return &imported, nil
}
