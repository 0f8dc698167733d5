package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bryanwahyu/rfp-compare/internal/domain/analysis"
	"github.com/bryanwahyu/rfp-compare/internal/domain/comparison"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts or updates a stored analysis. Result list and roster are
// carried as JSON columns; the tally columns are denormalized for listing.
func (r *AnalysisRepository) Save(ctx context.Context, a *analysis.StoredAnalysis) error {
	const q = `
INSERT INTO competitive_analyses
  (id, product_name, custom_name, created_at, analysis_json, competitors_json,
   advantages, competitive, improvements, used_deep_research, imported, manual_save,
   original_id, schema_version)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  product_name=VALUES(product_name), custom_name=VALUES(custom_name),
  analysis_json=VALUES(analysis_json), competitors_json=VALUES(competitors_json),
  advantages=VALUES(advantages), competitive=VALUES(competitive),
  improvements=VALUES(improvements);
`
	resultsJSON, err := json.Marshal(a.AnalysisData)
	if err != nil {
		return fmt.Errorf("encoding analysis data: %w", err)
	}
	rosterJSON, err := json.Marshal(a.Metadata.Competitors)
	if err != nil {
		return fmt.Errorf("encoding competitor roster: %w", err)
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx, q,
		a.ID, stringOrDash(a.ProductName), a.Metadata.CustomName, createdAt,
		resultsJSON, rosterJSON,
		a.Metadata.Advantages, a.Metadata.Competitive, a.Metadata.Improvements,
		a.Metadata.UsedDeepResearch, a.Metadata.Imported, a.Metadata.ManualSave,
		a.Metadata.OriginalID, a.Metadata.SchemaVersion,
	)
	return err
}

// Get returns the record or analysis.ErrNotFound.
func (r *AnalysisRepository) Get(ctx context.Context, id analysis.AnalysisID) (*analysis.StoredAnalysis, error) {
	const q = selectColumns + ` WHERE id=? LIMIT 1;`
	a, err := scanAnalysis(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, analysis.ErrNotFound
	}
	return a, err
}

// List returns every record, newest first. A row with a corrupt JSON column
// is skipped rather than failing the whole listing.
func (r *AnalysisRepository) List(ctx context.Context) ([]*analysis.StoredAnalysis, error) {
	const q = selectColumns + ` ORDER BY created_at DESC, id DESC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*analysis.StoredAnalysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			continue
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes the record; deleting an unknown id is a no-op.
func (r *AnalysisRepository) Delete(ctx context.Context, id analysis.AnalysisID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM competitive_analyses WHERE id=?;`, id)
	return err
}

// DeleteAll empties the collection.
func (r *AnalysisRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM competitive_analyses;`)
	return err
}

const selectColumns = `
SELECT id, product_name, custom_name, created_at, analysis_json, competitors_json,
       advantages, competitive, improvements, used_deep_research, imported, manual_save,
       original_id, schema_version
FROM competitive_analyses`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*analysis.StoredAnalysis, error) {
	var a analysis.StoredAnalysis
	var resultsJSON, rosterJSON []byte
	if err := row.Scan(
		&a.ID, &a.ProductName, &a.Metadata.CustomName, &a.CreatedAt,
		&resultsJSON, &rosterJSON,
		&a.Metadata.Advantages, &a.Metadata.Competitive, &a.Metadata.Improvements,
		&a.Metadata.UsedDeepResearch, &a.Metadata.Imported, &a.Metadata.ManualSave,
		&a.Metadata.OriginalID, &a.Metadata.SchemaVersion,
	); err != nil {
		return nil, err
	}
	var results []comparison.Result
	if err := json.Unmarshal(resultsJSON, &results); err != nil {
		return nil, fmt.Errorf("decoding analysis data: %w", err)
	}
	a.AnalysisData = results
	if len(rosterJSON) > 0 {
		if err := json.Unmarshal(rosterJSON, &a.Metadata.Competitors); err != nil {
			return nil, fmt.Errorf("decoding competitor roster: %w", err)
		}
	}
	return &a, nil
}
