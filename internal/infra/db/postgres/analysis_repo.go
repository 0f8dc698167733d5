package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/bryanwahyu/rfp-compare/internal/domain/analysis"
	"github.com/bryanwahyu/rfp-compare/internal/domain/comparison"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Connect opens a pooled Postgres handle and verifies it with a short ping.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Save inserts or updates a stored analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *analysis.StoredAnalysis) error {
	const q = `
INSERT INTO competitive_analyses
  (id, product_name, custom_name, created_at, analysis_json, competitors_json,
   advantages, competitive, improvements, used_deep_research, imported, manual_save,
   original_id, schema_version)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (id) DO UPDATE SET
  product_name=EXCLUDED.product_name, custom_name=EXCLUDED.custom_name,
  analysis_json=EXCLUDED.analysis_json, competitors_json=EXCLUDED.competitors_json,
  advantages=EXCLUDED.advantages, competitive=EXCLUDED.competitive,
  improvements=EXCLUDED.improvements;
`
	resultsJSON, err := json.Marshal(a.AnalysisData)
	if err != nil {
		return fmt.Errorf("encoding analysis data: %w", err)
	}
	rosterJSON, err := json.Marshal(a.Metadata.Competitors)
	if err != nil {
		return fmt.Errorf("encoding competitor roster: %w", err)
	}
	product := a.ProductName
	if strings.TrimSpace(product) == "" {
		product = "-"
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx, q,
		a.ID, product, a.Metadata.CustomName, createdAt,
		resultsJSON, rosterJSON,
		a.Metadata.Advantages, a.Metadata.Competitive, a.Metadata.Improvements,
		a.Metadata.UsedDeepResearch, a.Metadata.Imported, a.Metadata.ManualSave,
		a.Metadata.OriginalID, a.Metadata.SchemaVersion,
	)
	return err
}

// Get returns the record or analysis.ErrNotFound
func (r *AnalysisRepository) Get(ctx context.Context, id analysis.AnalysisID) (*analysis.StoredAnalysis, error) {
	const q = selectColumns + ` WHERE id=$1 LIMIT 1;`
	a, err := scanAnalysis(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, analysis.ErrNotFound
	}
	return a, err
}

// List returns every record ordered by created_at desc
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

// Delete removes the record; an unknown id is a no-op
func (r *AnalysisRepository) Delete(ctx context.Context, id analysis.AnalysisID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM competitive_analyses WHERE id=$1;`, id)
	return err
}

// DeleteAll empties the collection
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
