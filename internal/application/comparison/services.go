package comparison

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/bryanwahyu/rfp-compare/internal/application"
	"github.com/bryanwahyu/rfp-compare/internal/domain/ai"
	"github.com/bryanwahyu/rfp-compare/internal/domain/analysis"
	domain "github.com/bryanwahyu/rfp-compare/internal/domain/comparison"
	"github.com/bryanwahyu/rfp-compare/internal/domain/criteria"
)

// DefaultProductLabel used in chart series when no run has named the product yet
const DefaultProductLabel = "Your Product"

// Service implements the competitive-analysis use-cases: roster management,
// the run loop, chart aggregation, and the stored-analysis lifecycle.
//
// All state behind mu: the store and the working set are a critical section,
// so an auto-save can never interleave with a manual save.
type Service struct {
	Repo      analysis.Repository
	Validator ai.Validator
	Artifacts analysis.ArtifactStore // optional; nil disables export upload
	Clock     application.Clock

	mu               sync.Mutex
	roster           domain.Roster
	results          []domain.Result
	productName      string
	usedDeepResearch bool
	// currentID points at the stored record matching the working set.
	// Transient, never persisted.
	currentID analysis.AnalysisID
	progress  Progress
}

// Progress reports run advancement. Done never decreases during a run.
type Progress struct {
	Status string `json:"status"` // idle | running | completed | failed
	Done   int    `json:"done"`
	Total  int    `json:"total"`
	Failed int    `json:"failed"`
}

// RunCommand starts one full analysis: every roster competitor against every
// validated criterion.
type RunCommand struct {
	ProductName     string
	UseDeepResearch bool
	Criteria        []criteria.Validated
}

// PairFailure records one skipped (criterion, competitor) pair.
type PairFailure struct {
	CompetitorName string               `json:"competitor_name"`
	CriterionID    criteria.CriterionID `json:"criterion_id"`
	Message        string               `json:"message"`
}

// RunReport is the final tally of a run, reported even when pairs failed.
type RunReport struct {
	AnalysisID  analysis.AnalysisID `json:"analysis_id,omitempty"`
	ProductName string              `json:"product_name"`
	Results     int                 `json:"results"`
	Tally       domain.Tally        `json:"tally"`
	Failures    []PairFailure       `json:"failures,omitempty"`
	Competitors []domain.Competitor `json:"competitors"`
}

//
// ==== COMPETITOR ROSTER ====
//

// AddCompetitor registers a competitor for the active run. Rejects a third
// competitor and case-insensitive name duplicates; names are not trimmed.
func (s *Service) AddCompetitor(name, description string) (domain.Competitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.roster.Add(name, description)
	if err != nil {
		return domain.Competitor{}, err
	}
	return *c, nil
}

// RemoveCompetitor deletes one roster entry. Confirmation is the caller's
// concern; the service just removes.
func (s *Service) RemoveCompetitor(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Remove(id)
}

// Competitors returns a snapshot of the roster.
func (s *Service) Competitors() []domain.Competitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.List()
}

// ClearCompetitors wipes the roster and the working result set.
func (s *Service) ClearCompetitors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster.Clear()
	s.results = nil
	s.currentID = ""
	s.progress = Progress{Status: "idle"}
}

//
// ==== RUN ====
//

// RunAnalysis validates every (criterion, competitor) pair sequentially.
// A single pair failure is logged, counted, and skipped; it never aborts the
// run. ctx is checked between calls so a long run can be cancelled. On
// completion the result set is auto-saved and the report carries the new id.
//
// One run at a time: a second call while progress reports "running" returns
// ErrAnalysisRunning instead of resetting the working set mid-run.
func (s *Service) RunAnalysis(ctx context.Context, cmd RunCommand) (RunReport, error) {
	s.mu.Lock()
	if s.progress.Status == "running" {
		s.mu.Unlock()
		return RunReport{}, domain.ErrAnalysisRunning
	}
	competitors := make([]domain.Competitor, 0, s.roster.Len())
	for _, c := range s.roster.List() {
		competitors = append(competitors, c)
	}
	if len(competitors) == 0 {
		s.mu.Unlock()
		return RunReport{}, fmt.Errorf("no competitors to analyze")
	}
	if len(cmd.Criteria) == 0 {
		s.mu.Unlock()
		return RunReport{}, fmt.Errorf("no validated criteria supplied")
	}
	s.results = nil
	s.currentID = ""
	s.productName = cmd.ProductName
	s.usedDeepResearch = cmd.UseDeepResearch
	s.progress = Progress{Status: "running", Total: len(competitors) * len(cmd.Criteria)}
	s.mu.Unlock()

	report := RunReport{ProductName: cmd.ProductName}

	for _, comp := range competitors {
		s.setCompetitorStatus(comp.ID, domain.StatusAnalyzing, 0)
		succeeded := 0

		for _, vc := range cmd.Criteria {
			if err := ctx.Err(); err != nil {
				s.setCompetitorStatus(comp.ID, domain.StatusFailed, 0)
				s.setProgressStatus("failed")
				return report, fmt.Errorf("analysis cancelled: %w", err)
			}

			judgment, err := s.Validator.ValidateCriterion(ctx, vc.Criterion, comp.Name, cmd.UseDeepResearch)
			if err != nil {
				log.Printf("validation failed: competitor=%s criterion=%s err=%v", comp.Name, vc.Criterion.ID, err)
				report.Failures = append(report.Failures, PairFailure{
					CompetitorName: comp.Name,
					CriterionID:    vc.Criterion.ID,
					Message:        err.Error(),
				})
				s.advanceProgress(true)
				continue
			}

			result := domain.NewResult(vc.Criterion, vc.Judgment, judgment, comp.Name)
			s.mu.Lock()
			s.results = append(s.results, result)
			s.mu.Unlock()
			s.advanceProgress(false)
			succeeded++
		}

		if succeeded == 0 {
			s.setCompetitorStatus(comp.ID, domain.StatusFailed, 0)
			continue
		}
		s.mu.Lock()
		score := domain.CompetitorOverallScore(s.results, comp.Name)
		s.mu.Unlock()
		s.setCompetitorStatus(comp.ID, domain.StatusCompleted, score)
	}

	s.mu.Lock()
	report.Results = len(s.results)
	report.Tally = domain.CountAdvantages(s.results)
	report.Competitors = s.roster.List()
	saved, err := s.saveLocked(ctx, "", false)
	if err != nil {
		s.progress.Status = "completed"
		s.mu.Unlock()
		return report, fmt.Errorf("auto-save failed: %w", err)
	}
	report.AnalysisID = saved.ID
	s.progress.Status = "completed"
	s.mu.Unlock()

	return report, nil
}

// RunAnalysisUntilDone runs with context.Background() so a detached run
// started from a request handler is not cancelled with the request.
func (s *Service) RunAnalysisUntilDone(cmd RunCommand) (RunReport, error) {
	return s.RunAnalysis(context.Background(), cmd)
}

// Progress returns a snapshot of run advancement.
func (s *Service) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

func (s *Service) advanceProgress(failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.Done++
	if failed {
		s.progress.Failed++
	}
}

func (s *Service) setProgressStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.Status = status
}

func (s *Service) setCompetitorStatus(id string, status domain.Status, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.roster.Get(id)
	if err != nil {
		return
	}
	c.Status = status
	if status == domain.StatusCompleted {
		c.Score = score
	}
}

//
// ==== RESULTS & CHARTS ====
//

// ComparisonResults returns a copy of the working result set.
func (s *Service) ComparisonResults() []domain.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Result, len(s.results))
	copy(out, s.results)
	return out
}

// ChartData aggregates the working set for the rendering layer. selection is
// a competitor name or domain.SelectionAverage.
func (s *Service) ChartData(selection string) domain.ChartData {
	s.mu.Lock()
	defer s.mu.Unlock()
	label := s.productName
	if label == "" {
		label = DefaultProductLabel
	}
	return domain.BuildChartData(s.results, label, selection)
}

//
// ==== STORED ANALYSES ====
//

// SaveCurrent persists the working set as a manual save, optionally under a
// user-supplied custom name.
func (s *Service) SaveCurrent(ctx context.Context, customName string) (*analysis.StoredAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) == 0 {
		return nil, fmt.Errorf("nothing to save: no comparison results")
	}
	return s.saveLocked(ctx, customName, true)
}

// saveLocked builds and persists a snapshot of the working set. Caller holds mu.
func (s *Service) saveLocked(ctx context.Context, customName string, manual bool) (*analysis.StoredAnalysis, error) {
	now := s.Clock.Now()
	tally := domain.CountAdvantages(s.results)

	roster := make([]analysis.CompetitorInfo, 0, s.roster.Len())
	for _, c := range s.roster.List() {
		roster = append(roster, analysis.CompetitorInfo{Name: c.Name, Description: c.Description})
	}

	data := make([]domain.Result, len(s.results))
	copy(data, s.results)

	record := &analysis.StoredAnalysis{
		ID:           analysis.NewID(now),
		CreatedAt:    now,
		ProductName:  s.productName,
		AnalysisData: data,
		Metadata: analysis.Metadata{
			Competitors:      roster,
			Advantages:       tally.Advantages,
			Competitive:      tally.Competitive,
			Improvements:     tally.Improvements,
			UsedDeepResearch: s.usedDeepResearch,
			CustomName:       customName,
			ManualSave:       manual,
			SchemaVersion:    analysis.SchemaVersion,
		},
	}
	if err := s.Repo.Save(ctx, record); err != nil {
		return nil, err
	}
	s.currentID = record.ID
	return record, nil
}

// Analyses lists summaries of every stored record, newest first as returned
// by the repository.
func (s *Service) Analyses(ctx context.Context) ([]analysis.Summary, error) {
	list, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]analysis.Summary, 0, len(list))
	for _, a := range list {
		out = append(out, analysis.Summarize(a))
	}
	return out, nil
}

// GetAnalysis loads one stored record without touching the working set.
func (s *Service) GetAnalysis(ctx context.Context, id analysis.AnalysisID) (*analysis.StoredAnalysis, error) {
	return s.Repo.Get(ctx, id)
}

// LoadAnalysis restores a stored record into the working set: results,
// product name, and a roster rebuilt from metadata with recomputed scores.
func (s *Service) LoadAnalysis(ctx context.Context, id analysis.AnalysisID) (*analysis.StoredAnalysis, error) {
	record, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = make([]domain.Result, len(record.AnalysisData))
	copy(s.results, record.AnalysisData)
	s.productName = record.ProductName
	s.usedDeepResearch = record.Metadata.UsedDeepResearch
	s.currentID = record.ID
	s.progress = Progress{Status: "completed", Done: len(s.results), Total: len(s.results)}

	s.roster.Clear()
	for _, info := range record.Metadata.Competitors {
		c, err := s.roster.Add(info.Name, info.Description)
		if err != nil {
			// metadata from an older or hand-edited file may not satisfy
			// roster rules; skip the entry rather than failing the load
			log.Printf("skipping roster entry %q on load: %v", info.Name, err)
			continue
		}
		c.Status = domain.StatusCompleted
		c.Score = domain.CompetitorOverallScore(s.results, c.Name)
	}
	return record, nil
}

// DeleteAnalysis removes one record. Unknown ids are a no-op.
func (s *Service) DeleteAnalysis(ctx context.Context, id analysis.AnalysisID) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	if s.currentID == id {
		s.currentID = ""
	}
	s.mu.Unlock()
	return nil
}

// ClearAnalyses empties the persisted collection.
func (s *Service) ClearAnalyses(ctx context.Context) error {
	if err := s.Repo.DeleteAll(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.currentID = ""
	s.mu.Unlock()
	return nil
}

// CurrentAnalysisID reports which stored record matches the working set,
// empty when none does.
func (s *Service) CurrentAnalysisID() analysis.AnalysisID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

//
// ==== IMPORT / EXPORT ====
//

// Export serializes one stored record for download. Returns the suggested
// filename alongside the document bytes; ErrNotFound for unknown ids.
func (s *Service) Export(ctx context.Context, id analysis.AnalysisID) (string, []byte, error) {
	record, err := s.Repo.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	data, err := analysis.Encode(record, s.Clock.Now())
	if err != nil {
		return "", nil, err
	}
	return analysis.ExportFilename(record), data, nil
}

// ExportAndUpload exports a record and publishes the document to the
// artifact store, returning the shareable URL.
func (s *Service) ExportAndUpload(ctx context.Context, id analysis.AnalysisID) (string, error) {
	if s.Artifacts == nil {
		return "", fmt.Errorf("artifact store not configured")
	}
	filename, data, err := s.Export(ctx, id)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("exports/%s", filename)
	return s.Artifacts.UploadBytes(ctx, key, data, "application/json")
}

// Import validates an uploaded document and appends it to the store under a
// brand-new id tagged imported=true. Nothing is stored on validation failure.
func (s *Service) Import(ctx context.Context, data []byte) (*analysis.StoredAnalysis, error) {
	record, err := analysis.ParseImport(data, analysis.NewID(s.Clock.Now()))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Repo.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}
