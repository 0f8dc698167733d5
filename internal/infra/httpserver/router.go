package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appcomparison "github.com/bryanwahyu/rfp-compare/internal/application/comparison"
	domai "github.com/bryanwahyu/rfp-compare/internal/domain/ai"
	"github.com/bryanwahyu/rfp-compare/internal/domain/analysis"
	domain "github.com/bryanwahyu/rfp-compare/internal/domain/comparison"
	"github.com/bryanwahyu/rfp-compare/internal/domain/criteria"
	"github.com/bryanwahyu/rfp-compare/internal/middleware"
)

// maxImportSize bounds uploaded analysis documents (10 MiB).
const maxImportSize = 10 << 20

type Router struct {
	svc *appcomparison.Service
}

func NewRouter(svc *appcomparison.Service, healthCheckers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	mux.Get("/health", middleware.HealthHandler(healthCheckers))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/competitors", r.wrap(r.handleAddCompetitor))
		rt.Get("/competitors", r.wrap(r.handleListCompetitors))
		rt.Delete("/competitors/{id}", r.wrap(r.handleRemoveCompetitor))

		rt.Post("/analysis/run", r.wrap(r.handleRunAnalysis))
		rt.Get("/analysis/progress", r.wrap(r.handleProgress))
		rt.Get("/analysis/results", r.wrap(r.handleResults))
		rt.Get("/analysis/chart", r.wrap(r.handleChartData))

		rt.Get("/analyses", r.wrap(r.handleListAnalyses))
		rt.Post("/analyses", r.wrap(r.handleSaveAnalysis))
		rt.Get("/analyses/{id}", r.wrap(r.handleGetAnalysis))
		rt.Post("/analyses/{id}/load", r.wrap(r.handleLoadAnalysis))
		rt.Delete("/analyses/{id}", r.wrap(r.handleDeleteAnalysis))
		rt.Delete("/analyses", r.wrap(r.handleClearAnalyses))
		rt.Get("/analyses/{id}/export", r.wrap(r.handleExportAnalysis))
		rt.Post("/analyses/import", r.wrap(r.handleImportAnalysis))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, analysis.ErrNotFound), errors.Is(err, sql.ErrNoRows),
				errors.Is(err, domain.ErrCompetitorNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, domain.ErrDuplicateCompetitor), errors.Is(err, domain.ErrAnalysisRunning):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, domain.ErrCompetitorLimit):
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			case errors.Is(err, domain.ErrInvalidCompetitorName), errors.Is(err, analysis.ErrInvalidImport),
				errors.Is(err, middleware.ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, domai.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// analysisID extracts and shape-checks the {id} route parameter.
func analysisID(req *http.Request) (analysis.AnalysisID, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return "", err
	}
	return analysis.AnalysisID(id), nil
}

// POST /v1/competitors
// Body: {"name": "...", "description": "..."}
func (r *Router) handleAddCompetitor(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCompetitorName, err)
	}
	c, err := r.svc.AddCompetitor(body.Name, body.Description)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, c)
}

// GET /v1/competitors
func (r *Router) handleListCompetitors(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, r.svc.Competitors())
}

// DELETE /v1/competitors/{id}
func (r *Router) handleRemoveCompetitor(w http.ResponseWriter, req *http.Request) error {
	if err := r.svc.RemoveCompetitor(chi.URLParam(req, "id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /v1/analysis/run
// Body: {"product_name": "...", "use_deep_research": false, "criteria": [...]}
// Runs in the background so dozens of validation round-trips do not hold the
// request open; progress is polled via /v1/analysis/progress.
func (r *Router) handleRunAnalysis(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ProductName     string               `json:"product_name"`
		UseDeepResearch bool                 `json:"use_deep_research"`
		Criteria        []criteria.Validated `json:"criteria"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if err := middleware.ValidateProductName(body.ProductName); err != nil {
		return err
	}
	if len(body.Criteria) == 0 {
		return fmt.Errorf("%w: criteria are required", middleware.ErrInvalidInput)
	}
	// reject the common overlap up front; RunAnalysis holds the
	// authoritative guard
	if r.svc.Progress().Status == "running" {
		return domain.ErrAnalysisRunning
	}

	cmd := appcomparison.RunCommand{
		ProductName:     body.ProductName,
		UseDeepResearch: body.UseDeepResearch,
		Criteria:        body.Criteria,
	}

	go func() {
		middleware.IncrementAnalyses()
		middleware.IncrementAnalysesRunning()
		defer middleware.DecrementAnalysesRunning()

		report, err := r.svc.RunAnalysisUntilDone(cmd)
		if err != nil {
			middleware.IncrementAnalysesFailed()
			log.Printf("background analysis error: product=%s err=%v", cmd.ProductName, err)
			return
		}
		log.Printf("analysis finished: product=%s results=%d failures=%d saved=%s",
			cmd.ProductName, report.Results, len(report.Failures), report.AnalysisID)
	}()

	resp := map[string]any{
		"status":   "queued",
		"product":  body.ProductName,
		"pairs":    len(body.Criteria) * len(r.svc.Competitors()),
		"message":  "analysis started in background",
		"queuedAt": time.Now(),
	}
	return writeJSON(w, http.StatusAccepted, resp)
}

// GET /v1/analysis/progress
func (r *Router) handleProgress(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, r.svc.Progress())
}

// GET /v1/analysis/results
func (r *Router) handleResults(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, r.svc.ComparisonResults())
}

// GET /v1/analysis/chart?selection=<competitor name|average>
func (r *Router) handleChartData(w http.ResponseWriter, req *http.Request) error {
	selection := req.URL.Query().Get("selection")
	if selection == "" {
		selection = domain.SelectionAverage
	}
	if err := middleware.ValidateSelection(selection); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, r.svc.ChartData(selection))
}

// GET /v1/analyses
func (r *Router) handleListAnalyses(w http.ResponseWriter, req *http.Request) error {
	list, err := r.svc.Analyses(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// POST /v1/analyses
// Body: {"custom_name": "..."} — manual save of the working result set.
func (r *Router) handleSaveAnalysis(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		CustomName string `json:"custom_name"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil && err != io.EOF {
		return err
	}
	record, err := r.svc.SaveCurrent(req.Context(), body.CustomName)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, analysis.Summarize(record))
}

// GET /v1/analyses/{id}
func (r *Router) handleGetAnalysis(w http.ResponseWriter, req *http.Request) error {
	id, err := analysisID(req)
	if err != nil {
		return err
	}
	record, err := r.svc.GetAnalysis(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, record)
}

// POST /v1/analyses/{id}/load — restore a stored analysis into the working set
func (r *Router) handleLoadAnalysis(w http.ResponseWriter, req *http.Request) error {
	id, err := analysisID(req)
	if err != nil {
		return err
	}
	record, err := r.svc.LoadAnalysis(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, record)
}

// DELETE /v1/analyses/{id}
func (r *Router) handleDeleteAnalysis(w http.ResponseWriter, req *http.Request) error {
	id, err := analysisID(req)
	if err != nil {
		return err
	}
	if err := r.svc.DeleteAnalysis(req.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// DELETE /v1/analyses
func (r *Router) handleClearAnalyses(w http.ResponseWriter, req *http.Request) error {
	if err := r.svc.ClearAnalyses(req.Context()); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GET /v1/analyses/{id}/export[?upload=true]
// Default: the document as a download. upload=true publishes it to the
// artifact store instead and returns the URL.
func (r *Router) handleExportAnalysis(w http.ResponseWriter, req *http.Request) error {
	id, err := analysisID(req)
	if err != nil {
		return err
	}

	if req.URL.Query().Get("upload") == "true" {
		url, err := r.svc.ExportAndUpload(req.Context(), id)
		if err != nil {
			return err
		}
		return writeJSON(w, http.StatusOK, map[string]string{"url": url})
	}

	filename, data, err := r.svc.Export(req.Context(), id)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, err = w.Write(data)
	return err
}

// POST /v1/analyses/import — body is the exported document
func (r *Router) handleImportAnalysis(w http.ResponseWriter, req *http.Request) error {
	data, err := io.ReadAll(io.LimitReader(req.Body, maxImportSize))
	if err != nil {
		return err
	}
	record, err := r.svc.Import(req.Context(), data)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, analysis.Summarize(record))
}
