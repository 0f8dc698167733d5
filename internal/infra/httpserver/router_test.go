package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/rfp-compare/internal/application"
	appcomparison "github.com/bryanwahyu/rfp-compare/internal/application/comparison"
	"github.com/bryanwahyu/rfp-compare/internal/domain/criteria"
	filestore "github.com/bryanwahyu/rfp-compare/internal/infra/db/file"
)

type stubValidator struct{}

func (stubValidator) ValidateCriterion(ctx context.Context, c criteria.Criterion, entityName string, useDeepResearch bool) (criteria.Judgment, error) {
	met := false
	return criteria.Judgment{IsMet: &met, Summary: "not met"}, nil
}

func newTestServer(t *testing.T) (http.Handler, *appcomparison.Service) {
	t.Helper()
	store, err := filestore.New(filepath.Join(t.TempDir(), "analyses.json"))
	require.NoError(t, err)
	svc := &appcomparison.Service{
		Repo:      store,
		Validator: stubValidator{},
		Clock:     application.SystemClock{},
	}
	return NewRouter(svc, nil), svc
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAddCompetitorFlow(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/competitors", `{"name":"Acme"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Acme", created.Name)
	assert.NotEmpty(t, created.ID)

	// case-insensitive duplicate
	rec = doJSON(t, h, http.MethodPost, "/v1/competitors", `{"name":"acme"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// third competitor over the limit
	rec = doJSON(t, h, http.MethodPost, "/v1/competitors", `{"name":"Globex"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/v1/competitors", `{"name":"Initech"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// empty name
	rec = doJSON(t, h, http.MethodPost, "/v1/competitors", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/competitors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = doJSON(t, h, http.MethodDelete, "/v1/competitors/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, h, http.MethodDelete, "/v1/competitors/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunAnalysisQueues(t *testing.T) {
	h, svc := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/v1/competitors", `{"name":"Acme"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := `{"product_name":"Our Platform","criteria":[{"criterion":{"id":"c1","text":"Encrypted at rest","category":"security"},"judgment":{"is_met":true,"summary":"yes"}}]}`
	rec = doJSON(t, h, http.MethodPost, "/v1/analysis/run", body)
	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "queued", resp["status"])

	// background run; poll until completed
	deadline := time.Now().Add(5 * time.Second)
	for {
		if p := svc.Progress(); p.Status == "completed" {
			break
		}
		require.True(t, time.Now().Before(deadline), "run never completed")
		time.Sleep(10 * time.Millisecond)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/analysis/results", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var results []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "advantage", results[0]["advantage"])

	rec = doJSON(t, h, http.MethodGet, "/v1/analysis/chart?selection=average", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRunAnalysisRejectsMissingInput(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/v1/analysis/run", `{"product_name":"P","criteria":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/analysis/run", `{"product_name":"","criteria":[{}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// slowValidator blocks every call until release is closed, signalling started
// on the first one.
type slowValidator struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (v *slowValidator) ValidateCriterion(ctx context.Context, c criteria.Criterion, entityName string, useDeepResearch bool) (criteria.Judgment, error) {
	v.once.Do(func() { close(v.started) })
	<-v.release
	met := false
	return criteria.Judgment{IsMet: &met}, nil
}

func TestRunAnalysisConflictWhileRunning(t *testing.T) {
	store, err := filestore.New(filepath.Join(t.TempDir(), "analyses.json"))
	require.NoError(t, err)
	v := &slowValidator{started: make(chan struct{}), release: make(chan struct{})}
	svc := &appcomparison.Service{
		Repo:      store,
		Validator: v,
		Clock:     application.SystemClock{},
	}
	h := NewRouter(svc, nil)

	rec := doJSON(t, h, http.MethodPost, "/v1/competitors", `{"name":"Acme"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := `{"product_name":"Our Platform","criteria":[{"criterion":{"id":"c1","text":"Encrypted at rest"},"judgment":{"is_met":true}}]}`
	rec = doJSON(t, h, http.MethodPost, "/v1/analysis/run", body)
	require.Equal(t, http.StatusAccepted, rec.Code)

	<-v.started
	rec = doJSON(t, h, http.MethodPost, "/v1/analysis/run", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(v.release)
	deadline := time.Now().Add(5 * time.Second)
	for svc.Progress().Status != "completed" {
		require.True(t, time.Now().Before(deadline), "run never completed")
		time.Sleep(10 * time.Millisecond)
	}
	assert.Len(t, svc.ComparisonResults(), 1)
}

func TestAnalysisIDShapeRejected(t *testing.T) {
	h, _ := newTestServer(t)
	for _, path := range []string{
		"/v1/analyses/not-an-id",
		"/v1/analyses/not-an-id/export",
	} {
		rec := doJSON(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
	rec := doJSON(t, h, http.MethodPost, "/v1/analyses/not-an-id/load", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, h, http.MethodDelete, "/v1/analyses/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChartSelectionRejected(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/v1/analysis/chart?selection="+strings.Repeat("x", 201), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/analysis/chart?selection=average", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalysesLifecycleOverHTTP(t *testing.T) {
	h, svc := newTestServer(t)

	// seed the working set directly through the service
	_, err := svc.AddCompetitor("Acme", "")
	require.NoError(t, err)
	met := true
	report, err := svc.RunAnalysis(context.Background(), appcomparison.RunCommand{
		ProductName: "Our Platform",
		Criteria: []criteria.Validated{{
			Criterion: criteria.Criterion{ID: "c1", Text: "Encrypted", Category: criteria.CategorySecurity},
			Judgment:  criteria.Judgment{IsMet: &met},
		}},
	})
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodGet, "/v1/analyses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summaries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)

	id := string(report.AnalysisID)

	rec = doJSON(t, h, http.MethodGet, "/v1/analyses/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/analyses/"+id+"/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "competitive-analysis-our-platform-")
	exported := rec.Body.String()

	rec = doJSON(t, h, http.MethodPost, "/v1/analyses/import", exported)
	require.Equal(t, http.StatusCreated, rec.Code)
	var imported map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &imported))
	assert.NotEqual(t, id, imported["id"])
	assert.Equal(t, true, imported["imported"])

	rec = doJSON(t, h, http.MethodPost, "/v1/analyses/"+id+"/load", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/v1/analyses/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, h, http.MethodGet, "/v1/analyses/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/v1/analyses", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, h, http.MethodGet, "/v1/analyses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summaries = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	assert.Empty(t, summaries)
}

func TestImportRejectsInvalidDocument(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/v1/analyses/import", `{"productName":"","analysisData":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveWithoutResultsFails(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/v1/analyses", `{"custom_name":"Q1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
