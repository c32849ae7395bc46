package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secboard/internal/adzuna"
	"secboard/internal/config"
	"secboard/internal/logging"
	"secboard/internal/refresh"
	"secboard/internal/store"
	"secboard/pkg/models"
)

func seedStore(t *testing.T, n int) *store.Store {
	t.Helper()
	s := store.New()
	jobs := make([]models.Job, n)
	for i := range jobs {
		jobs[i] = models.Job{
			ID:        string(rune('a' + i)),
			Title:     "Security Analyst",
			Company:   "Acme",
			Category:  "General Security",
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Minute),
		}
	}
	s.Publish(jobs, models.Stats{Total: n, Companies: 1}, n)
	return s
}

func doRequest(handler echo.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestListJobsHandler_ReturnsPage(t *testing.T) {
	s := seedStore(t, 5)

	rec := doRequest(ListJobsHandler(s), http.MethodGet, "/api/v1/jobs?page=1&limit=3")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.JobListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Jobs, 3)
	assert.Equal(t, 5, resp.Pagination.Total)
	assert.True(t, resp.Pagination.HasNext)
	assert.False(t, resp.Pagination.HasPrev)
}

func TestListJobsHandler_InvalidPage(t *testing.T) {
	s := seedStore(t, 1)

	rec := doRequest(ListJobsHandler(s), http.MethodGet, "/api/v1/jobs?page=zero")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_page", resp.Error)
	assert.NotEmpty(t, resp.RequestID)
}

func TestStatsHandler(t *testing.T) {
	s := seedStore(t, 4)

	rec := doRequest(StatsHandler(s), http.MethodGet, "/api/v1/stats")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Stats.Total)
	assert.Equal(t, 4, resp.TotalFetched)
	assert.False(t, resp.LastUpdated.IsZero())
}

func TestCategoriesHandler(t *testing.T) {
	s := seedStore(t, 2)

	rec := doRequest(CategoriesHandler(s), http.MethodGet, "/api/v1/categories")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.CategoryCountsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Categories["General Security"])
}

func TestFetchLogHandler(t *testing.T) {
	s := store.New()
	s.AppendFetchLog(models.FetchLogEntry{Category: "A", Status: "success", Count: 7})
	s.AppendFetchLog(models.FetchLogEntry{Category: "B", Status: "error", Error: "boom"})

	rec := doRequest(FetchLogHandler(s), http.MethodGet, "/api/v1/fetch-log")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.FetchLogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "A", resp.Entries[0].Category)
	assert.Equal(t, "error", resp.Entries[1].Status)
}

func TestReadinessHandler_BeforeAndAfterPublish(t *testing.T) {
	s := store.New()

	rec := doRequest(ReadinessHandler(s), http.MethodGet, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.Publish([]models.Job{}, models.Stats{}, 0)
	rec = doRequest(ReadinessHandler(s), http.MethodGet, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}

// failingFetcher always errors, so a manual refresh still publishes an
// empty-but-valid snapshot rather than failing.
type failingFetcher struct{}

func (failingFetcher) Search(ctx context.Context, plan config.CategoryPlan) ([]adzuna.Result, error) {
	return nil, errors.New("upstream down")
}

func testOrchestrator(st *store.Store) *refresh.Orchestrator {
	cfg := &config.Config{}
	cfg.Refresh.Pacing = 10 * time.Millisecond
	cfg.Refresh.MaxJobAge = 7 * 24 * time.Hour
	cfg.Refresh.NewJobThreshold = 6 * time.Hour
	cfg.Categories = []config.CategoryPlan{{Name: "A", Terms: []string{"security"}, Region: "us"}}
	return refresh.New(cfg, failingFetcher{}, st, logging.GetGlobalLogger())
}

func TestRefreshHandler_Success(t *testing.T) {
	s := store.New()

	rec := doRequest(RefreshHandler(testOrchestrator(s)), http.MethodPost, "/api/v1/refresh")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.RefreshResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 0, resp.Fetched)
	assert.True(t, s.Published())
}
