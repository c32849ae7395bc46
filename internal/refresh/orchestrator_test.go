package refresh

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secboard/internal/adzuna"
	"secboard/internal/config"
	"secboard/internal/logging"
	"secboard/internal/store"
	"secboard/pkg/models"
	"secboard/pkg/utils"
)

// fakeFetcher returns canned results per category and can fail or block on
// demand.
type fakeFetcher struct {
	results map[string][]adzuna.Result
	fail    map[string]error
	block   chan struct{}
}

func (f *fakeFetcher) Search(ctx context.Context, plan config.CategoryPlan) ([]adzuna.Result, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.fail[plan.Name]; ok {
		return nil, err
	}
	return f.results[plan.Name], nil
}

func testConfig(categories ...config.CategoryPlan) *config.Config {
	cfg := &config.Config{}
	cfg.Refresh.Pacing = 10 * time.Millisecond
	cfg.Refresh.MaxJobAge = 7 * 24 * time.Hour
	cfg.Refresh.NewJobThreshold = 6 * time.Hour
	cfg.Categories = categories
	return cfg
}

func plan(name string) config.CategoryPlan {
	return config.CategoryPlan{Name: name, Terms: []string{"security"}, Region: "us"}
}

func record(title, company string, createdAt time.Time) adzuna.Result {
	return adzuna.Result{
		Title:       title,
		Company:     adzuna.Company{DisplayName: company},
		Description: "security work",
		Location:    adzuna.Location{DisplayName: "Boston, MA"},
		Created:     createdAt.UTC().Format(time.RFC3339),
	}
}

func TestTriggerRefresh_PublishesSnapshot(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{results: map[string][]adzuna.Result{
		"A": {record("SOC Analyst", "Acme", now.Add(-time.Hour))},
		"B": {record("Pentester", "Globex", now.Add(-2*time.Hour))},
	}}
	st := store.New()
	o := New(testConfig(plan("A"), plan("B")), fetcher, st, logging.GetGlobalLogger())

	result, err := o.TriggerRefresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 2, result.Published)

	snap := st.Snapshot()
	require.Len(t, snap.Jobs, 2)
	assert.Equal(t, "SOC Analyst", snap.Jobs[0].Title, "newest first")
	assert.Equal(t, 2, snap.Stats.Total)
	assert.Equal(t, StateIdle, o.State())
}

func TestTriggerRefresh_PartialFailureIsolation(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{
		results: map[string][]adzuna.Result{
			"A": {record("SOC Analyst", "Acme", now.Add(-time.Hour))},
			"C": {record("Auditor", "Initech", now.Add(-time.Hour))},
		},
		fail: map[string]error{"B": errors.New("upstream 500")},
	}
	st := store.New()
	o := New(testConfig(plan("A"), plan("B"), plan("C")), fetcher, st, logging.GetGlobalLogger())

	result, err := o.TriggerRefresh(context.Background())

	require.NoError(t, err, "one failing category must not abort the refresh")
	assert.Equal(t, 2, result.Fetched)
	assert.Len(t, st.Snapshot().Jobs, 2)

	entries := st.FetchLog(0)
	require.Len(t, entries, 3)
	byCategory := make(map[string]models.FetchLogEntry, len(entries))
	for _, e := range entries {
		byCategory[e.Category] = e
	}
	assert.Equal(t, "success", byCategory["A"].Status)
	assert.Equal(t, "success", byCategory["C"].Status)
	assert.Equal(t, "error", byCategory["B"].Status)
	assert.Contains(t, byCategory["B"].Error, "upstream 500")
}

func TestTriggerRefresh_DuplicateAcrossCategoriesCollapses(t *testing.T) {
	now := time.Now()
	rec := record("Security Engineer", "Acme", now.Add(-time.Hour))
	fetcher := &fakeFetcher{results: map[string][]adzuna.Result{
		"A": {rec},
		"B": {rec},
	}}
	st := store.New()
	o := New(testConfig(plan("A"), plan("B")), fetcher, st, logging.GetGlobalLogger())

	result, err := o.TriggerRefresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Fetched, "both fetches count toward the run total")
	assert.Equal(t, 1, result.Published, "dedup key collapses the duplicate")
}

func TestTriggerRefresh_ExpiresStaleJobs(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{results: map[string][]adzuna.Result{
		"A": {
			record("Fresh", "Acme", now.Add(-6*24*time.Hour)),
			record("Stale", "Globex", now.Add(-8*24*time.Hour)),
		},
	}}
	st := store.New()
	o := New(testConfig(plan("A")), fetcher, st, logging.GetGlobalLogger())

	_, err := o.TriggerRefresh(context.Background())

	require.NoError(t, err)
	snap := st.Snapshot()
	require.Len(t, snap.Jobs, 1)
	assert.Equal(t, "Fresh", snap.Jobs[0].Title)
}

func TestTriggerRefresh_RejectsConcurrentRun(t *testing.T) {
	block := make(chan struct{})
	fetcher := &fakeFetcher{
		results: map[string][]adzuna.Result{},
		block:   block,
	}
	st := store.New()
	o := New(testConfig(plan("A")), fetcher, st, logging.GetGlobalLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		o.TriggerRefresh(context.Background())
	}()

	// Wait for the first run to enter the pipeline.
	require.Eventually(t, func() bool {
		return o.State() != StateIdle
	}, time.Second, 5*time.Millisecond)

	_, err := o.TriggerRefresh(context.Background())
	var custom *utils.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, http.StatusConflict, custom.Code)

	close(block)
	<-done
	assert.Equal(t, StateIdle, o.State())
}

func TestTriggerRefresh_AbortLeavesPreviousSnapshot(t *testing.T) {
	now := time.Now()
	st := store.New()

	// First refresh publishes one job.
	first := &fakeFetcher{results: map[string][]adzuna.Result{
		"A": {record("Keeper", "Acme", now.Add(-time.Hour))},
	}}
	o := New(testConfig(plan("A")), first, st, logging.GetGlobalLogger())
	_, err := o.TriggerRefresh(context.Background())
	require.NoError(t, err)
	published := st.Snapshot()

	// Second refresh is cancelled mid-fetch and must not publish.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = o.TriggerRefresh(ctx)
	require.Error(t, err)

	assert.Same(t, published, st.Snapshot(), "aborted run leaves the prior snapshot untouched")
}

func TestTriggerRefresh_RefetchKeepsLatestCreated(t *testing.T) {
	now := time.Now()
	st := store.New()

	older := record("SOC Analyst", "Acme", now.Add(-5*time.Hour))
	o := New(testConfig(plan("A")), &fakeFetcher{results: map[string][]adzuna.Result{"A": {older}}}, st, logging.GetGlobalLogger())
	_, err := o.TriggerRefresh(context.Background())
	require.NoError(t, err)

	// The posting reappears with a bumped creation time; the republished
	// board carries exactly one copy with the newer timestamp.
	newer := record("SOC Analyst", "Acme", now.Add(-time.Hour))
	o2 := New(testConfig(plan("A")), &fakeFetcher{results: map[string][]adzuna.Result{"A": {newer}}}, st, logging.GetGlobalLogger())
	_, err = o2.TriggerRefresh(context.Background())
	require.NoError(t, err)

	snap := st.Snapshot()
	require.Len(t, snap.Jobs, 1)
	assert.WithinDuration(t, now.Add(-time.Hour), snap.Jobs[0].CreatedAt, time.Second)
}

func TestState_String(t *testing.T) {
	for state, want := range map[State]string{
		StateIdle:       "idle",
		StateFetching:   "fetching",
		StateMerging:    "merging",
		StatePublishing: "publishing",
	} {
		assert.Equal(t, want, state.String())
	}
}

func TestTriggerRefresh_FetchCountMatchesLog(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{results: map[string][]adzuna.Result{
		"A": {
			record("One", "Acme", now.Add(-time.Hour)),
			record("Two", "Globex", now.Add(-time.Hour)),
		},
	}}
	st := store.New()
	o := New(testConfig(plan("A")), fetcher, st, logging.GetGlobalLogger())

	result, err := o.TriggerRefresh(context.Background())
	require.NoError(t, err)

	entries := st.FetchLog(0)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Count)
	assert.Equal(t, result.Fetched, entries[0].Count)
}
