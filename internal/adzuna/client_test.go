package adzuna

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secboard/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Adzuna.AppID = "test-id"
	cfg.Adzuna.AppKey = "test-key"
	cfg.Adzuna.BaseURL = server.URL
	cfg.Adzuna.ResultsPerPage = 2
	cfg.Adzuna.MaxPages = 3
	cfg.Adzuna.Timeout = 5 * time.Second
	cfg.Refresh.MaxJobAge = 7 * 24 * time.Hour

	return NewClient(cfg), server
}

func searchPlan() config.CategoryPlan {
	return config.CategoryPlan{
		Name:   "SOC & Incident Response",
		Terms:  []string{"soc analyst", "incident response"},
		Region: "us",
	}
}

func writeResults(w http.ResponseWriter, results []Result) {
	json.NewEncoder(w).Encode(searchResponse{Results: results, Count: len(results)})
}

func TestSearch_BuildsQuery(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		writeResults(w, nil)
	})

	_, err := client.Search(context.Background(), searchPlan())
	require.NoError(t, err)

	assert.Equal(t, "/us/search/1", gotPath)
	assert.Equal(t, "test-id", gotQuery["app_id"])
	assert.Equal(t, "test-key", gotQuery["app_key"])
	assert.Equal(t, "2", gotQuery["results_per_page"])
	assert.Equal(t, "soc analyst incident response", gotQuery["what_or"])
	assert.Equal(t, "7", gotQuery["max_days_old"])
	assert.Equal(t, "date", gotQuery["sort_by"])
	assert.NotContains(t, gotQuery, "what_and")
}

func TestSearch_RemoteOnlyAddsWhatAnd(t *testing.T) {
	var gotWhatAnd string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotWhatAnd = r.URL.Query().Get("what_and")
		writeResults(w, nil)
	})

	plan := searchPlan()
	plan.RemoteOnly = true
	_, err := client.Search(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, "remote", gotWhatAnd)
}

func TestSearch_PagesUntilShortPage(t *testing.T) {
	pagesServed := 0
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		switch r.URL.Path {
		case "/us/search/1":
			writeResults(w, []Result{{ID: "1"}, {ID: "2"}})
		case "/us/search/2":
			writeResults(w, []Result{{ID: "3"}}) // short page, stop
		default:
			t.Errorf("unexpected page request: %s", r.URL.Path)
		}
	})

	results, err := client.Search(context.Background(), searchPlan())
	require.NoError(t, err)

	assert.Len(t, results, 3)
	assert.Equal(t, 2, pagesServed)
}

func TestSearch_StopsAtMaxPages(t *testing.T) {
	pagesServed := 0
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		writeResults(w, []Result{{ID: "a"}, {ID: "b"}}) // always a full page
	})

	results, err := client.Search(context.Background(), searchPlan())
	require.NoError(t, err)

	assert.Len(t, results, 6)
	assert.Equal(t, 3, pagesServed)
}

func TestSearch_Non200IsError(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "rate limited")
	})

	_, err := client.Search(context.Background(), searchPlan())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSearch_MalformedBodyIsError(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{not json")
	})

	_, err := client.Search(context.Background(), searchPlan())
	require.Error(t, err)
}

func TestParseCreated(t *testing.T) {
	ts := ParseCreated("2026-08-20T10:30:00Z")
	assert.Equal(t, time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC), ts)

	assert.True(t, ParseCreated("").IsZero())
	assert.True(t, ParseCreated("not a date").IsZero())
}
