package adzuna

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"secboard/internal/config"
)

// Client queries the Adzuna job search API. One Search call covers one
// category plan: all of the plan's terms OR-joined, scoped to the plan's
// region, sorted by date and bounded to the board's retention window.
type Client struct {
	cfg    *config.Config
	client *http.Client
}

// NewClient constructs a client with a shared HTTP client.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Adzuna.Timeout},
	}
}

// searchResponse mirrors the top-level Adzuna JSON response.
type searchResponse struct {
	Results []Result `json:"results"`
	Count   int      `json:"count"`
}

// Result mirrors a single Adzuna job listing. Salary bounds are pointers so
// a missing bound is distinguishable from zero.
type Result struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Company     Company  `json:"company"`
	Location    Location `json:"location"`
	SalaryMin   *float64 `json:"salary_min"`
	SalaryMax   *float64 `json:"salary_max"`
	RedirectURL string   `json:"redirect_url"`
	Created     string   `json:"created"`
}

type Company struct {
	DisplayName string `json:"display_name"`
}

type Location struct {
	DisplayName string `json:"display_name"`
}

// Search retrieves postings for one category plan, iterating through pages
// until an empty page or the configured page bound is reached.
func (c *Client) Search(ctx context.Context, plan config.CategoryPlan) ([]Result, error) {
	var results []Result

	for page := 1; page <= c.cfg.Adzuna.MaxPages; page++ {
		batch, err := c.searchPage(ctx, plan, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break
		}
		results = append(results, batch...)
		if len(batch) < c.cfg.Adzuna.ResultsPerPage {
			break // last page
		}
	}

	return results, nil
}

func (c *Client) searchPage(ctx context.Context, plan config.CategoryPlan, page int) ([]Result, error) {
	endpoint := fmt.Sprintf("%s/%s/search/%d", c.cfg.Adzuna.BaseURL, plan.Region, page)

	maxDaysOld := int(c.cfg.Refresh.MaxJobAge.Hours() / 24)
	if maxDaysOld < 1 {
		maxDaysOld = 1
	}

	params := url.Values{}
	params.Set("app_id", c.cfg.Adzuna.AppID)
	params.Set("app_key", c.cfg.Adzuna.AppKey)
	params.Set("results_per_page", strconv.Itoa(c.cfg.Adzuna.ResultsPerPage))
	params.Set("what_or", strings.Join(plan.Terms, " "))
	params.Set("max_days_old", strconv.Itoa(maxDaysOld))
	params.Set("sort_by", "date")
	params.Set("content-type", "application/json")
	if plan.RemoteOnly {
		params.Set("what_and", "remote")
	}

	reqURL := endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("adzuna returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var apiResp searchResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	return apiResp.Results, nil
}

// ParseCreated parses the created timestamp of a result, returning the zero
// time when the field is absent or malformed.
func ParseCreated(created string) time.Time {
	if created == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, created); err == nil {
			return t
		}
	}
	return time.Time{}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
