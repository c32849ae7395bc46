package models

import "time"

// Pagination describes the page window of a job list response.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// JobListResponse is the response for the job query endpoint.
type JobListResponse struct {
	Jobs       []Job      `json:"jobs"`
	Pagination Pagination `json:"pagination"`
}

// StatsResponse is the response for the stats endpoint.
type StatsResponse struct {
	Stats        Stats         `json:"stats"`
	LastUpdated  time.Time     `json:"last_updated"`
	TotalFetched int           `json:"total_fetched"`
	Uptime       time.Duration `json:"uptime"`
}

// CategoryCountsResponse maps each category label to its job count in the
// published snapshot.
type CategoryCountsResponse struct {
	Categories map[string]int `json:"categories"`
}

// FetchLogResponse is the response for the fetch log endpoint.
type FetchLogResponse struct {
	Entries []FetchLogEntry `json:"entries"`
}

// RefreshResponse summarizes a completed manual refresh.
type RefreshResponse struct {
	Success   bool          `json:"success"`
	Fetched   int           `json:"fetched"`
	Published int           `json:"published"`
	Duration  time.Duration `json:"duration"`
	RequestID string        `json:"request_id"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
