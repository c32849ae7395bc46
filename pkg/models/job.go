package models

import "time"

// Job represents a single normalized job posting as served by the board.
// String fields are never empty: the normalizer substitutes placeholders
// when the upstream record omits them.
type Job struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Salary       string    `json:"salary"`
	URL          string    `json:"url"`
	Category     string    `json:"category"`
	Requirements string    `json:"requirements"`
	IsNew        bool      `json:"is_new"`
	IsRemote     bool      `json:"is_remote"`
	CreatedAt    time.Time `json:"created_at"`
	FetchedAt    time.Time `json:"fetched_at"`
	Source       string    `json:"source"`
}

// Stats holds aggregate counters derived from the published job set.
type Stats struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Remote    int `json:"remote"`
	Companies int `json:"companies"`
}

// FetchLogEntry records the outcome of one category fetch.
type FetchLogEntry struct {
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
	Status    string    `json:"status"` // "success" or "error"
	Error     string    `json:"error,omitempty"`
}

// Snapshot is the immutable published job collection plus metadata.
// A snapshot is built in full by one refresh run and swapped in atomically;
// its fields are never mutated after publish.
type Snapshot struct {
	Jobs         []Job     `json:"jobs"`
	LastUpdated  time.Time `json:"last_updated"`
	TotalFetched int       `json:"total_fetched"`
	Stats        Stats     `json:"stats"`
}
