// Package store holds the single published job snapshot. Readers always see
// one complete snapshot: a refresh builds a new one off to the side and the
// store swaps a reference, so reads never lock against writes.
package store

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"secboard/pkg/models"
)

// MaxFetchLogEntries bounds the fetch event log; oldest entries drop first.
const MaxFetchLogEntries = 100

// Store owns the currently published snapshot plus the fetch event log and
// server start time, both of which survive publishes.
type Store struct {
	snapshot  atomic.Pointer[models.Snapshot]
	startTime time.Time

	logMu    sync.Mutex
	fetchLog []models.FetchLogEntry
}

// New creates a store seeded with an empty snapshot so query endpoints work
// before the first refresh completes.
func New() *Store {
	s := &Store{startTime: time.Now()}
	s.snapshot.Store(&models.Snapshot{Jobs: []models.Job{}})
	return s
}

// Snapshot returns the currently published snapshot. Callers must treat the
// returned value as read-only.
func (s *Store) Snapshot() *models.Snapshot {
	return s.snapshot.Load()
}

// Publish atomically replaces the published snapshot. The previous snapshot
// is never mutated; a reader holding it keeps a consistent view.
func (s *Store) Publish(jobs []models.Job, stats models.Stats, fetchedThisRun int) {
	s.snapshot.Store(&models.Snapshot{
		Jobs:         jobs,
		LastUpdated:  time.Now(),
		TotalFetched: fetchedThisRun,
		Stats:        stats,
	})
}

// Published reports whether at least one refresh has completed.
func (s *Store) Published() bool {
	return !s.snapshot.Load().LastUpdated.IsZero()
}

// StartTime returns when the store (and the server) came up.
func (s *Store) StartTime() time.Time {
	return s.startTime
}

// Uptime returns how long the server has been running.
func (s *Store) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// AppendFetchLog records the outcome of one category fetch, keeping only the
// most recent MaxFetchLogEntries entries.
func (s *Store) AppendFetchLog(entry models.FetchLogEntry) {
	s.logMu.Lock()
	defer s.logMu.Unlock()

	s.fetchLog = append(s.fetchLog, entry)
	if len(s.fetchLog) > MaxFetchLogEntries {
		s.fetchLog = s.fetchLog[len(s.fetchLog)-MaxFetchLogEntries:]
	}
}

// FetchLog returns up to limit of the most recent fetch log entries, newest
// last. A non-positive limit returns the full bounded log.
func (s *Store) FetchLog(limit int) []models.FetchLogEntry {
	s.logMu.Lock()
	defer s.logMu.Unlock()

	if limit <= 0 || limit > len(s.fetchLog) {
		limit = len(s.fetchLog)
	}
	out := make([]models.FetchLogEntry, limit)
	copy(out, s.fetchLog[len(s.fetchLog)-limit:])
	return out
}

// Query selects jobs from the published snapshot.
type Query struct {
	// Category filters by exact category label when non-empty.
	Category string
	// Search filters by case-insensitive substring over title, company,
	// description and location when non-empty.
	Search string
	// Page is 1-based; Limit is the page size. Both fall back to defaults
	// when non-positive.
	Page  int
	Limit int
}

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// Run executes the query against the currently published snapshot and
// returns the page of matching jobs plus pagination metadata.
func (s *Store) Run(q Query) ([]models.Job, models.Pagination) {
	snap := s.snapshot.Load()

	matched := snap.Jobs
	if q.Category != "" || q.Search != "" {
		search := strings.ToLower(q.Search)
		matched = make([]models.Job, 0, len(snap.Jobs))
		for _, job := range snap.Jobs {
			if q.Category != "" && job.Category != q.Category {
				continue
			}
			if search != "" && !matchesSearch(job, search) {
				continue
			}
			matched = append(matched, job)
		}
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	total := len(matched)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	jobs := make([]models.Job, end-start)
	copy(jobs, matched[start:end])

	return jobs, models.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && total > 0,
	}
}

// CategoryCounts returns the number of jobs per category label in the
// published snapshot.
func (s *Store) CategoryCounts() map[string]int {
	snap := s.snapshot.Load()
	counts := make(map[string]int)
	for _, job := range snap.Jobs {
		counts[job.Category]++
	}
	return counts
}

func matchesSearch(job models.Job, search string) bool {
	return strings.Contains(strings.ToLower(job.Title), search) ||
		strings.Contains(strings.ToLower(job.Company), search) ||
		strings.Contains(strings.ToLower(job.Description), search) ||
		strings.Contains(strings.ToLower(job.Location), search)
}
