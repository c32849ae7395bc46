package ingest

import (
	"sort"
	"strings"
	"time"

	"secboard/pkg/models"
)

// The refresh pipeline stages below are pure transformations over job
// slices, applied in a fixed order each run: Merge, Deduplicate, Expire,
// Annotate, SortNewestFirst. None of them mutate their inputs.

// Merge concatenates the previously published jobs with the freshly fetched
// ones. Previous jobs come first so that deduplication's last-write-wins
// favors fresher fetched data.
func Merge(previous, fetched []models.Job) []models.Job {
	merged := make([]models.Job, 0, len(previous)+len(fetched))
	merged = append(merged, previous...)
	merged = append(merged, fetched...)
	return merged
}

// DedupKey returns the identity under which duplicate postings collapse.
func DedupKey(job models.Job) string {
	return strings.ToLower(job.Title) + "|" + strings.ToLower(job.Company)
}

// Deduplicate collapses jobs sharing a dedup key, keeping the most recently
// created record. A later duplicate that wins replaces the earlier record in
// place, preserving its position, so relative ordering stays stable aside
// from the replacement.
func Deduplicate(jobs []models.Job) []models.Job {
	out := make([]models.Job, 0, len(jobs))
	index := make(map[string]int, len(jobs))

	for _, job := range jobs {
		key := DedupKey(job)
		if i, seen := index[key]; seen {
			// Ties go to the later record, which is the fresher fetch.
			if !job.CreatedAt.Before(out[i].CreatedAt) {
				out[i] = job
			}
			continue
		}
		index[key] = len(out)
		out = append(out, job)
	}

	return out
}

// Expire drops jobs older than the retention window. A missing createdAt is
// treated as already expired.
func Expire(jobs []models.Job, now time.Time, maxAge time.Duration) []models.Job {
	kept := make([]models.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.CreatedAt.IsZero() {
			continue
		}
		if now.Sub(job.CreatedAt) > maxAge {
			continue
		}
		kept = append(kept, job)
	}
	return kept
}

// Annotate recomputes the freshness and remote flags for every job against
// the current refresh time. Freshness is always relative to this refresh,
// never to the original ingestion.
func Annotate(jobs []models.Job, now time.Time, newJobThreshold time.Duration) []models.Job {
	annotated := make([]models.Job, len(jobs))
	for i, job := range jobs {
		job.IsNew = !job.CreatedAt.IsZero() && now.Sub(job.CreatedAt) < newJobThreshold
		job.IsRemote = DetectRemote(strings.ToLower(job.Title + " " + job.Description + " " + job.Location))
		annotated[i] = job
	}
	return annotated
}

// SortNewestFirst returns the jobs ordered by createdAt descending, the
// canonical read order of the board.
func SortNewestFirst(jobs []models.Job) []models.Job {
	sorted := make([]models.Job, len(jobs))
	copy(sorted, jobs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}
