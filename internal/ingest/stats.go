package ingest

import (
	"strings"

	"secboard/pkg/models"
)

// ComputeStats derives the aggregate counters for a job set. It is fully
// recomputed on every publish, never updated incrementally.
func ComputeStats(jobs []models.Job) models.Stats {
	stats := models.Stats{Total: len(jobs)}

	companies := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		if job.IsNew {
			stats.New++
		}
		if job.IsRemote {
			stats.Remote++
		}
		companies[strings.ToLower(job.Company)] = true
	}
	stats.Companies = len(companies)

	return stats
}
