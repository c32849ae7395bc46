package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"secboard/pkg/models"
)

func TestComputeStats(t *testing.T) {
	now := time.Now()
	jobs := []models.Job{
		{Title: "A", Company: "Acme", IsNew: true, IsRemote: true, CreatedAt: now},
		{Title: "B", Company: "acme", IsNew: false, IsRemote: true, CreatedAt: now},
		{Title: "C", Company: "Globex", IsNew: true, IsRemote: false, CreatedAt: now},
	}

	stats := ComputeStats(jobs)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.New)
	assert.Equal(t, 2, stats.Remote)
	assert.Equal(t, 2, stats.Companies, "company count is case-insensitive distinct")
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Equal(t, models.Stats{}, stats)
}
