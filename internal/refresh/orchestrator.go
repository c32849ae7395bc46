// Package refresh sequences the fetch-merge-publish pipeline. Both the cron
// scheduler and the manual HTTP trigger call TriggerRefresh; only one run
// executes at a time and a second trigger is rejected while one is active.
package refresh

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"secboard/internal/adzuna"
	"secboard/internal/config"
	"secboard/internal/ingest"
	"secboard/internal/logging"
	"secboard/internal/store"
	"secboard/pkg/models"
	"secboard/pkg/utils"
)

// State is the orchestrator's position in the refresh cycle.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateMerging
	StatePublishing
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateMerging:
		return "merging"
	case StatePublishing:
		return "publishing"
	default:
		return "unknown"
	}
}

// Fetcher issues one category query against the upstream search API.
type Fetcher interface {
	Search(ctx context.Context, plan config.CategoryPlan) ([]adzuna.Result, error)
}

// StatsMirror receives the published stats after each successful refresh.
type StatsMirror interface {
	Publish(ctx context.Context, stats models.Stats, lastUpdated time.Time) error
}

// Result summarizes one completed refresh run.
type Result struct {
	Fetched   int
	Published int
	Duration  time.Duration
}

// Orchestrator drives the refresh pipeline: fetch each category with pacing,
// normalize, merge with the published set, dedupe, expire, annotate, compute
// stats and atomically publish.
type Orchestrator struct {
	cfg        *config.Config
	fetcher    Fetcher
	store      *store.Store
	normalizer *ingest.Normalizer
	limiter    *rate.Limiter
	mirror     StatsMirror
	logger     logging.Logger

	state   atomic.Int32
	running atomic.Bool
}

// New creates an orchestrator. The pacing limiter admits one category fetch
// per configured pacing interval, with the first fetch passing immediately.
func New(cfg *config.Config, fetcher Fetcher, st *store.Store, logger logging.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		fetcher:    fetcher,
		store:      st,
		normalizer: ingest.NewNormalizer(cfg.Refresh.NewJobThreshold),
		limiter:    rate.NewLimiter(rate.Every(cfg.Refresh.Pacing), 1),
		logger:     logger.WithField("component", "refresh"),
	}
}

// SetStatsMirror attaches an optional stats mirror, notified fire-and-forget
// after each successful publish.
func (o *Orchestrator) SetStatsMirror(mirror StatsMirror) {
	o.mirror = mirror
}

// State returns the current pipeline state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// TriggerRefresh runs one full refresh and publishes the result. It returns
// a refresh-in-progress error when another run is active, and on any failure
// the previously published snapshot stays untouched.
func (o *Orchestrator) TriggerRefresh(ctx context.Context) (result *Result, err error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, utils.NewRefreshInProgressError()
	}
	defer func() {
		o.state.Store(int32(StateIdle))
		o.running.Store(false)
	}()

	// An unexpected panic anywhere in the pipeline aborts this run only.
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Refresh pipeline panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
			result = nil
			err = utils.NewPipelineError(fmt.Sprint(r))
		}
	}()

	started := time.Now()
	o.logger.Info("Refresh started", map[string]interface{}{"categories": len(o.cfg.Categories)})

	o.state.Store(int32(StateFetching))
	fetched, fetchCount, err := o.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	o.state.Store(int32(StateMerging))
	now := time.Now()
	previous := o.store.Snapshot()

	merged := ingest.Merge(previous.Jobs, fetched)
	deduped := ingest.Deduplicate(merged)
	kept := ingest.Expire(deduped, now, o.cfg.Refresh.MaxJobAge)
	annotated := ingest.Annotate(kept, now, o.cfg.Refresh.NewJobThreshold)
	jobs := ingest.SortNewestFirst(annotated)
	stats := ingest.ComputeStats(jobs)

	o.state.Store(int32(StatePublishing))
	o.store.Publish(jobs, stats, fetchCount)

	if o.mirror != nil {
		go o.mirrorStats(stats)
	}

	duration := time.Since(started)
	o.logger.Info("Refresh complete", map[string]interface{}{
		"fetched":   fetchCount,
		"published": len(jobs),
		"dropped":   len(deduped) - len(kept),
		"duration":  utils.FormatDuration(duration),
	})

	return &Result{Fetched: fetchCount, Published: len(jobs), Duration: duration}, nil
}

// fetchAll queries every category in the plan sequentially, waiting on the
// pacing limiter before each call. A failed category contributes zero jobs
// and an error log entry; it never aborts the other categories. Only context
// cancellation aborts the whole run.
func (o *Orchestrator) fetchAll(ctx context.Context) ([]models.Job, int, error) {
	var jobs []models.Job
	fetchCount := 0

	for _, plan := range o.cfg.Categories {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, 0, fmt.Errorf("refresh aborted: %w", err)
		}

		results, err := o.fetcher.Search(ctx, plan)
		now := time.Now()

		if err != nil {
			o.logger.Warn("Category fetch failed", map[string]interface{}{
				"category": plan.Name,
				"error":    err.Error(),
			})
			o.store.AppendFetchLog(models.FetchLogEntry{
				Category:  plan.Name,
				Timestamp: now,
				Status:    "error",
				Error:     err.Error(),
			})
			continue
		}

		o.store.AppendFetchLog(models.FetchLogEntry{
			Category:  plan.Name,
			Timestamp: now,
			Count:     len(results),
			Status:    "success",
		})

		for _, rec := range results {
			jobs = append(jobs, o.normalizer.Normalize(rec, now))
		}
		fetchCount += len(results)

		o.logger.Debug("Category fetched", map[string]interface{}{
			"category": plan.Name,
			"count":    len(results),
		})
	}

	return jobs, fetchCount, nil
}

func (o *Orchestrator) mirrorStats(stats models.Stats) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap := o.store.Snapshot()
	if err := o.mirror.Publish(ctx, stats, snap.LastUpdated); err != nil {
		o.logger.Warn("Stats mirror publish failed", map[string]interface{}{"error": err.Error()})
	}
}
