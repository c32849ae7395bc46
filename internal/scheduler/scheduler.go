// Package scheduler wires up the cron job that periodically triggers a
// refresh of the job board.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"secboard/internal/logging"
	"secboard/internal/refresh"
	"secboard/pkg/utils"
)

// Scheduler wraps robfig/cron and drives the periodic refresh.
type Scheduler struct {
	cron         *cron.Cron
	orchestrator *refresh.Orchestrator
	spec         string
	logger       logging.Logger
}

// New creates a scheduler that triggers a refresh every interval.
func New(orchestrator *refresh.Orchestrator, interval time.Duration, logger logging.Logger) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		orchestrator: orchestrator,
		spec:         fmt.Sprintf("@every %s", interval),
		logger:       logger.WithField("component", "scheduler"),
	}
}

// Start registers the refresh job and starts the cron loop. One refresh runs
// immediately in the background so the board is populated without waiting
// for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runRefresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started", map[string]interface{}{"spec": s.spec})

	go s.runRefresh(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler, waiting for a running tick.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// runRefresh triggers one refresh. Scheduled runs only log failures; a
// refresh already in progress is skipped, not queued.
func (s *Scheduler) runRefresh(ctx context.Context) {
	_, err := s.orchestrator.TriggerRefresh(ctx)
	if err == nil {
		return
	}

	var custom *utils.CustomError
	if errors.As(err, &custom) && custom.Code == http.StatusConflict {
		s.logger.Debug("Scheduled refresh skipped, run already in progress")
		return
	}
	s.logger.Error("Scheduled refresh failed", map[string]interface{}{"error": err.Error()})
}
