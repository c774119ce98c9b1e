package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron          *cron.Cron
	reaper        *ReaperService
	sweepSchedule string
	logger        *logrus.Logger
}

// NewCronService creates a new CronService. sweepSchedule is a cron
// expression with a seconds field, e.g. "0 * * * * *" for every minute.
func NewCronService(reaper *ReaperService, sweepSchedule string, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:          cron.New(cron.WithSeconds()),
		reaper:        reaper,
		sweepSchedule: sweepSchedule,
		logger:        logger,
	}
}

// Start schedules all jobs and starts the scheduler
func (s *CronService) Start() error {
	_, err := s.cron.AddFunc(s.sweepSchedule, s.sweepJob)
	if err != nil {
		return fmt.Errorf("failed to schedule reservation sweep: %w", err)
	}
	s.logger.WithField("schedule", s.sweepSchedule).Info("Scheduled expired reservation sweep")

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops the scheduler, waiting for running jobs to finish
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) sweepJob() {
	startTime := time.Now()

	released, err := s.reaper.Sweep()
	if err != nil {
		s.logger.WithError(err).Error("Reservation sweep job failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"released_seats": released,
		"duration_ms":    time.Since(startTime).Milliseconds(),
	}).Debug("Reservation sweep job completed")
}

// RunSweepNow runs the reservation sweep immediately and returns the number
// of seats released. Used by the maintenance endpoint.
func (s *CronService) RunSweepNow() (int, error) {
	s.logger.Info("Running reservation sweep manually")
	return s.reaper.Sweep()
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
