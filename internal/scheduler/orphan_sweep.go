// Package scheduler triggers periodic background work on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule validates a five-field cron schedule string.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// GetCronDescription returns a human-readable description of a cron schedule
func GetCronDescription(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "*/15 * * * *":
		return "Every 15 minutes"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// Trigger starts one run of the scheduled work.
type Trigger func(ctx context.Context) error

// OrphanSweepScheduler triggers the orphaned-asset sweep. The trigger
// normally only enqueues a task, so runs never overlap in the scheduler.
type OrphanSweepScheduler struct {
	schedule string
	trigger  Trigger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewOrphanSweepScheduler(schedule string, trigger Trigger) *OrphanSweepScheduler {
	return &OrphanSweepScheduler{
		schedule: schedule,
		trigger:  trigger,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler. An empty schedule disables it.
func (s *OrphanSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.schedule == "" {
		logrus.Info("Orphan sweep scheduler: disabled")
		return nil
	}
	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel

	entryID, err := s.cron.AddFunc(s.schedule, func() { s.run(runCtx) })
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule orphan sweep: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Orphan sweep scheduler: started with schedule '%s' (%s). Next run: %v",
		s.schedule, GetCronDescription(s.schedule), s.nextRunLocked())

	go func(done <-chan struct{}) {
		<-done
		s.Stop()
	}(runCtx.Done())

	return nil
}

// Stop gracefully stops the scheduler
func (s *OrphanSweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	<-s.cron.Stop().Done()
	s.cancelFunc()

	s.isRunning = false
	s.cancelFunc = nil

	logrus.Info("Orphan sweep scheduler: stopped")
}

// RunNow triggers a sweep outside the schedule.
func (s *OrphanSweepScheduler) RunNow(ctx context.Context) error {
	return s.trigger(ctx)
}

// IsRunning returns whether the scheduler is active
func (s *OrphanSweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next sweep will occur, nil when stopped.
func (s *OrphanSweepScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return nil
	}
	return s.nextRunLocked()
}

func (s *OrphanSweepScheduler) nextRunLocked() *time.Time {
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *OrphanSweepScheduler) run(ctx context.Context) {
	if err := s.trigger(ctx); err != nil {
		logrus.WithError(err).Warn("Orphan sweep scheduler: trigger failed")
	}
}
