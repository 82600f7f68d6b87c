package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus"

	"github.com/tulisify/tulisify/internal/logger"
	"github.com/tulisify/tulisify/internal/metrics"
	"github.com/tulisify/tulisify/internal/storage"
)

// ReferenceSource reports the asset paths books still point at.
type ReferenceSource interface {
	ReferencedAssets(ctx context.Context) (map[string]struct{}, error)
}

// OrphanSweeper deletes stored assets that no book references. Files
// younger than the grace period are kept so an upload is never removed
// while its book is still being saved.
type OrphanSweeper struct {
	client storage.Client
	refs   ReferenceSource
	grace  time.Duration
	now    func() time.Time
}

func NewOrphanSweeper(client storage.Client, refs ReferenceSource, grace time.Duration) *OrphanSweeper {
	return &OrphanSweeper{client: client, refs: refs, grace: grace, now: time.Now}
}

// Sweep returns the number of files deleted.
func (s *OrphanSweeper) Sweep(ctx context.Context) (int, error) {
	defer logger.Track(ctx, "orphan sweep")()

	refs, err := s.refs.ReferencedAssets(ctx)
	if err != nil {
		return 0, fmt.Errorf("load referenced assets: %w", err)
	}

	cutoff := s.now().Add(-s.grace)
	deleted := 0
	for _, kind := range []storage.AssetKind{storage.AssetCover, storage.AssetPDF} {
		files, err := storage.ListRecursive(ctx, s.client, kind.Dir())
		if err != nil {
			return deleted, fmt.Errorf("list %s: %w", kind.Dir(), err)
		}

		for _, f := range files {
			if _, used := refs[f.Path]; used {
				continue
			}
			if f.ModifiedAt.After(cutoff) {
				continue
			}
			if err := s.client.Delete(ctx, f.Path); err != nil {
				logger.For(ctx).WithError(err).WithField("path", f.Path).Warn("failed to delete orphaned asset")
				continue
			}
			deleted++
			metrics.AssetDeletions.WithLabelValues("orphan").Inc()
		}
	}

	if deleted > 0 {
		logger.For(ctx).WithFields(logrus.Fields{"deleted": deleted}).Info("orphaned assets removed")
	}
	return deleted, nil
}

// SweepOrphansTask runs one orphan sweep.
type SweepOrphansTask struct{}

// Config returns the queue configuration for sweeps.
func (t SweepOrphansTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sweep_orphans",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SweepOrphansProcessor creates a processor function for SweepOrphansTask.
func SweepOrphansProcessor(sweeper *OrphanSweeper) backlite.QueueProcessor[SweepOrphansTask] {
	return func(ctx context.Context, task SweepOrphansTask) error {
		if sweeper == nil {
			return fmt.Errorf("orphan sweeper not configured")
		}
		_, err := sweeper.Sweep(ctx)
		return err
	}
}

// NewSweepOrphansQueue creates a backlite queue for sweeps.
func NewSweepOrphansQueue(sweeper *OrphanSweeper) backlite.Queue {
	return backlite.NewQueue(SweepOrphansProcessor(sweeper))
}

// EnqueueSweep adds a sweep to the queue.
func (c *Client) EnqueueSweep(ctx context.Context) error {
	if _, err := c.Add(SweepOrphansTask{}).Ctx(ctx).Save(); err != nil {
		return fmt.Errorf("enqueue orphan sweep: %w", err)
	}
	return nil
}
