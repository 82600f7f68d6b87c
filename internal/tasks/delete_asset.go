package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/tulisify/tulisify/internal/logger"
	"github.com/tulisify/tulisify/internal/metrics"
	"github.com/tulisify/tulisify/internal/storage"
)

// DeleteAssetTask removes a stored file that no book references anymore.
type DeleteAssetTask struct {
	Path string `json:"path"`
}

// Config returns the queue configuration for asset deletions.
func (t DeleteAssetTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "delete_asset",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: true,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReferenceChecker reports whether a book still points at a stored path.
type ReferenceChecker interface {
	IsAssetReferenced(ctx context.Context, path string) (bool, error)
}

// DeleteAssetProcessor creates a processor function for DeleteAssetTask.
// A file that is already gone counts as deleted. A file a book picked up
// after the task was queued is kept.
func DeleteAssetProcessor(client storage.Client, refs ReferenceChecker) backlite.QueueProcessor[DeleteAssetTask] {
	return func(ctx context.Context, task DeleteAssetTask) error {
		if client == nil {
			return fmt.Errorf("storage client not configured")
		}
		if !storage.IsStoredPath(task.Path) {
			return nil
		}
		if refs != nil {
			used, err := refs.IsAssetReferenced(ctx, task.Path)
			if err != nil {
				return fmt.Errorf("check references for %s: %w", task.Path, err)
			}
			if used {
				logger.For(ctx).WithField("path", task.Path).Debug("asset still referenced, kept")
				return nil
			}
		}

		err := client.Delete(ctx, task.Path)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("delete asset %s: %w", task.Path, err)
		}

		metrics.AssetDeletions.WithLabelValues("replaced").Inc()
		logger.For(ctx).WithField("path", task.Path).Debug("asset deleted")
		return nil
	}
}

// NewDeleteAssetQueue creates a backlite queue for asset deletions.
func NewDeleteAssetQueue(client storage.Client, refs ReferenceChecker) backlite.Queue {
	return backlite.NewQueue(DeleteAssetProcessor(client, refs))
}

// ScheduleDelete enqueues a DeleteAssetTask. It makes Client a
// storage.DeleteScheduler.
func (c *Client) ScheduleDelete(ctx context.Context, path string) error {
	if _, err := c.Add(DeleteAssetTask{Path: path}).Ctx(ctx).Save(); err != nil {
		return fmt.Errorf("enqueue asset deletion: %w", err)
	}
	return nil
}
