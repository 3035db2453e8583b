package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/appkivawa/pulseboard/app/database"
)

// PruneContentTask deletes durable content records past the retention window
// that no saved item references. Saved records are never pruned.
type PruneContentTask struct {
	Task
	contentRepo database.ContentRepository
	retention   time.Duration
}

func NewPruneContentTask(contentRepo database.ContentRepository, retention time.Duration) *PruneContentTask {
	return &PruneContentTask{
		Task:        NewTask(TaskTypePruneContent, "content"),
		contentRepo: contentRepo,
		retention:   retention,
	}
}

func (t *PruneContentTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	cutoff := time.Now().UTC().Add(-t.retention)

	deleted, err := t.contentRepo.DeleteUnreferencedContent(cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune unreferenced content: %w", err)
	}

	slog.Info("Task completed",
		"type", "PruneContent",
		"duration", t.GetDuration(),
		"deleted", deleted,
		"cutoff", cutoff.Format(time.RFC3339))

	return nil
}
