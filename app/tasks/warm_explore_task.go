package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/appkivawa/pulseboard/app/explore"
)

// WarmExploreTask refreshes the shared explore first-page cache so the next
// cold request is served without an upstream round trip. Only the unfiltered
// first page is warmed; filtered streams always fetch on demand.
type WarmExploreTask struct {
	Task
	fetcher explore.Fetcher
	cache   *explore.Cache
	limit   int
}

func NewWarmExploreTask(fetcher explore.Fetcher, cache *explore.Cache, limit int) *WarmExploreTask {
	return &WarmExploreTask{
		Task:    NewTask(TaskTypeWarmExplore, "explore"),
		fetcher: fetcher,
		cache:   cache,
		limit:   limit,
	}
}

func (t *WarmExploreTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	resp, err := t.fetcher.FetchExplore(ctx, t.limit, "", "")
	if err != nil {
		return fmt.Errorf("failed to fetch explore first page: %w", err)
	}

	hasMore := resp.HasMore && resp.NextCursor != ""
	t.cache.Set(resp.Items, resp.NextCursor, hasMore, "")

	slog.Info("Task completed",
		"type", "WarmExplore",
		"duration", t.GetDuration(),
		"items", len(resp.Items),
		"has_more", hasMore)

	return nil
}
