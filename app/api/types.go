package api

import (
	"context"
	"sync"
	"time"

	"github.com/appkivawa/pulseboard/app/aggregator"
	"github.com/appkivawa/pulseboard/app/compose"
	"github.com/appkivawa/pulseboard/app/database"
	"github.com/appkivawa/pulseboard/app/explore"
	"github.com/appkivawa/pulseboard/app/reconcile"
	"github.com/appkivawa/pulseboard/app/savestate"
	"github.com/appkivawa/pulseboard/app/tasks"
)

type FetcherInterface interface {
	FetchFeed(ctx context.Context, limit int) (*aggregator.FeedResponse, error)
	FetchExplore(ctx context.Context, limit int, cursor, filter string) (*aggregator.ExploreResponse, error)
}

var _ FetcherInterface = (*aggregator.Client)(nil)

type ReconcilerInterface interface {
	Resolve(ref reconcile.Ref, fields reconcile.Fields) (reconcile.DurableID, error)
}

var _ ReconcilerInterface = (*reconcile.Reconciler)(nil)

// lastGoodFeed keeps the most recent successful upstream feed response so a
// later upstream failure can still serve a composed feed, marked stale.
type lastGoodFeed struct {
	mu        sync.Mutex
	resp      *aggregator.FeedResponse
	fetchedAt time.Time
}

type Handler struct {
	fetcher     FetcherInterface
	builder     *compose.Builder
	saveState   *savestate.Manager
	reconciler  ReconcilerInterface
	registry    *explore.Registry
	contentRepo database.ContentRepository
	savedRepo   database.SavedItemRepository
	prefsRepo   database.PrefsRepository
	scheduler   tasks.TaskSchedulerInterface

	feedLimit    int
	exploreLimit int
	retention    time.Duration

	lastGood lastGoodFeed
}
