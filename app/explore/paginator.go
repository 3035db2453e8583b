package explore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/appkivawa/pulseboard/app/aggregator"
)

type State string

const (
	StateIdle        State = "idle"
	StateLoading     State = "loading"
	StateLoaded      State = "loaded"
	StateLoadingMore State = "loading_more"
	StateError       State = "error"
)

var (
	// ErrSuperseded reports that a fetch completed after a newer request for
	// the same stream had already been issued; its result was discarded.
	ErrSuperseded = errors.New("fetch superseded by a newer request")

	// ErrNotLoaded reports a load-more request outside the Loaded state or
	// with no further pages.
	ErrNotLoaded = errors.New("no further page to load")
)

type Fetcher interface {
	FetchExplore(ctx context.Context, limit int, cursor, filter string) (*aggregator.ExploreResponse, error)
}

// Snapshot is a point-in-time copy of a paginator's visible state.
type Snapshot struct {
	State   State
	Filter  string
	Items   []aggregator.Item
	Cursor  string
	HasMore bool
}

// Paginator drives one explore stream through its state machine: Idle ->
// Loading -> Loaded, Loaded -> LoadingMore -> Loaded, any state -> Error on
// fetch failure. Every first-page fetch carries a generation number; a fetch
// whose generation is behind the stream's current one completes into the void
// rather than overwriting a newer result.
type Paginator struct {
	fetcher Fetcher
	cache   *Cache
	limit   int

	mu         sync.Mutex
	state      State
	filter     string
	items      []aggregator.Item
	cursor     string
	hasMore    bool
	generation uint64
}

func NewPaginator(fetcher Fetcher, cache *Cache, limit int) *Paginator {
	return &Paginator{
		fetcher: fetcher,
		cache:   cache,
		limit:   limit,
		state:   StateIdle,
	}
}

// Load performs the first-page load. A fresh cache entry for the current
// filter short-circuits the fetch; otherwise the page is fetched and, on
// success, written back to the cache. A stream already in Loaded state
// returns its current snapshot untouched.
func (p *Paginator) Load(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	if p.state == StateLoaded {
		snapshot := p.snapshotLocked()
		p.mu.Unlock()
		return snapshot, nil
	}

	if entry, ok := p.cache.Get(p.filter); ok {
		p.adoptEntryLocked(entry)
		snapshot := p.snapshotLocked()
		p.mu.Unlock()
		return snapshot, nil
	}

	return p.fetchFirstPageLocked(ctx, p.filter)
}

// Refresh discards the cache entry unconditionally and fetches a fresh first
// page, replacing the current list. It supersedes any fetch still in flight.
func (p *Paginator) Refresh(ctx context.Context) (Snapshot, error) {
	p.cache.Invalidate()

	p.mu.Lock()
	return p.fetchFirstPageLocked(ctx, p.filter)
}

// SetFilter switches the active content filter. An unchanged filter on a
// loaded stream is a no-op; otherwise the stream reloads. The cache is
// consulted but only applies when it was populated with the same filter.
func (p *Paginator) SetFilter(ctx context.Context, filter string) (Snapshot, error) {
	p.mu.Lock()
	if filter == p.filter && p.state == StateLoaded {
		snapshot := p.snapshotLocked()
		p.mu.Unlock()
		return snapshot, nil
	}

	if entry, ok := p.cache.Get(filter); ok {
		p.filter = filter
		p.adoptEntryLocked(entry)
		snapshot := p.snapshotLocked()
		p.mu.Unlock()
		return snapshot, nil
	}

	return p.fetchFirstPageLocked(ctx, filter)
}

// LoadMore fetches the next page using the stored cursor and appends it to the
// existing list. On failure the list is preserved, the state returns to
// Loaded, and the error is surfaced separately from the list state.
func (p *Paginator) LoadMore(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	if p.state != StateLoaded || !p.hasMore {
		snapshot := p.snapshotLocked()
		p.mu.Unlock()
		return snapshot, ErrNotLoaded
	}

	generation := p.generation
	cursor := p.cursor
	filter := p.filter
	p.state = StateLoadingMore
	p.mu.Unlock()

	resp, err := p.fetcher.FetchExplore(ctx, p.limit, cursor, filter)

	p.mu.Lock()
	defer p.mu.Unlock()

	if generation != p.generation {
		return p.snapshotLocked(), ErrSuperseded
	}

	if err != nil {
		p.state = StateLoaded
		return p.snapshotLocked(), fmt.Errorf("load more failed: %w", err)
	}

	p.items = append(p.items, resp.Items...)
	p.cursor = resp.NextCursor
	p.hasMore = resp.HasMore && resp.NextCursor != ""
	p.state = StateLoaded

	return p.snapshotLocked(), nil
}

// Snapshot returns the current visible state without side effects.
func (p *Paginator) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// fetchFirstPageLocked is entered holding the lock and releases it around the
// network call. The generation taken before the fetch is compared after it: a
// mismatch means a newer request superseded this one and its result is
// discarded.
func (p *Paginator) fetchFirstPageLocked(ctx context.Context, filter string) (Snapshot, error) {
	p.generation++
	generation := p.generation
	p.filter = filter
	p.state = StateLoading
	p.mu.Unlock()

	resp, err := p.fetcher.FetchExplore(ctx, p.limit, "", filter)

	p.mu.Lock()
	defer p.mu.Unlock()

	if generation != p.generation {
		return p.snapshotLocked(), ErrSuperseded
	}

	if err != nil {
		p.state = StateError
		return p.snapshotLocked(), fmt.Errorf("first page load failed: %w", err)
	}

	p.items = append([]aggregator.Item(nil), resp.Items...)
	p.cursor = resp.NextCursor
	p.hasMore = resp.HasMore && resp.NextCursor != ""
	p.state = StateLoaded

	p.cache.Set(resp.Items, p.cursor, p.hasMore, filter)

	return p.snapshotLocked(), nil
}

func (p *Paginator) adoptEntryLocked(entry *CacheEntry) {
	p.items = append([]aggregator.Item(nil), entry.Items...)
	p.cursor = entry.Cursor
	p.hasMore = entry.HasMore
	p.state = StateLoaded
}

func (p *Paginator) snapshotLocked() Snapshot {
	return Snapshot{
		State:   p.state,
		Filter:  p.filter,
		Items:   append([]aggregator.Item(nil), p.items...),
		Cursor:  p.cursor,
		HasMore: p.hasMore,
	}
}
