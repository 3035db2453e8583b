package explore

import (
	"sync"
)

// Registry hands out one paginator per user stream. All paginators share the
// single global first-page cache.
type Registry struct {
	fetcher Fetcher
	cache   *Cache
	limit   int

	mu         sync.Mutex
	paginators map[string]*Paginator
}

func NewRegistry(fetcher Fetcher, cache *Cache, limit int) *Registry {
	return &Registry{
		fetcher:    fetcher,
		cache:      cache,
		limit:      limit,
		paginators: make(map[string]*Paginator),
	}
}

func (r *Registry) Get(userID string) *Paginator {
	r.mu.Lock()
	defer r.mu.Unlock()

	paginator, ok := r.paginators[userID]
	if !ok {
		paginator = NewPaginator(r.fetcher, r.cache, r.limit)
		r.paginators[userID] = paginator
	}
	return paginator
}

// Cache exposes the shared first-page cache, e.g. for background warming.
func (r *Registry) Cache() *Cache {
	return r.cache
}
