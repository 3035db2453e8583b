package savestate

import (
	"errors"
	"fmt"
	"sync"

	"github.com/appkivawa/pulseboard/app/compose"
	"github.com/appkivawa/pulseboard/app/database"
)

// ErrPersist marks a failed save/unsave round-trip. It is scoped to the single
// item it concerns; the rest of the feed state stays valid and the user may
// retry.
var ErrPersist = errors.New("failed to persist saved state")

// SyncStatus is the server-confirmation half of a toggle's two-phase state.
// The local flag is authoritative for rendering the moment the toggle is
// issued; the status tells the caller whether the store has caught up.
type SyncStatus string

const (
	SyncPending   SyncStatus = "pending"
	SyncConfirmed SyncStatus = "confirmed"
	SyncFailed    SyncStatus = "failed"
)

// ToggleResult reports the outcome of one toggle request. Applied is false
// when the request was dropped because a toggle for the same item was already
// in flight.
type ToggleResult struct {
	Saved   bool
	Status  SyncStatus
	Applied bool
}

// Manager holds each user's saved-id set, annotates composed items with saved
// state, and runs optimistic save/unsave toggles against the store. Membership
// is tested against the durable id space: an item still carrying an ephemeral
// upstream id reads as unsaved until a save action reconciles it.
type Manager struct {
	savedRepo database.SavedItemRepository

	mu     sync.Mutex
	saved  map[string]map[string]struct{}
	loaded map[string]bool
	busy   map[string]struct{}
	status map[string]SyncStatus
}

func NewManager(savedRepo database.SavedItemRepository) *Manager {
	return &Manager{
		savedRepo: savedRepo,
		saved:     make(map[string]map[string]struct{}),
		loaded:    make(map[string]bool),
		busy:      make(map[string]struct{}),
		status:    make(map[string]SyncStatus),
	}
}

// Load populates the user's saved-id set from the store. The set is fetched
// once and then kept current by toggles; repeated calls are cheap.
func (m *Manager) Load(userID string) error {
	m.mu.Lock()
	alreadyLoaded := m.loaded[userID]
	m.mu.Unlock()

	if alreadyLoaded {
		return nil
	}

	ids, err := m.savedRepo.ListSavedContentIDs(userID)
	if err != nil {
		return fmt.Errorf("failed to load saved ids: %w", err)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	m.mu.Lock()
	m.saved[userID] = set
	m.loaded[userID] = true
	m.mu.Unlock()

	return nil
}

func (m *Manager) IsSaved(userID, contentID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.saved[userID][contentID]
	return ok
}

// SavedCount returns the size of the user's in-memory saved-id set.
func (m *Manager) SavedCount(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved[userID])
}

// MergeSections annotates every item of every section with the user's saved
// state. Sections are modified in place.
func (m *Manager) MergeSections(userID string, sections []compose.Section) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := m.saved[userID]
	for i := range sections {
		for j := range sections[i].Items {
			_, ok := set[sections[i].Items[j].ID]
			sections[i].Items[j].IsSaved = ok
		}
	}
}

// MergeItems annotates a flat item list, e.g. one explore page.
func (m *Manager) MergeItems(userID string, items []compose.FeedItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := m.saved[userID]
	for i := range items {
		_, ok := set[items[i].ID]
		items[i].IsSaved = ok
	}
}

// Toggle flips the user's saved state for a durable content id. The local set
// is updated immediately; the persist call follows. On persist failure the
// local state is NOT rolled back: the failure is reported through the result
// status and the returned error, and the user may retry. Only one toggle per
// (user, content id) may be in flight; a toggle issued while one is pending is
// a no-op.
func (m *Manager) Toggle(userID, contentID string) (ToggleResult, error) {
	key := userID + "\x00" + contentID

	m.mu.Lock()
	if _, inFlight := m.busy[key]; inFlight {
		_, saved := m.saved[userID][contentID]
		status := m.status[key]
		m.mu.Unlock()
		return ToggleResult{Saved: saved, Status: status, Applied: false}, nil
	}
	m.busy[key] = struct{}{}
	m.status[key] = SyncPending

	set := m.saved[userID]
	if set == nil {
		set = make(map[string]struct{})
		m.saved[userID] = set
	}

	_, wasSaved := set[contentID]
	nowSaved := !wasSaved
	if nowSaved {
		set[contentID] = struct{}{}
	} else {
		delete(set, contentID)
	}
	m.mu.Unlock()

	var persistErr error
	if nowSaved {
		persistErr = m.savedRepo.UpsertSavedItem(userID, contentID)
	} else {
		persistErr = m.savedRepo.DeleteSavedItem(userID, contentID)
	}

	m.mu.Lock()
	delete(m.busy, key)
	if persistErr != nil {
		m.status[key] = SyncFailed
	} else {
		m.status[key] = SyncConfirmed
	}
	status := m.status[key]
	m.mu.Unlock()

	if persistErr != nil {
		return ToggleResult{Saved: nowSaved, Status: status, Applied: true},
			fmt.Errorf("%w: %v", ErrPersist, persistErr)
	}

	return ToggleResult{Saved: nowSaved, Status: status, Applied: true}, nil
}

// Status reports the server-confirmation state of the most recent toggle for
// an item, if any.
func (m *Manager) Status(userID, contentID string) (SyncStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status, ok := m.status[userID+"\x00"+contentID]
	return status, ok
}
