package savestate

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/appkivawa/pulseboard/app/compose"
)

// fakeSavedRepo is an in-memory saved-items store. A non-nil gate channel
// blocks persist calls until released, which lets tests hold a toggle in
// flight.
type fakeSavedRepo struct {
	mu          sync.Mutex
	saved       map[string]map[string]struct{}
	listCalls   int
	upsertCalls int
	deleteCalls int
	failPersist bool
	gate        chan struct{}
}

func newFakeSavedRepo() *fakeSavedRepo {
	return &fakeSavedRepo{saved: map[string]map[string]struct{}{}}
}

func (f *fakeSavedRepo) waitGate() {
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeSavedRepo) UpsertSavedItem(userID, contentID string) error {
	f.mu.Lock()
	f.upsertCalls++
	f.mu.Unlock()
	f.waitGate()
	if f.failPersist {
		return errors.New("store down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved[userID] == nil {
		f.saved[userID] = make(map[string]struct{})
	}
	f.saved[userID][contentID] = struct{}{}
	return nil
}

func (f *fakeSavedRepo) DeleteSavedItem(userID, contentID string) error {
	f.mu.Lock()
	f.deleteCalls++
	f.mu.Unlock()
	f.waitGate()
	if f.failPersist {
		return errors.New("store down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved[userID], contentID)
	return nil
}

func (f *fakeSavedRepo) ListSavedContentIDs(userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var ids []string
	for id := range f.saved[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeSavedRepo) GetSavedItemCount() (int, error) {
	return 0, nil
}

func TestManager_Load_FetchesOncePerUser(t *testing.T) {
	repo := newFakeSavedRepo()
	repo.saved["u1"] = map[string]struct{}{"c1": {}, "c2": {}}
	manager := NewManager(repo)

	if err := manager.Load("u1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := manager.Load("u1"); err != nil {
		t.Fatalf("Second load failed: %v", err)
	}

	if repo.listCalls != 1 {
		t.Errorf("Expected 1 list call, got %d", repo.listCalls)
	}
	if !manager.IsSaved("u1", "c1") || !manager.IsSaved("u1", "c2") {
		t.Error("Expected both saved ids in the set")
	}
	if manager.IsSaved("u1", "c3") {
		t.Error("Unexpected id in saved set")
	}
}

func TestManager_MergeSections(t *testing.T) {
	repo := newFakeSavedRepo()
	repo.saved["u1"] = map[string]struct{}{"durable-1": {}}
	manager := NewManager(repo)
	if err := manager.Load("u1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	sections := []compose.Section{
		{
			ID: "fresh",
			Items: []compose.FeedItem{
				{ID: "durable-1", Title: "Saved one"},
				{ID: "feed_items:ephemeral", Title: "Not reconciled"},
			},
		},
	}

	manager.MergeSections("u1", sections)

	if !sections[0].Items[0].IsSaved {
		t.Error("Expected durable-1 to be marked saved")
	}
	// Ephemeral ids are outside the durable id space and read as unsaved
	if sections[0].Items[1].IsSaved {
		t.Error("Ephemeral id should not be marked saved")
	}
}

func TestManager_Toggle_SaveThenUnsave(t *testing.T) {
	repo := newFakeSavedRepo()
	manager := NewManager(repo)
	if err := manager.Load("u1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	result, err := manager.Toggle("u1", "c1")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !result.Applied || !result.Saved || result.Status != SyncConfirmed {
		t.Errorf("Unexpected save result: %+v", result)
	}
	if repo.upsertCalls != 1 {
		t.Errorf("Expected 1 upsert call, got %d", repo.upsertCalls)
	}

	result, err = manager.Toggle("u1", "c1")
	if err != nil {
		t.Fatalf("Toggle back failed: %v", err)
	}
	if result.Saved {
		t.Error("Expected unsaved after second toggle")
	}
	if repo.deleteCalls != 1 {
		t.Errorf("Expected 1 delete call, got %d", repo.deleteCalls)
	}
	if manager.IsSaved("u1", "c1") {
		t.Error("Expected item removed from saved set")
	}
}

func TestManager_Toggle_PersistFailureKeepsLocalState(t *testing.T) {
	repo := newFakeSavedRepo()
	repo.failPersist = true
	manager := NewManager(repo)
	if err := manager.Load("u1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	result, err := manager.Toggle("u1", "c1")
	if err == nil {
		t.Fatal("Expected persist error")
	}
	if !errors.Is(err, ErrPersist) {
		t.Errorf("Expected ErrPersist, got %v", err)
	}

	// No automatic rollback: the optimistic flip stands, the failure is
	// reported through the sync status so retry is a first-class state.
	if !result.Saved {
		t.Error("Expected local state to stay flipped")
	}
	if result.Status != SyncFailed {
		t.Errorf("Expected SyncFailed, got %s", result.Status)
	}
	if !manager.IsSaved("u1", "c1") {
		t.Error("Expected item to remain in local saved set")
	}

	status, ok := manager.Status("u1", "c1")
	if !ok || status != SyncFailed {
		t.Errorf("Expected queryable failed status, got %s (%v)", status, ok)
	}
}

func TestManager_Toggle_BusyLockDropsConcurrentToggle(t *testing.T) {
	repo := newFakeSavedRepo()
	repo.gate = make(chan struct{})
	manager := NewManager(repo)
	if err := manager.Load("u1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	firstDone := make(chan ToggleResult, 1)
	go func() {
		result, _ := manager.Toggle("u1", "c1")
		firstDone <- result
	}()

	// Wait for the first toggle to reach the store and block there
	for {
		repo.mu.Lock()
		started := repo.upsertCalls == 1
		repo.mu.Unlock()
		if started {
			break
		}
		time.Sleep(time.Millisecond)
	}

	second, err := manager.Toggle("u1", "c1")
	if err != nil {
		t.Fatalf("Second toggle errored: %v", err)
	}
	if second.Applied {
		t.Error("Second toggle should have been dropped while first is in flight")
	}
	if !second.Saved {
		t.Error("Second toggle should observe the optimistic state")
	}

	close(repo.gate)
	first := <-firstDone

	if !first.Applied || first.Status != SyncConfirmed {
		t.Errorf("Unexpected first toggle result: %+v", first)
	}
	if repo.upsertCalls != 1 {
		t.Errorf("Expected exactly 1 persist call, got %d", repo.upsertCalls)
	}
}

func TestManager_Toggle_DistinctItemsNotBlocked(t *testing.T) {
	repo := newFakeSavedRepo()
	manager := NewManager(repo)
	if err := manager.Load("u1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := manager.Toggle("u1", "c1"); err != nil {
		t.Fatalf("Toggle c1 failed: %v", err)
	}
	result, err := manager.Toggle("u1", "c2")
	if err != nil {
		t.Fatalf("Toggle c2 failed: %v", err)
	}
	if !result.Applied {
		t.Error("Toggle for a different item should not be dropped")
	}
	if manager.SavedCount("u1") != 2 {
		t.Errorf("Expected 2 saved items, got %d", manager.SavedCount("u1"))
	}
}
