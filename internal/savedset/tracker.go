// Package savedset keeps the shared view of which properties are saved.
//
// The repository stays authoritative. The Tracker mirrors the saved property
// ids so every reader (list, grid, detail, header badge) sees the same state
// without re-fetching, and it guards against overlapping toggles of the same
// property. Hold and HoldAll order store writes with the updates that mirror
// them, so the set applies changes in the same order the store committed them.
package savedset

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/stwalsh4118/homescout/api/internal/models"
	"golang.org/x/sync/singleflight"
)

// ErrToggleInFlight is returned by Begin while another toggle of the same
// property has not finished.
var ErrToggleInFlight = errors.New("toggle already in progress")

// holdStripes is the number of write locks property ids are spread over.
const holdStripes = 32

// Source lists the authoritative saved records.
type Source interface {
	List(ctx context.Context) ([]models.SavedProperty, error)
}

// Snapshot is the state of the set at one point in time.
type Snapshot struct {
	IDs   []int `json:"propertyIds"`
	Count int   `json:"count"`
}

// Tracker is safe for concurrent use.
type Tracker struct {
	source Source
	group  singleflight.Group

	// writes is held shared by Hold and exclusively by HoldAll and Refresh
	writes  sync.RWMutex
	stripes [holdStripes]sync.Mutex

	mu       sync.RWMutex
	ids      map[int]struct{}
	inFlight map[int]struct{}
	loaded   bool
	subs     map[int]chan Snapshot
	nextSub  int
}

// New creates an empty tracker reading from source. Call Refresh to load it.
func New(source Source) *Tracker {
	return &Tracker{
		source:   source,
		ids:      make(map[int]struct{}),
		inFlight: make(map[int]struct{}),
		subs:     make(map[int]chan Snapshot),
	}
}

// Refresh reloads the set from the source. Concurrent calls share one fetch,
// which is not cancelled when the first caller's ctx is. The fetch excludes
// every held write. On error the current set is kept.
func (t *Tracker) Refresh(ctx context.Context) (Snapshot, error) {
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := t.group.Do("refresh", func() (interface{}, error) {
		release := t.HoldAll()
		defer release()

		saved, err := t.source.List(fetchCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh saved set: %w", err)
		}

		t.mu.Lock()
		defer t.mu.Unlock()
		t.ids = make(map[int]struct{}, len(saved))
		for _, s := range saved {
			t.ids[s.PropertyID] = struct{}{}
		}
		t.loaded = true
		return t.changedLocked(), nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

// Hold serializes writes touching propertyID. The caller commits to the store
// and calls Apply before invoking the returned release. Writes to other
// properties may proceed concurrently.
func (t *Tracker) Hold(propertyID int) (release func()) {
	t.writes.RLock()
	stripe := &t.stripes[uint(propertyID)%holdStripes]
	stripe.Lock()
	return func() {
		stripe.Unlock()
		t.writes.RUnlock()
	}
}

// HoldAll excludes every other write, as needed around clearing the store.
func (t *Tracker) HoldAll() (release func()) {
	t.writes.Lock()
	return t.writes.Unlock
}

// Loaded reports whether a Refresh has succeeded at least once.
func (t *Tracker) Loaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loaded
}

// Begin marks a toggle of propertyID as outstanding. It fails with
// ErrToggleInFlight if one already is. Every successful Begin must be paired
// with End.
func (t *Tracker) Begin(propertyID int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, busy := t.inFlight[propertyID]; busy {
		return fmt.Errorf("property %d: %w", propertyID, ErrToggleInFlight)
	}
	t.inFlight[propertyID] = struct{}{}
	return nil
}

// End clears the outstanding mark set by Begin.
func (t *Tracker) End(propertyID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inFlight, propertyID)
}

// InFlight reports whether a toggle of propertyID is outstanding.
func (t *Tracker) InFlight(propertyID int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, busy := t.inFlight[propertyID]
	return busy
}

// Apply records the outcome of a successful toggle, add or remove.
func (t *Tracker) Apply(result models.ToggleResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := result.Property.PropertyID
	switch result.Action {
	case models.ToggleAdded:
		if _, ok := t.ids[id]; ok {
			return
		}
		t.ids[id] = struct{}{}
	case models.ToggleRemoved:
		if _, ok := t.ids[id]; !ok {
			return
		}
		delete(t.ids, id)
	default:
		return
	}
	t.changedLocked()
}

// Reset empties the set, as after clearing the saved list.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ids = make(map[int]struct{})
	t.loaded = true
	t.changedLocked()
}

// IsSaved reports whether propertyID is in the set.
func (t *Tracker) IsSaved(propertyID int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.ids[propertyID]
	return ok
}

// Count returns the number of saved properties.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.ids)
}

// IDs returns the saved property ids in ascending order.
func (t *Tracker) IDs() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.idsLocked()
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := t.idsLocked()
	return Snapshot{IDs: ids, Count: len(ids)}
}

// Subscribe returns a channel receiving a snapshot after every change, and a
// token for Unsubscribe. A subscriber that falls behind only sees the latest
// snapshot.
func (t *Tracker) Subscribe() (int, <-chan Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextSub
	t.nextSub++
	ch := make(chan Snapshot, 1)
	t.subs[id] = ch
	return id, ch
}

// Unsubscribe stops delivery and closes the subscriber's channel.
func (t *Tracker) Unsubscribe(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ch, ok := t.subs[id]; ok {
		delete(t.subs, id)
		close(ch)
	}
}

func (t *Tracker) idsLocked() []int {
	ids := make([]int, 0, len(t.ids))
	for id := range t.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// changedLocked publishes the new snapshot.
// Caller must hold the write lock.
func (t *Tracker) changedLocked() Snapshot {
	ids := t.idsLocked()
	snap := Snapshot{IDs: ids, Count: len(ids)}
	for _, ch := range t.subs {
		select {
		case <-ch:
		default:
		}
		ch <- Snapshot{IDs: slices.Clone(ids), Count: len(ids)}
	}
	return snap
}
