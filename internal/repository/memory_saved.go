package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/stwalsh4118/homescout/api/internal/latency"
	"github.com/stwalsh4118/homescout/api/internal/models"
)

type memorySavedRepository struct {
	latency latency.Simulator
	items   []models.SavedProperty
	mu      sync.Mutex
}

// NewMemorySavedRepository creates an in-process SavedRepository seeded with
// the given records. Seed records sharing a property id are collapsed to the
// first occurrence so the one-record-per-property rule holds from the start.
func NewMemorySavedRepository(seed []models.SavedProperty, sim latency.Simulator) SavedRepository {
	items := make([]models.SavedProperty, 0, len(seed))
	seen := make(map[int]struct{}, len(seed))
	for _, s := range seed {
		if _, dup := seen[s.PropertyID]; dup {
			continue
		}
		seen[s.PropertyID] = struct{}{}
		items = append(items, s)
	}
	return &memorySavedRepository{
		latency: sim,
		items:   items,
	}
}

func (r *memorySavedRepository) List(ctx context.Context) ([]models.SavedProperty, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.SavedProperty, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *memorySavedRepository) GetByID(ctx context.Context, id int) (*models.SavedProperty, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.items {
		if s.ID == id {
			out := s
			return &out, nil
		}
	}
	return nil, fmt.Errorf("saved record %d: %w", id, ErrNotFound)
}

func (r *memorySavedRepository) Add(ctx context.Context, propertyID int, notes string) (*models.SavedProperty, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOfProperty(propertyID) >= 0 {
		return nil, fmt.Errorf("property %d: %w", propertyID, ErrAlreadySaved)
	}
	saved := r.insert(propertyID, notes)
	return &saved, nil
}

func (r *memorySavedRepository) Remove(ctx context.Context, propertyID int) (*models.SavedProperty, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOfProperty(propertyID)
	if idx < 0 {
		return nil, fmt.Errorf("saved property %d: %w", propertyID, ErrNotFound)
	}
	removed := r.removeAt(idx)
	return &removed, nil
}

func (r *memorySavedRepository) Toggle(ctx context.Context, propertyID int) (*models.ToggleResult, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if idx := r.indexOfProperty(propertyID); idx >= 0 {
		return &models.ToggleResult{
			Action:   models.ToggleRemoved,
			Property: r.removeAt(idx),
		}, nil
	}
	return &models.ToggleResult{
		Action:   models.ToggleAdded,
		Property: r.insert(propertyID, ""),
	}, nil
}

func (r *memorySavedRepository) UpdateNotes(ctx context.Context, id int, notes string) (*models.SavedProperty, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Notes = notes
			out := r.items[i]
			return &out, nil
		}
	}
	return nil, fmt.Errorf("saved record %d: %w", id, ErrNotFound)
}

func (r *memorySavedRepository) Clear(ctx context.Context) ([]models.SavedProperty, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cleared := r.items
	r.items = make([]models.SavedProperty, 0)
	return cleared, nil
}

func (r *memorySavedRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// The helpers below must be called with the lock held.

func (r *memorySavedRepository) indexOfProperty(propertyID int) int {
	for i, s := range r.items {
		if s.PropertyID == propertyID {
			return i
		}
	}
	return -1
}

func (r *memorySavedRepository) insert(propertyID int, notes string) models.SavedProperty {
	maxID := 0
	for _, s := range r.items {
		if s.ID > maxID {
			maxID = s.ID
		}
	}
	saved := models.SavedProperty{
		ID:         maxID + 1,
		PropertyID: propertyID,
		SavedDate:  models.Today(),
		Notes:      notes,
	}
	r.items = append(r.items, saved)
	return saved
}

func (r *memorySavedRepository) removeAt(idx int) models.SavedProperty {
	removed := r.items[idx]
	r.items = append(r.items[:idx], r.items[idx+1:]...)
	return removed
}
