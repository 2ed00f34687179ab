package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/stwalsh4118/homescout/api/internal/filter"
	"github.com/stwalsh4118/homescout/api/internal/latency"
	"github.com/stwalsh4118/homescout/api/internal/models"
)

// memoryPropertyRepository keeps listings in a slice guarded by a single
// RWMutex. Records go in and come out as deep copies.
type memoryPropertyRepository struct {
	latency latency.Simulator
	items   []models.Property
	mu      sync.RWMutex
}

// NewMemoryPropertyRepository creates an in-process PropertyRepository seeded
// with copies of the given properties.
func NewMemoryPropertyRepository(seed []models.Property, sim latency.Simulator) PropertyRepository {
	items := make([]models.Property, 0, len(seed))
	for _, p := range seed {
		items = append(items, p.Clone())
	}
	return &memoryPropertyRepository{
		latency: sim,
		items:   items,
	}
}

func (r *memoryPropertyRepository) ListAll(ctx context.Context) ([]models.Property, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneAll(r.items), nil
}

func (r *memoryPropertyRepository) GetByID(ctx context.Context, id int) (*models.Property, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	p := r.items[idx].Clone()
	return &p, nil
}

func (r *memoryPropertyRepository) Search(ctx context.Context, term string) ([]models.Property, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if strings.TrimSpace(term) == "" {
		return cloneAll(r.items), nil
	}

	results := make([]models.Property, 0)
	for _, p := range r.items {
		if matchesSearch(p, term) {
			results = append(results, p.Clone())
		}
	}
	return results, nil
}

func (r *memoryPropertyRepository) FilterByCriteria(ctx context.Context, criteria models.Criteria) ([]models.Property, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return filter.Apply(r.items, criteria), nil
}

func (r *memoryPropertyRepository) Create(ctx context.Context, p models.Property) (*models.Property, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := p.Clone()
	stored.ID = r.nextID()
	if stored.ListingDate == "" {
		stored.ListingDate = models.Today()
	}
	if stored.Status == "" {
		stored.Status = models.StatusForSale
	}
	r.items = append(r.items, stored)

	out := stored.Clone()
	return &out, nil
}

func (r *memoryPropertyRepository) Update(ctx context.Context, id int, patch models.PropertyPatch) (*models.Property, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	r.items[idx] = patch.Apply(r.items[idx])

	out := r.items[idx].Clone()
	return &out, nil
}

func (r *memoryPropertyRepository) Delete(ctx context.Context, id int) (*models.Property, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	removed := r.items[idx]
	r.items = append(r.items[:idx], r.items[idx+1:]...)

	return &removed, nil
}

func (r *memoryPropertyRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// indexOf must be called with the lock held.
func (r *memoryPropertyRepository) indexOf(id int) int {
	for i, p := range r.items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// nextID must be called with the write lock held. Ids are never reused while
// a higher id exists; deleting the max id frees it for the next create.
func (r *memoryPropertyRepository) nextID() int {
	maxID := 0
	for _, p := range r.items {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}

// matchesSearch implements the free-text search used by Search. Zip codes are
// compared without case folding.
func matchesSearch(p models.Property, term string) bool {
	lower := strings.ToLower(term)
	for _, field := range []string{p.Title, p.Address, p.City, p.State, p.PropertyType} {
		if strings.Contains(strings.ToLower(field), lower) {
			return true
		}
	}
	return strings.Contains(p.ZipCode, term)
}

func cloneAll(items []models.Property) []models.Property {
	out := make([]models.Property, 0, len(items))
	for _, p := range items {
		out = append(out, p.Clone())
	}
	return out
}
