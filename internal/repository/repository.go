package repository

import (
	"context"
	"errors"

	"github.com/stwalsh4118/homescout/api/internal/models"
)

// Repository-level errors. Implementations wrap these with context; match
// them with errors.Is.
var (
	ErrNotFound     = errors.New("record not found")
	ErrAlreadySaved = errors.New("property already saved")
)

// PropertyRepository defines the data access operations for listings.
// Every returned record is a copy; mutating it never affects the store.
type PropertyRepository interface {
	// ListAll returns every property in storage order.
	ListAll(ctx context.Context) ([]models.Property, error)

	// GetByID returns the property with the given id.
	// Returns ErrNotFound if no such property exists.
	GetByID(ctx context.Context, id int) (*models.Property, error)

	// Search matches term, ignoring case, against title, address, city,
	// state and property type, and as a plain substring against the zip
	// code. Any field matching is enough. An empty term returns everything.
	Search(ctx context.Context, term string) ([]models.Property, error)

	// FilterByCriteria returns the properties satisfying every set
	// constraint. Empty criteria return everything.
	FilterByCriteria(ctx context.Context, criteria models.Criteria) ([]models.Property, error)

	// Create assigns the next id (max existing id + 1), defaults the listing
	// date to today and stores the property.
	Create(ctx context.Context, p models.Property) (*models.Property, error)

	// Update merges patch over the stored property.
	// Returns ErrNotFound if no such property exists.
	Update(ctx context.Context, id int, patch models.PropertyPatch) (*models.Property, error)

	// Delete removes the property and returns the removed record.
	// Returns ErrNotFound if no such property exists.
	Delete(ctx context.Context, id int) (*models.Property, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// SavedRepository defines the data access operations for the saved list.
// At most one saved record exists per property id.
type SavedRepository interface {
	// List returns every saved record in storage order.
	List(ctx context.Context) ([]models.SavedProperty, error)

	// GetByID returns the saved record with the given record id.
	// Returns ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id int) (*models.SavedProperty, error)

	// Add saves propertyID with the given notes.
	// Returns ErrAlreadySaved if a record for propertyID exists.
	Add(ctx context.Context, propertyID int, notes string) (*models.SavedProperty, error)

	// Remove deletes the record for propertyID and returns it.
	// Returns ErrNotFound if propertyID is not saved.
	Remove(ctx context.Context, propertyID int) (*models.SavedProperty, error)

	// Toggle removes the record for propertyID if one exists, otherwise
	// creates one with empty notes. The decision and the write are atomic.
	Toggle(ctx context.Context, propertyID int) (*models.ToggleResult, error)

	// UpdateNotes replaces the notes of the saved record with the given id.
	// Returns ErrNotFound if it does not exist.
	UpdateNotes(ctx context.Context, id int, notes string) (*models.SavedProperty, error)

	// Clear removes every saved record and returns what was removed.
	Clear(ctx context.Context) ([]models.SavedProperty, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
