package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/homescout/api/internal/logger"
	"github.com/stwalsh4118/homescout/api/internal/metrics"
	"github.com/stwalsh4118/homescout/api/internal/models"
	"github.com/stwalsh4118/homescout/api/internal/repository"
	"github.com/stwalsh4118/homescout/api/internal/savedset"
)

// MaxNotesLength bounds the free-text notes on a saved record.
const MaxNotesLength = 2000

// Saved-list errors
var (
	ErrSavedNotFound = errors.New("saved property not found")
	ErrAlreadySaved  = errors.New("property already saved")
	ErrInvalidNotes  = errors.New("invalid notes")
)

// SavedListing is a saved record joined with its listing. Property is nil
// when the listing no longer exists.
type SavedListing struct {
	models.SavedProperty
	Property *models.Property `json:"property"`
}

// SavedService defines the business operations on the saved list.
type SavedService interface {
	// List returns the saved records in storage order.
	List(ctx context.Context) ([]models.SavedProperty, error)

	// ListWithProperties returns the saved records joined with their listings.
	ListWithProperties(ctx context.Context) ([]SavedListing, error)

	// Get returns the saved record with the given record id.
	Get(ctx context.Context, id int) (*models.SavedProperty, error)

	// Toggle saves propertyID if it is not saved and unsaves it otherwise.
	// Returns an error matching savedset.ErrToggleInFlight while another
	// toggle of the same property is running.
	Toggle(ctx context.Context, propertyID int) (*models.ToggleResult, error)

	// Add saves propertyID. Returns ErrAlreadySaved if it is saved.
	Add(ctx context.Context, propertyID int, notes string) (*models.SavedProperty, error)

	// Remove unsaves propertyID. Returns ErrSavedNotFound if it is not saved.
	Remove(ctx context.Context, propertyID int) (*models.SavedProperty, error)

	// UpdateNotes replaces the notes on a saved record.
	UpdateNotes(ctx context.Context, id int, notes string) (*models.SavedProperty, error)

	// Clear removes every saved record and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	// Count returns the number of saved properties.
	Count(ctx context.Context) (int, error)

	// IsSaved reports whether propertyID is saved.
	IsSaved(ctx context.Context, propertyID int) (bool, error)

	// Ping reports whether the saved store is reachable.
	Ping(ctx context.Context) error
}

type savedService struct {
	saved      repository.SavedRepository
	properties repository.PropertyRepository
	tracker    *savedset.Tracker
	metrics    *metrics.Metrics
	validate   *validator.Validate
	log        *logger.Logger
}

// NewSavedService creates a new instance of SavedService. The tracker is
// shared with every other reader of the saved set; m may be nil.
func NewSavedService(
	saved repository.SavedRepository,
	properties repository.PropertyRepository,
	tracker *savedset.Tracker,
	m *metrics.Metrics,
	validate *validator.Validate,
	log *logger.Logger,
) SavedService {
	return &savedService{
		saved:      saved,
		properties: properties,
		tracker:    tracker,
		metrics:    m,
		validate:   validate,
		log:        log.WithComponent("saved_service"),
	}
}

func (s *savedService) List(ctx context.Context) ([]models.SavedProperty, error) {
	saved, err := s.saved.List(ctx)
	if err != nil {
		s.log.Error("Failed to list saved properties", err, nil)
		return nil, fmt.Errorf("failed to list saved properties: %w", err)
	}
	return saved, nil
}

func (s *savedService) ListWithProperties(ctx context.Context) ([]SavedListing, error) {
	saved, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	all, err := s.properties.ListAll(ctx)
	if err != nil {
		s.log.Error("Failed to load properties for saved list", err, nil)
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	byID := make(map[int]models.Property, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}

	listings := make([]SavedListing, 0, len(saved))
	dangling := 0
	for _, record := range saved {
		listing := SavedListing{SavedProperty: record}
		if p, ok := byID[record.PropertyID]; ok {
			listing.Property = &p
		} else {
			dangling++
		}
		listings = append(listings, listing)
	}

	if dangling > 0 {
		s.log.Debug("Saved list references missing properties", map[string]interface{}{
			"dangling": dangling,
		})
	}
	return listings, nil
}

func (s *savedService) Get(ctx context.Context, id int) (*models.SavedProperty, error) {
	record, err := s.saved.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(err, "get saved record", map[string]interface{}{"saved_id": id})
	}
	return record, nil
}

func (s *savedService) Toggle(ctx context.Context, propertyID int) (*models.ToggleResult, error) {
	if err := s.tracker.Begin(propertyID); err != nil {
		s.metrics.RecordToggleRejected()
		s.log.Warn("Toggle rejected while another is in flight", map[string]interface{}{
			"property_id": propertyID,
		})
		return nil, err
	}
	defer s.tracker.End(propertyID)

	release := s.tracker.Hold(propertyID)
	defer release()

	result, err := s.saved.Toggle(ctx, propertyID)
	if err != nil {
		// The shared set is left as it was
		s.log.Error("Failed to toggle saved property", err, map[string]interface{}{
			"property_id": propertyID,
		})
		return nil, fmt.Errorf("failed to toggle saved property: %w", err)
	}

	s.tracker.Apply(*result)
	s.metrics.RecordToggle(result.Action)
	s.metrics.SetSavedCount(s.tracker.Count())

	s.log.Info("Saved property toggled", map[string]interface{}{
		"property_id": propertyID,
		"action":      string(result.Action),
	})
	return result, nil
}

func (s *savedService) Add(ctx context.Context, propertyID int, notes string) (*models.SavedProperty, error) {
	if err := s.validateNotes(notes); err != nil {
		return nil, err
	}

	release := s.tracker.Hold(propertyID)
	defer release()

	record, err := s.saved.Add(ctx, propertyID, notes)
	if err != nil {
		return nil, s.mapErr(err, "save property", map[string]interface{}{"property_id": propertyID})
	}

	s.tracker.Apply(models.ToggleResult{Action: models.ToggleAdded, Property: *record})
	s.metrics.SetSavedCount(s.tracker.Count())

	s.log.Info("Property saved", map[string]interface{}{
		"property_id": propertyID,
		"saved_id":    record.ID,
	})
	return record, nil
}

func (s *savedService) Remove(ctx context.Context, propertyID int) (*models.SavedProperty, error) {
	release := s.tracker.Hold(propertyID)
	defer release()

	record, err := s.saved.Remove(ctx, propertyID)
	if err != nil {
		return nil, s.mapErr(err, "remove saved property", map[string]interface{}{"property_id": propertyID})
	}

	s.tracker.Apply(models.ToggleResult{Action: models.ToggleRemoved, Property: *record})
	s.metrics.SetSavedCount(s.tracker.Count())

	s.log.Info("Saved property removed", map[string]interface{}{
		"property_id": propertyID,
	})
	return record, nil
}

func (s *savedService) UpdateNotes(ctx context.Context, id int, notes string) (*models.SavedProperty, error) {
	if err := s.validateNotes(notes); err != nil {
		return nil, err
	}

	record, err := s.saved.UpdateNotes(ctx, id, notes)
	if err != nil {
		return nil, s.mapErr(err, "update saved notes", map[string]interface{}{"saved_id": id})
	}
	return record, nil
}

func (s *savedService) Clear(ctx context.Context) (int, error) {
	release := s.tracker.HoldAll()
	defer release()

	removed, err := s.saved.Clear(ctx)
	if err != nil {
		s.log.Error("Failed to clear saved properties", err, nil)
		return 0, fmt.Errorf("failed to clear saved properties: %w", err)
	}

	s.tracker.Reset()
	s.metrics.SetSavedCount(0)

	s.log.Info("Saved properties cleared", map[string]interface{}{
		"removed": len(removed),
	})
	return len(removed), nil
}

func (s *savedService) Count(ctx context.Context) (int, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	return s.tracker.Count(), nil
}

func (s *savedService) IsSaved(ctx context.Context, propertyID int) (bool, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	return s.tracker.IsSaved(propertyID), nil
}

func (s *savedService) Ping(ctx context.Context) error {
	return s.saved.Ping(ctx)
}

// ensureLoaded fills the shared set from the store on first use.
func (s *savedService) ensureLoaded(ctx context.Context) error {
	if s.tracker.Loaded() {
		return nil
	}
	snap, err := s.tracker.Refresh(ctx)
	if err != nil {
		s.log.Error("Failed to load saved set", err, nil)
		return err
	}
	s.metrics.SetSavedCount(snap.Count)
	return nil
}

func (s *savedService) validateNotes(notes string) error {
	if err := s.validate.Var(notes, fmt.Sprintf("max=%d", MaxNotesLength)); err != nil {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidNotes, MaxNotesLength)
	}
	return nil
}

// mapErr translates repository errors into service errors and logs
// unexpected failures.
func (s *savedService) mapErr(err error, op string, fields map[string]interface{}) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrSavedNotFound, err)
	case errors.Is(err, repository.ErrAlreadySaved):
		return fmt.Errorf("%w: %v", ErrAlreadySaved, err)
	default:
		s.log.Error("Failed to "+op, err, fields)
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
