package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/homescout/api/internal/filter"
	"github.com/stwalsh4118/homescout/api/internal/logger"
	"github.com/stwalsh4118/homescout/api/internal/models"
	"github.com/stwalsh4118/homescout/api/internal/repository"
)

// Service-level errors
var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrInvalidProperty  = errors.New("invalid property")
)

// FilterResult is the visible subset of listings for one filter state.
type FilterResult struct {
	Properties       []models.Property
	Criteria         models.Criteria
	HasActiveFilters bool
}

// PropertyService defines the business operations on listings.
type PropertyService interface {
	// List returns every listing in storage order.
	List(ctx context.Context) ([]models.Property, error)

	// Get returns a single listing.
	// Returns ErrPropertyNotFound if it does not exist.
	Get(ctx context.Context, id int) (*models.Property, error)

	// Search returns listings matching term; see PropertyRepository.Search.
	Search(ctx context.Context, term string) ([]models.Property, error)

	// Filter parses the raw filter inputs and returns the matching listings.
	// Unparseable numeric inputs yield a filter.FieldErrors error, which
	// matches filter.ErrInvalidFilter.
	Filter(ctx context.Context, state filter.State) (*FilterResult, error)

	// Create validates the input and stores a new listing.
	// Validation failures wrap ErrInvalidProperty and validator.ValidationErrors.
	Create(ctx context.Context, input models.PropertyInput) (*models.Property, error)

	// Update validates the patch and merges it into the listing.
	Update(ctx context.Context, id int, patch models.PropertyPatch) (*models.Property, error)

	// Delete removes a listing and returns it.
	Delete(ctx context.Context, id int) (*models.Property, error)

	// Ping reports whether the listing store is reachable.
	Ping(ctx context.Context) error
}

type propertyService struct {
	repo     repository.PropertyRepository
	validate *validator.Validate
	log      *logger.Logger
}

// NewPropertyService creates a new instance of PropertyService.
func NewPropertyService(repo repository.PropertyRepository, validate *validator.Validate, log *logger.Logger) PropertyService {
	return &propertyService{
		repo:     repo,
		validate: validate,
		log:      log.WithComponent("property_service"),
	}
}

func (s *propertyService) List(ctx context.Context) ([]models.Property, error) {
	properties, err := s.repo.ListAll(ctx)
	if err != nil {
		s.log.Error("Failed to list properties", err, nil)
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

func (s *propertyService) Get(ctx context.Context, id int) (*models.Property, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err, "get property", id)
	}
	return p, nil
}

func (s *propertyService) Search(ctx context.Context, term string) ([]models.Property, error) {
	properties, err := s.repo.Search(ctx, term)
	if err != nil {
		s.log.Error("Failed to search properties", err, map[string]interface{}{
			"term": term,
		})
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}

	s.log.Debug("Property search completed", map[string]interface{}{
		"term":  term,
		"count": len(properties),
	})
	return properties, nil
}

func (s *propertyService) Filter(ctx context.Context, state filter.State) (*FilterResult, error) {
	criteria, fieldErrs := filter.Parse(state)
	if fieldErrs != nil {
		s.log.Warn("Rejected filter input", map[string]interface{}{
			"fields": fieldErrs.Details(),
		})
		return nil, fieldErrs
	}

	properties, err := s.repo.FilterByCriteria(ctx, criteria)
	if err != nil {
		s.log.Error("Failed to filter properties", err, nil)
		return nil, fmt.Errorf("failed to filter properties: %w", err)
	}

	s.log.Debug("Filter applied", map[string]interface{}{
		"active":  state.HasActive(),
		"matches": len(properties),
	})

	return &FilterResult{
		Properties:       properties,
		Criteria:         criteria,
		HasActiveFilters: state.HasActive(),
	}, nil
}

func (s *propertyService) Create(ctx context.Context, input models.PropertyInput) (*models.Property, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, invalidProperty(err)
	}

	created, err := s.repo.Create(ctx, input.ToProperty())
	if err != nil {
		s.log.Error("Failed to create property", err, map[string]interface{}{
			"title": input.Title,
		})
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	s.log.Info("Property created", map[string]interface{}{
		"property_id": created.ID,
		"title":       created.Title,
	})
	return created, nil
}

func (s *propertyService) Update(ctx context.Context, id int, patch models.PropertyPatch) (*models.Property, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, invalidProperty(err)
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.mapNotFound(err, "update property", id)
	}

	s.log.Info("Property updated", map[string]interface{}{
		"property_id": id,
	})
	return updated, nil
}

func (s *propertyService) Delete(ctx context.Context, id int) (*models.Property, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err, "delete property", id)
	}

	s.log.Info("Property deleted", map[string]interface{}{
		"property_id": id,
	})
	return removed, nil
}

func (s *propertyService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// mapNotFound turns repository.ErrNotFound into ErrPropertyNotFound and logs
// anything else as a store failure.
func (s *propertyService) mapNotFound(err error, op string, id int) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %d", ErrPropertyNotFound, id)
	}
	s.log.Error("Failed to "+op, err, map[string]interface{}{
		"property_id": id,
	})
	return fmt.Errorf("failed to %s: %w", op, err)
}

// invalidProperty wraps a validator error so callers can match both
// ErrInvalidProperty and validator.ValidationErrors.
func invalidProperty(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidProperty, err)
}
