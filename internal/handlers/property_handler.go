package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/stwalsh4118/homescout/api/internal/errors"
	"github.com/stwalsh4118/homescout/api/internal/filter"
	"github.com/stwalsh4118/homescout/api/internal/format"
	"github.com/stwalsh4118/homescout/api/internal/middleware"
	"github.com/stwalsh4118/homescout/api/internal/models"
	"github.com/stwalsh4118/homescout/api/internal/services"
)

// PropertyHandler handles listing HTTP requests.
type PropertyHandler struct {
	service services.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(service services.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		service: service,
	}
}

// PropertyData is a listing plus the display labels the listing pages show.
type PropertyData struct {
	models.Property
	PriceLabel       string `json:"priceLabel"`
	SquareFeetLabel  string `json:"squareFeetLabel"`
	ListingDateLabel string `json:"listingDateLabel"`
	BedsBathsLabel   string `json:"bedsBathsLabel"`
	StatusLabel      string `json:"statusLabel"`
	Slug             string `json:"slug"`
}

// PropertyResponse wraps a single listing.
type PropertyResponse struct {
	Property PropertyData `json:"property"`
}

// PropertyListResponse is returned by the filtered listing endpoint.
// Search mirrors the location filter so a cleared filter also clears the
// search box.
type PropertyListResponse struct {
	Properties       []PropertyData `json:"properties"`
	Filters          filter.State   `json:"filters"`
	Search           string         `json:"search"`
	Count            int            `json:"count"`
	HasActiveFilters bool           `json:"hasActiveFilters"`
}

// SearchResponse is returned by the free-text search endpoint.
type SearchResponse struct {
	Properties []PropertyData `json:"properties"`
	Query      string         `json:"query"`
	Count      int            `json:"count"`
}

// List handles GET /api/v1/properties.
// Query parameters are the filter fields; none set returns every listing.
func (h *PropertyHandler) List(c *gin.Context) {
	var state filter.State
	if err := c.ShouldBindQuery(&state); err != nil {
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	result, err := h.service.Filter(c.Request.Context(), state)
	if err != nil {
		var fieldErrs filter.FieldErrors
		if errors.As(err, &fieldErrs) {
			apierrors.FieldErrors(c, fieldErrs.Details())
			return
		}
		apierrors.InternalServerError(c, "Failed to load properties", err)
		return
	}

	c.JSON(http.StatusOK, PropertyListResponse{
		Properties:       mapPropertiesToDTO(result.Properties),
		Filters:          state,
		Search:           state.Location,
		Count:            len(result.Properties),
		HasActiveFilters: result.HasActiveFilters,
	})
}

// Search handles GET /api/v1/properties/search?q=term.
func (h *PropertyHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	properties, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to search properties", err)
		return
	}

	c.JSON(http.StatusOK, SearchResponse{
		Properties: mapPropertiesToDTO(properties),
		Query:      query,
		Count:      len(properties),
	})
}

// Get handles GET /api/v1/properties/:id.
func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, "Failed to load property")
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: mapPropertyToDTO(*p)})
}

// Create handles POST /api/v1/properties.
func (h *PropertyHandler) Create(c *gin.Context) {
	var input models.PropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	p, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err, "Failed to create property")
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Property created via API", map[string]interface{}{
			"property_id": p.ID,
		})
	}

	c.JSON(http.StatusCreated, PropertyResponse{Property: mapPropertyToDTO(*p)})
}

// Update handles PATCH /api/v1/properties/:id.
// Fields absent from the body are left unchanged.
func (h *PropertyHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var patch models.PropertyPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	p, err := h.service.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.handleError(c, err, "Failed to update property")
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: mapPropertyToDTO(*p)})
}

// Delete handles DELETE /api/v1/properties/:id and returns the removed listing.
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, "Failed to delete property")
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: mapPropertyToDTO(*p)})
}

func (h *PropertyHandler) handleError(c *gin.Context, err error, message string) {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, services.ErrPropertyNotFound):
		apierrors.NotFound(c, "Property not found")
	case errors.Is(err, services.ErrInvalidProperty) && errors.As(err, &validationErrors):
		apierrors.ValidationError(c, validationErrors)
	case errors.Is(err, services.ErrInvalidProperty):
		apierrors.BadRequest(c, err.Error(), nil)
	default:
		apierrors.InternalServerError(c, message, err)
	}
}

// parseIDParam reads a positive integer path parameter. On failure it writes
// a 400 response and returns false.
func parseIDParam(c *gin.Context, name string) (int, bool) {
	raw := c.Param(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		apierrors.BadRequest(c, "Invalid "+name, map[string]interface{}{
			name: raw,
		})
		return 0, false
	}
	return id, true
}

// mapPropertyToDTO attaches the display labels to a listing.
func mapPropertyToDTO(p models.Property) PropertyData {
	return PropertyData{
		Property:         p,
		PriceLabel:       format.Price(p.Price),
		SquareFeetLabel:  format.SquareFeet(p.SquareFeet),
		ListingDateLabel: format.Date(p.ListingDate),
		BedsBathsLabel:   format.BedsBaths(p.Bedrooms, p.Bathrooms),
		StatusLabel:      format.Capitalize(p.EffectiveStatus()),
		Slug:             format.Slug(p),
	}
}

func mapPropertiesToDTO(properties []models.Property) []PropertyData {
	out := make([]PropertyData, 0, len(properties))
	for _, p := range properties {
		out = append(out, mapPropertyToDTO(p))
	}
	return out
}
