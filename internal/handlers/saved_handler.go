package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/stwalsh4118/homescout/api/internal/errors"
	"github.com/stwalsh4118/homescout/api/internal/middleware"
	"github.com/stwalsh4118/homescout/api/internal/models"
	"github.com/stwalsh4118/homescout/api/internal/savedset"
	"github.com/stwalsh4118/homescout/api/internal/services"
)

// SavedHandler handles saved-list HTTP requests.
type SavedHandler struct {
	service services.SavedService
}

// NewSavedHandler creates a new SavedHandler instance.
func NewSavedHandler(service services.SavedService) *SavedHandler {
	return &SavedHandler{
		service: service,
	}
}

// AddSavedRequest is the body of POST /api/v1/saved.
type AddSavedRequest struct {
	Notes      string `json:"notes" binding:"max=2000"`
	PropertyID int    `json:"propertyId" binding:"required,gt=0"`
}

// UpdateNotesRequest is the body of PATCH /api/v1/saved/entries/:id/notes.
type UpdateNotesRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// SavedListResponse is the saved page payload.
type SavedListResponse struct {
	Saved []services.SavedListing `json:"saved"`
	Count int                     `json:"count"`
}

// SavedCountResponse feeds the header badge.
type SavedCountResponse struct {
	Count int `json:"count"`
}

// SavedStatusResponse reports whether one property is saved.
type SavedStatusResponse struct {
	PropertyID int  `json:"propertyId"`
	Saved      bool `json:"saved"`
}

// ToggleResponse is the toggle outcome plus the new badge count. Count is
// omitted when it could not be read after the toggle committed.
type ToggleResponse struct {
	models.ToggleResult
	Count *int `json:"count,omitempty"`
}

// SavedRecordResponse wraps a single saved record.
type SavedRecordResponse struct {
	Saved models.SavedProperty `json:"saved"`
}

// ClearResponse reports how many records a clear removed.
type ClearResponse struct {
	Removed int `json:"removed"`
}

// List handles GET /api/v1/saved.
func (h *SavedHandler) List(c *gin.Context) {
	listings, err := h.service.ListWithProperties(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load saved properties", err)
		return
	}

	c.JSON(http.StatusOK, SavedListResponse{
		Saved: listings,
		Count: len(listings),
	})
}

// Count handles GET /api/v1/saved/count.
func (h *SavedHandler) Count(c *gin.Context) {
	count, err := h.service.Count(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to count saved properties", err)
		return
	}
	c.JSON(http.StatusOK, SavedCountResponse{Count: count})
}

// Status handles GET /api/v1/saved/:propertyId.
func (h *SavedHandler) Status(c *gin.Context) {
	propertyID, ok := parseIDParam(c, "propertyId")
	if !ok {
		return
	}

	saved, err := h.service.IsSaved(c.Request.Context(), propertyID)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load saved status", err)
		return
	}
	c.JSON(http.StatusOK, SavedStatusResponse{PropertyID: propertyID, Saved: saved})
}

// Toggle handles POST /api/v1/saved/:propertyId/toggle.
// A second toggle of the same property while one is running gets 409.
func (h *SavedHandler) Toggle(c *gin.Context) {
	propertyID, ok := parseIDParam(c, "propertyId")
	if !ok {
		return
	}

	result, err := h.service.Toggle(c.Request.Context(), propertyID)
	if err != nil {
		h.handleError(c, err, "Failed to update saved properties")
		return
	}

	resp := ToggleResponse{ToggleResult: *result}
	count, err := h.service.Count(c.Request.Context())
	if err != nil {
		// The toggle is committed; report it without the badge count
		if log := middleware.GetLogger(c); log != nil {
			log.Error("Failed to count saved properties after toggle", err, map[string]interface{}{
				"property_id": propertyID,
			})
		}
	} else {
		resp.Count = &count
	}

	c.JSON(http.StatusOK, resp)
}

// Add handles POST /api/v1/saved.
func (h *SavedHandler) Add(c *gin.Context) {
	var req AddSavedRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.service.Add(c.Request.Context(), req.PropertyID, req.Notes)
	if err != nil {
		h.handleError(c, err, "Failed to save property")
		return
	}
	c.JSON(http.StatusCreated, SavedRecordResponse{Saved: *record})
}

// Remove handles DELETE /api/v1/saved/:propertyId.
func (h *SavedHandler) Remove(c *gin.Context) {
	propertyID, ok := parseIDParam(c, "propertyId")
	if !ok {
		return
	}

	record, err := h.service.Remove(c.Request.Context(), propertyID)
	if err != nil {
		h.handleError(c, err, "Failed to remove saved property")
		return
	}
	c.JSON(http.StatusOK, SavedRecordResponse{Saved: *record})
}

// UpdateNotes handles PATCH /api/v1/saved/entries/:id/notes.
func (h *SavedHandler) UpdateNotes(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateNotesRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.service.UpdateNotes(c.Request.Context(), id, req.Notes)
	if err != nil {
		h.handleError(c, err, "Failed to update notes")
		return
	}
	c.JSON(http.StatusOK, SavedRecordResponse{Saved: *record})
}

// Clear handles DELETE /api/v1/saved.
func (h *SavedHandler) Clear(c *gin.Context) {
	removed, err := h.service.Clear(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to clear saved properties", err)
		return
	}
	c.JSON(http.StatusOK, ClearResponse{Removed: removed})
}

func (h *SavedHandler) handleError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, savedset.ErrToggleInFlight):
		apierrors.Conflict(c, apierrors.ErrToggleInProgress, "A toggle for this property is already in progress", nil)
	case errors.Is(err, services.ErrAlreadySaved):
		apierrors.Conflict(c, apierrors.ErrAlreadySaved, "Property is already saved", nil)
	case errors.Is(err, services.ErrSavedNotFound):
		apierrors.NotFound(c, "Saved property not found")
	case errors.Is(err, services.ErrInvalidNotes):
		apierrors.FieldErrors(c, map[string]interface{}{"notes": "must be at most 2000 characters"})
	default:
		apierrors.InternalServerError(c, message, err)
	}
}

// bindJSON binds the request body, writing a 400 response on failure.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return false
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return false
	}
	return true
}
