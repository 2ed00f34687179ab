package handlers

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/homescout/api/internal/errors"
)

// MapView handles GET /api/v1/map. The map view is announced but not built.
func MapView(c *gin.Context) {
	apierrors.NotImplemented(c, "Map view is coming soon")
}
