package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the listing, saved-list and map routes on the
// /api/v1 group.
func RegisterRoutes(v1 *gin.RouterGroup, propertyHandler *PropertyHandler, savedHandler *SavedHandler) {
	properties := v1.Group("/properties")
	{
		properties.GET("", propertyHandler.List)
		properties.GET("/search", propertyHandler.Search)
		properties.GET("/:id", propertyHandler.Get)
		properties.POST("", propertyHandler.Create)
		properties.PATCH("/:id", propertyHandler.Update)
		properties.DELETE("/:id", propertyHandler.Delete)
	}

	saved := v1.Group("/saved")
	{
		saved.GET("", savedHandler.List)
		saved.GET("/count", savedHandler.Count)
		saved.GET("/:propertyId", savedHandler.Status)
		saved.POST("", savedHandler.Add)
		saved.POST("/:propertyId/toggle", savedHandler.Toggle)
		saved.DELETE("/:propertyId", savedHandler.Remove)
		saved.PATCH("/entries/:id/notes", savedHandler.UpdateNotes)
		saved.DELETE("", savedHandler.Clear)
	}

	v1.GET("/map", MapView)
}
