package venues

import (
	"eventixs/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts public venue browsing plus admin-only management.
func RegisterRoutes(rg *gin.RouterGroup, controller *Controller) {
	venues := rg.Group("/venues")
	{
		venues.GET("", controller.ListVenues)
		venues.GET("/:id", controller.GetVenue)

		admin := venues.Group("")
		admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
		{
			admin.POST("", controller.CreateVenue)
			admin.PUT("/:id", controller.UpdateVenue)
			admin.DELETE("/:id", controller.DeleteVenue)
		}
	}
}
