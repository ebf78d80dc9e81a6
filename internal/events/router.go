package events

import (
	"eventixs/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts public event browsing plus admin-only management.
func RegisterRoutes(rg *gin.RouterGroup, controller *Controller) {
	events := rg.Group("/events")
	{
		events.GET("", controller.ListEvents)
		events.GET("/upcoming", controller.GetUpcomingEvents)
		events.GET("/:id", controller.GetEvent)

		admin := events.Group("")
		admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
		{
			admin.POST("", controller.CreateEvent)
			admin.PUT("/:id", controller.UpdateEvent)
			admin.PATCH("/:id/status", controller.UpdateEventStatus)
			admin.DELETE("/:id", controller.DeleteEvent)
		}
	}
}
