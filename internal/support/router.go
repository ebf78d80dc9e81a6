package support

import (
	"eventixs/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts customer ticket endpoints and the admin queue.
func RegisterRoutes(rg *gin.RouterGroup, controller *Controller) {
	support := rg.Group("/support")
	support.Use(middleware.JWTAuth())
	{
		support.POST("/tickets", controller.CreateTicket)
		support.GET("/tickets", controller.ListMyTickets)
		support.GET("/tickets/:id", controller.GetTicket)

		admin := support.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/tickets", controller.ListTickets)
			admin.PUT("/tickets/:id", controller.UpdateTicket)
		}
	}
}
