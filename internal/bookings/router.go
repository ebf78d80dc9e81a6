package bookings

import (
	"eventixs/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the booking endpoints. All of them require a
// logged-in customer.
func RegisterRoutes(rg *gin.RouterGroup, controller *Controller) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth())
	{
		bookings.POST("", controller.CreateBooking)
		bookings.GET("", controller.ListBookings)
		bookings.GET("/customer/:customerId", controller.ListCustomerBookings)
		bookings.GET("/:id", controller.GetBooking)
		bookings.PUT("/:id", controller.UpdateBookingStatus)
		bookings.DELETE("/:id", controller.CancelBooking)
	}
}
