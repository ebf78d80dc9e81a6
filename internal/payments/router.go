package payments

import (
	"eventixs/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the payment endpoints. The gateway callback is
// unauthenticated on purpose: the provider cannot carry a customer JWT.
func RegisterRoutes(rg *gin.RouterGroup, controller *Controller) {
	payments := rg.Group("/payments")
	{
		payments.POST("/webhook", controller.GatewayCallback)

		authed := payments.Group("")
		authed.Use(middleware.JWTAuth())
		{
			authed.POST("", controller.InitiatePayment)
			authed.POST("/stk-push", controller.STKPush)
			authed.GET("/:id", controller.GetPayment)
			authed.GET("/booking/:bookingId", controller.ListBookingPayments)
		}
	}
}
