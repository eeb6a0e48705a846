package bookings

import "github.com/gin-gonic/gin"

func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	bookingRoutes := rg.Group("/bookings")
	{
		bookingRoutes.POST("", controller.CreateBooking)
		bookingRoutes.GET("/:bookingId", controller.GetBooking)
		bookingRoutes.GET("/ref/:ref", controller.GetBookingByReference)
		bookingRoutes.POST("/:bookingId/confirm", controller.ConfirmBooking)
		bookingRoutes.POST("/:bookingId/cancel", controller.CancelBooking)
	}
	rg.GET("/users/:userId/bookings", controller.GetUserBookings)
}
