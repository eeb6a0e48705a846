package seats

import "github.com/gin-gonic/gin"

func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller) {
	eventSeats := rg.Group("/events/:eventId/seats")
	{
		eventSeats.GET("", controller.GetEventSeats)
		eventSeats.POST("/hold", controller.HoldSeats)
		eventSeats.POST("/release", controller.ReleaseSeats)
	}
}
