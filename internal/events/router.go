package events

import "github.com/gin-gonic/gin"

func SetupEventRoutes(rg *gin.RouterGroup, controller *Controller) {
	eventRoutes := rg.Group("/events")
	{
		eventRoutes.POST("", controller.CreateEvent)
		eventRoutes.GET("", controller.GetAllEvents)
		eventRoutes.GET("/:eventId", controller.GetEvent)
		eventRoutes.PUT("/:eventId", controller.UpdateEvent)
		eventRoutes.DELETE("/:eventId", controller.DeleteEvent)
		eventRoutes.POST("/:eventId/cancel", controller.CancelEvent)
	}
}
