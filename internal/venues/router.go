package venues

import "github.com/gin-gonic/gin"

func SetupVenueRoutes(router *gin.RouterGroup, controller Controller) {
	venuesGroup := router.Group("/venues")
	{
		venuesGroup.POST("", controller.CreateVenue)
		venuesGroup.GET("", controller.GetAllVenues)
		venuesGroup.GET("/:venueId", controller.GetVenue)
	}
}
