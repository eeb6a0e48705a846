package users

import "github.com/gin-gonic/gin"

func SetupUserRoutes(router *gin.RouterGroup, controller Controller) {
	usersGroup := router.Group("/users")
	{
		usersGroup.POST("", controller.CreateUser)     // POST /api/v1/users
		usersGroup.GET("/:userId", controller.GetUser) // GET /api/v1/users/:userId
	}
}
