package payments

import "github.com/gin-gonic/gin"

func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller) {
	paymentRoutes := rg.Group("/payments")
	{
		paymentRoutes.POST("", controller.InitializePayment)
		paymentRoutes.GET("/:bookingId", controller.GetPayment)
		paymentRoutes.POST("/:bookingId/verify", controller.VerifyPayment)
		paymentRoutes.POST("/:bookingId/refund", controller.RefundPayment)
	}
}
