package approuters

import (
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/configuration"

	"github.com/gin-gonic/gin"
)

// NotificationRouters sets up the notification API routes.
func NotificationRouters(router *gin.Engine, container *configuration.Container) {
	notificationGroup := router.Group("/api/notifications")
	notificationGroup.Use(RequireAuth(container.Authenticator))
	{
		notificationGroup.GET("", container.NotificationHandler.GetNotifications)
		notificationGroup.POST("", container.NotificationHandler.SendNotification)
	}
}
