package approuters

import (
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/configuration"

	"github.com/gin-gonic/gin"
)

// ChatRouters sets up the chat REST API routes.
func ChatRouters(router *gin.Engine, container *configuration.Container) {
	chatGroup := router.Group("/api/chat")
	chatGroup.Use(RequireAuth(container.Authenticator))
	{
		chatGroup.GET("/conversations", container.ChatHandler.GetConversations)
		chatGroup.GET("/messages", container.ChatHandler.GetMessages)
		chatGroup.POST("/sendMessage", container.ChatHandler.SendMessage)
		chatGroup.PATCH("/updateMessage", container.ChatHandler.UpdateMessage)
		chatGroup.PATCH("/markAsRead", container.ChatHandler.MarkAsRead)
		chatGroup.GET("/onlineStatus", container.ChatHandler.OnlineStatus)
		chatGroup.POST("/createConversation", container.ChatHandler.CreateConversation)
		chatGroup.PATCH("/renameConversation/:id", container.ChatHandler.RenameConversation)
	}
}
