package approuters

import (
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/configuration"

	"github.com/gin-gonic/gin"
)

// UserRouters sets up the public auth routes.
func UserRouters(router *gin.Engine, container *configuration.Container) {
	userGroup := router.Group("/api/users")
	{
		userGroup.POST("/register", container.AuthHandler.Register)
		userGroup.POST("/login", container.AuthHandler.Login)
	}
}
