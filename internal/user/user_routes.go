package user

import (
	"leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.RBACAuthorize(rbacService, "users", "manage"))
	{
		admin.POST("/addUser", middleware.RateLimitByUser(0.5, 2), handler.AddUser)
		admin.DELETE("/deleteUser", middleware.RateLimitByUser(0.5, 2), handler.DeleteUser)
		admin.GET("/userData", middleware.RateLimitByUser(2, 10), handler.UserData)
		admin.POST("/reset-leaves", middleware.RateLimitByUser(0.1, 1), handler.ResetLeaves)
	}
}
