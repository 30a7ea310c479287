package leave

import (
	"leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
) {
	leaves := r.Group("/leave")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.POST("/apply",
			middleware.RBACAuthorize(rbacService, "leave", "apply"),
			middleware.RateLimitByUser(0.5, 2),
			middleware.Idempotency(rdb),
			handler.Apply)
		leaves.GET("/getLeaves",
			middleware.RBACAuthorize(rbacService, "leave", "read"),
			middleware.RateLimitByUser(3, 10),
			handler.GetLeaves)
		leaves.GET("/getApplications",
			middleware.RBACAuthorize(rbacService, "leave", "review"),
			middleware.RateLimitByUser(3, 10),
			handler.GetApplications)
		leaves.GET("/updateStatus",
			middleware.RBACAuthorize(rbacService, "leave", "review"),
			middleware.RateLimitByUser(1, 5),
			handler.UpdateStatus)
		leaves.GET("/leave-stats",
			middleware.RBACAuthorize(rbacService, "leave", "read"),
			middleware.RateLimitByUser(3, 10),
			handler.Stats)
		leaves.DELETE("/deleteLeave",
			middleware.RBACAuthorize(rbacService, "leave", "cancel"),
			middleware.RateLimitByUser(0.5, 2),
			handler.DeleteLeave)
		leaves.DELETE("/clearRejectedLeave",
			middleware.RBACAuthorize(rbacService, "leave", "cancel"),
			middleware.RateLimitByUser(0.5, 2),
			handler.ClearRejectedLeave)
	}
}
