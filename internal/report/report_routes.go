package report

import (
	"leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	reports := r.Group("/report")
	reports.Use(middleware.AuthMiddleware())
	{
		reports.GET("/summary",
			middleware.RBACAuthorize(rbacService, "report", "download"),
			middleware.RateLimitByUser(2, 10),
			handler.Summary)
		reports.GET("/download-report",
			middleware.RBACAuthorize(rbacService, "report", "download"),
			middleware.RateLimitByUser(0.2, 2),
			handler.DownloadReport)
		reports.GET("/faculty-report",
			middleware.RBACAuthorize(rbacService, "report", "faculty"),
			middleware.RateLimitByUser(0.2, 2),
			handler.FacultyReport)
	}
}
