package middleware

import (
	"leavedesk/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextLogger builds a request-scoped logger carrying the request id and
// propagates it onto the standard context so the service and repository
// layers can log without knowing about gin. AuthMiddleware later enriches
// the logger with the authenticated actor.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Header("X-Request-ID", rid)

		reqLogger := logger.With(zap.String("request_id", rid))
		c.Request = c.Request.WithContext(
			contextutil.WithLogger(c.Request.Context(), reqLogger))

		c.Next()
	}
}
