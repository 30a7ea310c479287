package leave

import (
	"encoding/json"
	"net/http"
	"time"

	"leavedesk/internal/shared/apperror"
	"leavedesk/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, rdb: rdb, logger: l}
}

func actorFrom(c *gin.Context) Actor {
	return Actor{
		Username: c.GetString("username"),
		Role:     c.GetString("role"),
	}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Apply(c *gin.Context) {
	lockKey, _ := c.Get("idempotency_lock_key")
	cacheKey, _ := c.Get("idempotency_cache_key")

	if h.rdb != nil {
		if lk, ok := lockKey.(string); ok && lk != "" {
			defer h.rdb.Del(c.Request.Context(), lk)
		}
	}

	actor := actorFrom(c)

	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Apply(c.Request.Context(), actor, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if h.rdb != nil {
		if ck, ok := cacheKey.(string); ok && ck != "" {
			if payload, marshalErr := json.Marshal(resp); marshalErr == nil {
				_ = h.rdb.Set(c.Request.Context(), ck, payload, 24*time.Hour).Err()
			}
		}
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetLeaves(c *gin.Context) {
	actor := actorFrom(c)
	status := c.Query("status")

	resp, err := h.service.GetLeaves(c.Request.Context(), actor.Username, status)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetApplications(c *gin.Context) {
	actor := actorFrom(c)

	resp, err := h.service.GetApplications(c.Request.Context(), actor)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// UpdateStatus drives an approval decision. The contract is query-driven:
// ?status=accepted|rejected&name=<record>&reason=<required when rejected>.
func (h *Handler) UpdateStatus(c *gin.Context) {
	actor := actorFrom(c)
	status := c.Query("status")
	name := c.Query("name")
	reason := c.Query("reason")

	if name == "" {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Name is required", nil)
		return
	}

	resp, err := h.service.Decide(c.Request.Context(), actor, name, status, reason)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DeleteLeave(c *gin.Context) {
	actor := actorFrom(c)
	name := c.Query("name")

	if name == "" {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Leave name is required", nil)
		return
	}

	if err := h.service.Cancel(c.Request.Context(), actor, name); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Leave request canceled successfully"}, nil)
}

func (h *Handler) ClearRejectedLeave(c *gin.Context) {
	actor := actorFrom(c)
	name := c.Query("name")

	if name == "" {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Leave name is required", nil)
		return
	}

	if err := h.service.ClearRejected(c.Request.Context(), actor, name); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Rejected leave cleared successfully"}, nil)
}

func (h *Handler) Stats(c *gin.Context) {
	actor := actorFrom(c)

	resp, err := h.service.Stats(c.Request.Context(), actor.Username)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
