package report

import (
	"net/http"

	"leavedesk/internal/shared/apperror"
	"leavedesk/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("report.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("report request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Summary(c *gin.Context) {
	username := c.GetString("username")

	resp, err := h.service.Summary(c.Request.Context(), username)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// DownloadReport streams a per-user PDF. FACULTY may only download their
// own; reviewers may name any user.
func (h *Handler) DownloadReport(c *gin.Context) {
	caller := c.GetString("username")
	role := c.GetString("role")

	username := c.Query("name")
	if username == "" {
		username = caller
	}
	leaveType := c.Query("leaveType")

	if username != caller && role == "FACULTY" {
		response.Error(c, http.StatusForbidden, apperror.CodeForbidden, "Not authorized for this operation", nil)
		return
	}

	pdf, err := h.service.UserReportPDF(c.Request.Context(), username, leaveType)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=Leave_Report.pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) FacultyReport(c *gin.Context) {
	pdf, err := h.service.FacultyReportPDF(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=Faculty_Report.pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}
