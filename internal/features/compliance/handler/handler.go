package handler

import (
	"errors"

	"dockload/internal/core/logger"
	"dockload/internal/core/server"
	"dockload/internal/features/compliance/domain"
	"dockload/internal/features/compliance/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ReportHandler handles HTTP requests for compliance reports.
type ReportHandler struct {
	service ports.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

// GetReport godoc
// @Summary Get the compliance report of a session
// @Description Retrieves the report generated when the session completed loading
// @Tags reports
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} domain.ComplianceReport
// @Failure 404 {object} server.ErrorResponse
// @Failure 502 {object} server.ErrorResponse
// @Failure 503 {object} server.ErrorResponse
// @Failure 504 {object} server.ErrorResponse
// @Router /reports/{sessionId} [get]
func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	report, err := h.service.Get(c.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			return server.Error(c, fiber.StatusNotFound, "no compliance report for session "+sessionID)
		}
		if status, ok := server.RemoteStatus(err); ok {
			logger.Get().Warn("Report lookup failed", zap.String("session_id", sessionID), zap.Error(err))
			return server.Error(c, status, err.Error())
		}
		logger.Get().Error("Failed to get report", zap.String("session_id", sessionID), zap.Error(err))
		return server.Error(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.JSON(report)
}
