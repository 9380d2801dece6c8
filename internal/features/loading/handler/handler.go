package handler

import (
	"errors"

	"dockload/internal/core/logger"
	"dockload/internal/core/server"
	"dockload/internal/features/loading/domain"
	"dockload/internal/features/loading/ports"
	"dockload/internal/features/manifest/parser"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// KindInvalidManifest marks manifest parse failures in error responses.
const KindInvalidManifest = "INVALID_MANIFEST"

// OpenSessionRequest starts a loading session.
type OpenSessionRequest struct {
	// Discipline is strict (LIFO) or unordered; empty uses the configured default.
	Discipline string `json:"discipline" example:"strict"`
	Operator   string `json:"operator" example:"op-7"`
}

// InputRequest is one committed line from the scanner or keyboard.
type InputRequest struct {
	Text string `json:"text" example:"TRK-01"`
}

// KeysRequest carries raw keystrokes.
type KeysRequest struct {
	Events []ports.KeyEvent `json:"events"`
	// Submit commits the buffer after the last event.
	Submit bool `json:"submit"`
}

// StopsRequest registers the delivery route of a shipment.
type StopsRequest struct {
	Stops []domain.DeliveryStopCarton `json:"stops"`
}

// LoadingHandler handles HTTP requests for loading sessions.
type LoadingHandler struct {
	service ports.LoadingService
}

// NewLoadingHandler creates a new LoadingHandler.
func NewLoadingHandler(service ports.LoadingService) *LoadingHandler {
	return &LoadingHandler{
		service: service,
	}
}

// OpenSession godoc
// @Summary Open a loading session
// @Description Starts a session waiting for its shipment manifest
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body OpenSessionRequest true "Session options"
// @Success 201 {object} ports.Progress
// @Failure 400 {object} server.ErrorResponse
// @Router /sessions [post]
func (h *LoadingHandler) OpenSession(c *fiber.Ctx) error {
	var req OpenSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return server.Error(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	progress, err := h.service.Open(c.Context(), req.Discipline, req.Operator)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(progress)
}

// GetProgress godoc
// @Summary Get session progress
// @Description Returns stage, counters, expected order, violations and pending input of a session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} ports.Progress
// @Failure 404 {object} server.ErrorResponse
// @Router /sessions/{id} [get]
func (h *LoadingHandler) GetProgress(c *fiber.Ctx) error {
	progress, err := h.service.Progress(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(progress)
}

// SubmitInput godoc
// @Summary Submit a committed input line
// @Description Routes the line to the active stage: manifest, vehicle id or carton id
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body InputRequest true "Input line"
// @Success 200 {object} ports.Feedback
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Failure 502 {object} server.ErrorResponse
// @Failure 503 {object} server.ErrorResponse
// @Failure 504 {object} server.ErrorResponse
// @Router /sessions/{id}/input [post]
func (h *LoadingHandler) SubmitInput(c *fiber.Ctx) error {
	var req InputRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	feedback, err := h.service.Input(c.Context(), c.Params("id"), req.Text)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(feedback)
}

// SubmitKeys godoc
// @Summary Submit raw keystrokes
// @Description Feeds keystrokes through scanner/manual disambiguation; Enter or submit commits the line
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body KeysRequest true "Keystrokes"
// @Success 200 {object} ports.Feedback
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Router /sessions/{id}/keys [post]
func (h *LoadingHandler) SubmitKeys(c *fiber.Ctx) error {
	var req KeysRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	feedback, err := h.service.Keys(c.Context(), c.Params("id"), req.Events, req.Submit)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(feedback)
}

// ResetSession godoc
// @Summary Reset a session
// @Description Discards manifest, scans and violations and starts a new session under a fresh id, waiting for its manifest
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} ports.Progress
// @Failure 404 {object} server.ErrorResponse
// @Router /sessions/{id}/reset [post]
func (h *LoadingHandler) ResetSession(c *fiber.Ctx) error {
	progress, err := h.service.Reset(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(progress)
}

// RegisterStops godoc
// @Summary Register the delivery route of a shipment
// @Description Replaces the delivery stops used to plan strict (LIFO) loading
// @Tags shipments
// @Accept json
// @Param id path string true "Shipment ID"
// @Param request body StopsRequest true "Delivery stops"
// @Success 204
// @Failure 400 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Router /shipments/{id}/stops [put]
func (h *LoadingHandler) RegisterStops(c *fiber.Ctx) error {
	var req StopsRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.RegisterStops(c.Context(), c.Params("id"), req.Stops); err != nil {
		return h.fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// fail maps service errors to HTTP responses.
func (h *LoadingHandler) fail(c *fiber.Ctx, err error) error {
	var (
		validation *domain.ValidationError
		parse      *parser.ParseError
		state      *domain.StateError
	)

	switch {
	case errors.As(err, &validation):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(server.ErrorResponse{
			Message:  validation.Message,
			RayID:    server.RayID(c),
			Kind:     string(validation.Kind),
			Expected: validation.Expected,
			Actual:   validation.Actual,
		})
	case errors.As(err, &parse):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(server.ErrorResponse{
			Message: parse.Reason,
			RayID:   server.RayID(c),
			Kind:    KindInvalidManifest,
			Actual:  parse.Sample,
		})
	case errors.As(err, &state):
		return server.Error(c, fiber.StatusConflict, state.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		return server.Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidDiscipline), errors.Is(err, domain.ErrInvalidKeyEvent):
		return server.Error(c, fiber.StatusBadRequest, err.Error())
	}

	if status, ok := server.RemoteStatus(err); ok {
		logger.Get().Warn("Record store call failed", zap.String("path", c.Path()), zap.Error(err))
		return server.Error(c, status, err.Error())
	}

	logger.Get().Error("Loading request failed", zap.String("path", c.Path()), zap.Error(err))
	return server.Error(c, fiber.StatusInternalServerError, "internal server error")
}
