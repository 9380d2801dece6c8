package server

import (
	"errors"

	"dockload/internal/core/recordstore"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
	// Kind classifies validation failures, e.g. SEQUENCE_VIOLATION.
	Kind string `json:"kind,omitempty"`
	// Expected and Actual let the operator self-correct.
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// RayID returns the request id set by the requestid middleware.
func RayID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// Error writes an ErrorResponse with the given status.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Message: message,
		RayID:   RayID(c),
	})
}

// RemoteStatus maps a record store failure to an HTTP status: timeouts are
// 504, unreachable stores 503 and rejections 502.
func RemoteStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, recordstore.ErrTimeout):
		return fiber.StatusGatewayTimeout, true
	case errors.Is(err, recordstore.ErrConnectivity):
		return fiber.StatusServiceUnavailable, true
	case errors.Is(err, recordstore.ErrRejected):
		return fiber.StatusBadGateway, true
	default:
		return 0, false
	}
}
