package response

import "github.com/gofiber/fiber/v2"

// ErrorResponse is the envelope for all non-2xx bodies
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// OK writes a 200 with the given body
func OK(c *fiber.Ctx, body interface{}) error {
	return c.Status(fiber.StatusOK).JSON(body)
}

// Accepted writes a 202 with the given body
func Accepted(c *fiber.Ctx, body interface{}) error {
	return c.Status(fiber.StatusAccepted).JSON(body)
}

// ValidationError writes a 400 with an optional per-field detail map
func ValidationError(c *fiber.Ctx, message string, details map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   message,
		Details: details,
	})
}

// NotFound writes a 404
func NotFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: message})
}

// TooManyRequests writes a 429
func TooManyRequests(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{Error: message})
}

// ServiceError writes a 500
func ServiceError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: message})
}

// UpstreamError writes a 502 for provider failures
func UpstreamError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: message})
}
