package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/socialspark/api/internal/model"
	"github.com/socialspark/api/internal/service"
	"github.com/socialspark/api/pkg/response"
)

type ImageHandler struct {
	service   *service.ImageService
	validator *validator.Validate
}

func NewImageHandler(svc *service.ImageService, v *validator.Validate) *ImageHandler {
	return &ImageHandler{
		service:   svc,
		validator: v,
	}
}

// Generate handles POST /api/images/generate. It returns an enhanced
// generation prompt synchronously; rendering is a separate queued step.
func (h *ImageHandler) Generate(c *fiber.Ctx) error {
	var req model.ImageGenerationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.GeneratePrompt(c.Context(), &req)
	if err != nil {
		return response.UpstreamError(c, err.Error())
	}

	return response.OK(c, result)
}

// Render handles POST /api/images/render. It queues the render job and
// returns the task id immediately.
func (h *ImageHandler) Render(c *fiber.Ctx) error {
	var req model.RenderImageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.StartRender(c.Context(), &req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}
