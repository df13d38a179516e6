package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/socialspark/api/internal/model"
	"github.com/socialspark/api/internal/service"
	"github.com/socialspark/api/pkg/response"
)

type CaptionHandler struct {
	service   *service.CaptionService
	validator *validator.Validate
}

func NewCaptionHandler(svc *service.CaptionService, v *validator.Validate) *CaptionHandler {
	return &CaptionHandler{
		service:   svc,
		validator: v,
	}
}

// Generate handles POST /api/captions/generate
func (h *CaptionHandler) Generate(c *fiber.Ctx) error {
	var req model.CaptionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Generate(c.Context(), &req)
	if err != nil {
		return response.UpstreamError(c, err.Error())
	}

	return response.OK(c, result)
}
