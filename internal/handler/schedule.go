package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/socialspark/api/internal/model"
	"github.com/socialspark/api/internal/repository"
	"github.com/socialspark/api/internal/service"
	"github.com/socialspark/api/pkg/response"
)

type ScheduleHandler struct {
	service   *service.ScheduleService
	validator *validator.Validate
}

func NewScheduleHandler(svc *service.ScheduleService, v *validator.Validate) *ScheduleHandler {
	return &ScheduleHandler{
		service:   svc,
		validator: v,
	}
}

// SchedulePost handles POST /api/schedule/post. The post is queued for
// publishing, delayed until runAt when one is given.
func (h *ScheduleHandler) SchedulePost(c *fiber.Ctx) error {
	var req model.SchedulePostRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	for _, platform := range req.Platforms {
		if !model.IsSupportedPlatform(platform) {
			return response.ValidationError(c, "Unsupported platform: "+string(platform), nil)
		}
	}

	result, err := h.service.SchedulePost(c.Context(), &req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// ScheduleReminder handles POST /api/schedule/reminder
func (h *ScheduleHandler) ScheduleReminder(c *fiber.Ctx) error {
	var req model.ScheduleReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	if !model.IsSupportedPlatform(req.Platform) {
		return response.ValidationError(c, "Unsupported platform: "+string(req.Platform), nil)
	}

	result, err := h.service.ScheduleReminder(c.Context(), &req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// Get handles GET /api/schedule/:assetId
func (h *ScheduleHandler) Get(c *fiber.Ctx) error {
	assetID := c.Params("assetId")
	if assetID == "" {
		return response.ValidationError(c, "Asset ID is required", nil)
	}

	item, err := h.service.GetByAssetID(c.Context(), assetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "No schedule for asset")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, item)
}
