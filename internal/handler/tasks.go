package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/socialspark/api/internal/service"
	"github.com/socialspark/api/pkg/response"
)

type TaskHandler struct {
	service *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// Status handles GET /api/tasks/:taskId. The task id handed out at
// submission is the only handle a caller has on an async job.
func (h *TaskHandler) Status(c *fiber.Ctx) error {
	taskID := c.Params("taskId")
	if taskID == "" {
		return response.ValidationError(c, "Task ID is required", nil)
	}

	result, err := h.service.Status(c.Context(), taskID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			return response.NotFound(c, "Task not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}
