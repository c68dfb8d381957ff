package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/chat-ticketing/internal/api/dto"
	"github.com/spec-kit/chat-ticketing/internal/domain"
	"github.com/spec-kit/chat-ticketing/internal/repository"
)

// QueuesHandler handles queue administration endpoints.
type QueuesHandler struct {
	queues repository.QueueRepository
}

// NewQueuesHandler constructs handler.
func NewQueuesHandler(queueRepo repository.QueueRepository) *QueuesHandler {
	return &QueuesHandler{queues: queueRepo}
}

// ListQueues GET /queues.
func (h *QueuesHandler) ListQueues(c *fiber.Ctx) error {
	queues, err := h.queues.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.QueueResponse, 0, len(queues))
	for _, queue := range queues {
		items = append(items, queueResponse(queue))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateQueue POST /queues (elevated only).
func (h *QueuesHandler) CreateQueue(c *fiber.Ctx) error {
	var req dto.QueueResponse
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name required")
	}
	queue := domain.Queue{Name: req.Name, Color: req.Color}
	if err := h.queues.Create(c.UserContext(), &queue); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": queueResponse(queue)})
}

func queueResponse(queue domain.Queue) dto.QueueResponse {
	return dto.QueueResponse{ID: queue.ID, Name: queue.Name, Color: queue.Color}
}
