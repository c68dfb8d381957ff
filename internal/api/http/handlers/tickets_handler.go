package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/chat-ticketing/internal/api/dto"
	"github.com/spec-kit/chat-ticketing/internal/auth"
	"github.com/spec-kit/chat-ticketing/internal/domain"
	"github.com/spec-kit/chat-ticketing/internal/service"
)

// TicketsHandler handles ticket endpoints.
type TicketsHandler struct {
	queries *service.TicketQueryService
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(queries *service.TicketQueryService, tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{queries: queries, tickets: tickets}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	user, err := principal(c)
	if err != nil {
		return err
	}
	input := parseListTicketsQuery(c, user.ID)
	page, err := h.queries.ListTickets(c.UserContext(), input)
	if err != nil {
		return err
	}

	items := make([]dto.TicketSummary, 0, len(page.Tickets))
	for i := range page.Tickets {
		items = append(items, ticketSummary(&page.Tickets[i]))
	}
	return c.JSON(dto.TicketListResponse{
		Tickets: items,
		Count:   page.Count,
		HasMore: page.HasMore,
	})
}

// UnreadBadge GET /tickets/unread.
func (h *TicketsHandler) UnreadBadge(c *fiber.Ctx) error {
	user, err := principal(c)
	if err != nil {
		return err
	}
	total, err := h.queries.UnreadTotal(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.UnreadBadgeResponse{Unread: total})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticketID, err := ticketParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	ticket, err := h.tickets.CreateTicket(c.UserContext(), user.ID, service.TicketCreateInput{
		ContactID:  req.ContactID,
		WhatsappID: req.WhatsappID,
		QueueID:    req.QueueID,
		UserID:     req.UserID,
		Status:     req.Status,
		IsGroup:    req.IsGroup,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// UpdateStatus PUT /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	user, err := principal(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketParam(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	ticket, err := h.tickets.UpdateStatus(c.UserContext(), user.ID, ticketID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Transfer PUT /tickets/:id/transfer.
func (h *TicketsHandler) Transfer(c *fiber.Ctx) error {
	user, err := principal(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketParam(c)
	if err != nil {
		return err
	}
	var req dto.TransferTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	ticket, err := h.tickets.Transfer(c.UserContext(), user.ID, ticketID, req.QueueID, req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AddMessage POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	ticketID, err := ticketParam(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	message, err := h.tickets.AppendMessage(c.UserContext(), ticketID, req.Body, req.FromMe)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": messageResponse(message)})
}

// ListMessages GET /tickets/:id/messages.
func (h *TicketsHandler) ListMessages(c *fiber.Ctx) error {
	ticketID, err := ticketParam(c)
	if err != nil {
		return err
	}
	page := parseInt(c.Query("pageNumber"), 1)
	pageSize := parseInt(c.Query("pageSize"), 20)
	messages, err := h.tickets.ListMessages(c.UserContext(), ticketID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		items = append(items, messageResponse(&messages[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkRead POST /tickets/:id/read.
func (h *TicketsHandler) MarkRead(c *fiber.Ctx) error {
	ticketID, err := ticketParam(c)
	if err != nil {
		return err
	}
	if err := h.tickets.MarkRead(c.UserContext(), ticketID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func principal(c *fiber.Ctx) (*domain.User, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok || p.User == nil {
		return nil, fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return p.User, nil
}

func ticketParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(http.StatusBadRequest, "invalid ticket id")
	}
	return id, nil
}

// parseListTicketsQuery maps the raw query string onto listing input. Flags
// arrive as "true" or are absent; queue ids are a comma-separated int list.
func parseListTicketsQuery(c *fiber.Ctx, userID int64) service.ListTicketsInput {
	return service.ListTicketsInput{
		UserID:     userID,
		Page:       parseInt(c.Query("pageNumber"), 1),
		Status:     c.Query("status"),
		Date:       c.Query("date"),
		Search:     c.Query("searchParam"),
		ShowAll:    parseFlag(c.Query("showAll")),
		UnreadOnly: parseFlag(c.Query("withUnreadMessages")),
		QueueIDs:   parseQueueIDs(c.Query("queueIds")),
	}
}

func parseFlag(value string) bool {
	return value == "true"
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseQueueIDs(value string) []int64 {
	value = strings.Trim(strings.TrimSpace(value), "[]")
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	summary := dto.TicketSummary{
		ID:             ticket.ID,
		ExternalKey:    ticket.ExternalKey,
		Status:         ticket.Status,
		UnreadMessages: ticket.UnreadMessages,
		LastMessage:    ticket.LastMessage,
		IsGroup:        ticket.IsGroup,
		UserID:         ticket.UserID,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
	}
	if ticket.Contact != nil {
		summary.Contact = &dto.ContactSummaryResponse{
			ID:            ticket.Contact.ID,
			Name:          ticket.Contact.Name,
			Number:        ticket.Contact.Number,
			ProfilePicURL: ticket.Contact.ProfilePicURL,
		}
	}
	if ticket.Queue != nil {
		summary.Queue = &dto.QueueSummaryResponse{
			ID:    ticket.Queue.ID,
			Name:  ticket.Queue.Name,
			Color: ticket.Queue.Color,
		}
	}
	if ticket.Whatsapp != nil {
		summary.Whatsapp = &dto.WhatsappSummaryResponse{
			ID:   ticket.Whatsapp.ID,
			Name: ticket.Whatsapp.Name,
		}
	}
	return summary
}

func messageResponse(message *domain.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        message.ID,
		TicketID:  message.TicketID,
		Body:      message.Body,
		FromMe:    message.FromMe,
		Read:      message.Read,
		CreatedAt: message.CreatedAt,
	}
}
