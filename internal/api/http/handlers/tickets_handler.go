package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-intel/internal/analyzer"
	"github.com/spec-kit/support-intel/internal/api/dto"
	"github.com/spec-kit/support-intel/internal/domain"
	"github.com/spec-kit/support-intel/internal/service"
	apperrors "github.com/spec-kit/support-intel/pkg/util"
)

// TicketsHandler manages operator ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets := h.service.List(c.UserContext())
	return c.JSON(fiber.Map{"data": tickets})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// Ingest POST /tickets/ingest. The manual "add issue" flow: analyze a pasted
// conversation and fold it in under the Manual channel.
func (h *TicketsHandler) Ingest(c *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Conversation) == "" {
		return apperrors.NewValidationError("conversation required", nil)
	}

	ticket, err := h.service.IngestConversation(c.UserContext(), service.ConversationInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Channel:       domain.ChannelManual,
		Conversation:  req.Conversation,
		OrderID:       req.OrderID,
		ProductID:     req.ProductID,
	})
	if errors.Is(err, analyzer.ErrNotRelevant) {
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
			"data": fiber.Map{"skipped": true, "reason": "no product-related content"},
		})
	}
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticket})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.TicketPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := service.TicketPatch{
		RootCausePrimary:   req.RootCausePrimary,
		RootCauseSecondary: req.RootCauseSecondary,
	}
	if req.Status != nil {
		status := domain.TicketStatus(*req.Status)
		patch.Status = &status
	}
	if req.Severity != nil {
		severity := domain.Severity(*req.Severity)
		patch.Severity = &severity
	}

	ticket, err := h.service.UpdateTicket(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.DeleteTicket(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteMessage DELETE /tickets/:id/messages/:messageId.
func (h *TicketsHandler) DeleteMessage(c *fiber.Ctx) error {
	if err := h.service.DeleteMessage(c.UserContext(), c.Params("id"), c.Params("messageId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
