package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-intel/internal/analyzer"
	"github.com/spec-kit/support-intel/internal/api/dto"
	"github.com/spec-kit/support-intel/internal/chat"
	apperrors "github.com/spec-kit/support-intel/pkg/util"
)

// ChatHandler serves both the public widget endpoints and the operator chat
// inbox.
type ChatHandler struct {
	service *chat.Service
}

// NewChatHandler constructs handler.
func NewChatHandler(service *chat.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// StartSession POST /chat/sessions (public).
func (h *ChatHandler) StartSession(c *fiber.Ctx) error {
	var req dto.StartChatSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, err := h.service.StartSession(c.UserContext(), chat.StartSessionInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		OrderNumber:   req.OrderNumber,
		IsLoggedIn:    req.IsLoggedIn,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": session})
}

// PostCustomerMessage POST /chat/sessions/:sessionId/messages (public).
func (h *ChatHandler) PostCustomerMessage(c *fiber.Ctx) error {
	var req dto.ChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	msg, err := h.service.PostCustomerMessage(c.UserContext(), c.Params("sessionId"), req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": msg})
}

// Messages GET /chat/sessions/:sessionId/messages (public, polled by the widget).
func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	msgs, err := h.service.Messages(c.UserContext(), c.Params("sessionId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": msgs})
}

// Sessions GET /chat/sessions (operator).
func (h *ChatHandler) Sessions(c *fiber.Ctx) error {
	sessions, err := h.service.Sessions(c.UserContext(), c.QueryInt("limit", 100))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessions})
}

// PostAgentMessage POST /chat/sessions/:sessionId/agent-messages (operator).
func (h *ChatHandler) PostAgentMessage(c *fiber.Ctx) error {
	var req dto.ChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	msg, err := h.service.PostAgentMessage(c.UserContext(), c.Params("sessionId"), req.AgentName, req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": msg})
}

// MarkRead POST /chat/sessions/:sessionId/read (operator).
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.service.MarkRead(c.UserContext(), c.Params("sessionId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CloseSession POST /chat/sessions/:sessionId/close (operator).
func (h *ChatHandler) CloseSession(c *fiber.Ctx) error {
	if err := h.service.CloseSession(c.UserContext(), c.Params("sessionId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Analyze POST /chat/sessions/:sessionId/analyze (operator).
func (h *ChatHandler) Analyze(c *fiber.Ctx) error {
	ticket, err := h.service.AnalyzeSession(c.UserContext(), c.Params("sessionId"))
	if errors.Is(err, analyzer.ErrNotRelevant) {
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
			"data": fiber.Map{"skipped": true, "reason": "no product-related content"},
		})
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}
