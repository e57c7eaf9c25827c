package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-intel/internal/analyzer"
	"github.com/spec-kit/support-intel/internal/api/dto"
	"github.com/spec-kit/support-intel/internal/inbox"
	apperrors "github.com/spec-kit/support-intel/pkg/util"
)

// InboxHandler exposes the polled mailbox to operators.
type InboxHandler struct {
	service *inbox.Service
}

// NewInboxHandler constructs handler.
func NewInboxHandler(service *inbox.Service) *InboxHandler {
	return &InboxHandler{service: service}
}

// List GET /inbox.
func (h *InboxHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 120)
	msgs, err := h.service.List(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": msgs})
}

// Thread GET /inbox/threads/:threadId.
func (h *InboxHandler) Thread(c *fiber.Ctx) error {
	msgs, err := h.service.Thread(c.UserContext(), c.Params("threadId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": msgs})
}

// Attachment GET /inbox/threads/:threadId/messages/:messageId/attachments/:index.
func (h *InboxHandler) Attachment(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return apperrors.NewValidationError("invalid attachment index", nil)
	}
	payload, err := h.service.Attachment(c.UserContext(), c.Params("threadId"), c.Params("messageId"), index)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": payload})
}

// Analyze POST /inbox/threads/:threadId/analyze.
func (h *InboxHandler) Analyze(c *fiber.Ctx) error {
	ticket, err := h.service.AnalyzeThread(c.UserContext(), c.Params("threadId"))
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

// Reply POST /inbox/threads/:threadId/reply.
func (h *InboxHandler) Reply(c *fiber.Ctx) error {
	var req dto.InboxReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	attachments := make([]inbox.OutgoingAttachment, 0, len(req.Attachments))
	for _, att := range req.Attachments {
		attachments = append(attachments, inbox.OutgoingAttachment{
			Name:        att.Name,
			ContentType: att.ContentType,
			Base64:      att.Base64,
		})
	}
	if err := h.service.Reply(c.UserContext(), c.Params("threadId"), req.Text, attachments); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

// Hide POST /inbox/threads/:threadId/hide.
func (h *InboxHandler) Hide(c *fiber.Ctx) error {
	if err := h.service.HideThread(c.UserContext(), c.Params("threadId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
