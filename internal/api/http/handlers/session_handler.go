package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-intel/internal/api/dto"
	"github.com/spec-kit/support-intel/internal/auth"
	"github.com/spec-kit/support-intel/internal/config"
	apperrors "github.com/spec-kit/support-intel/pkg/util"
)

// SessionHandler signs the single provisioned operator in.
type SessionHandler struct {
	cfg    config.AuthConfig
	tokens *auth.TokenManager
}

// NewSessionHandler constructs handler.
func NewSessionHandler(cfg config.AuthConfig, tokens *auth.TokenManager) *SessionHandler {
	return &SessionHandler{cfg: cfg, tokens: tokens}
}

// Login POST /auth/login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	if req.Username != h.cfg.OperatorUsername || h.cfg.OperatorPasswordHash == "" {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(h.cfg.OperatorPasswordHash, req.Password); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := h.tokens.GenerateToken(req.Username)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	}})
}
