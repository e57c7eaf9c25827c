package chat

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-intel/internal/domain"
	"github.com/spec-kit/support-intel/internal/service"
	apperrors "github.com/spec-kit/support-intel/pkg/util"
)

// Service is the chat widget channel adapter. Visitors post into sessions
// through the public widget endpoints; operators read, reply, and trigger
// analysis. An analyzed session folds under the Chat channel, with the
// session id as the customer fallback when the visitor gave no email.
type Service struct {
	repo    Repository
	tickets *service.TicketService
	logger  *zap.Logger
}

// NewService constructs the chat service.
func NewService(repo Repository, tickets *service.TicketService, logger *zap.Logger) *Service {
	return &Service{repo: repo, tickets: tickets, logger: logger}
}

// StartSessionInput carries what the widget knows about the visitor.
type StartSessionInput struct {
	CustomerName  string
	CustomerEmail string
	OrderNumber   string
	IsLoggedIn    bool
}

// StartSession opens a new widget session and returns it.
func (s *Service) StartSession(ctx context.Context, input StartSessionInput) (*Session, error) {
	session := &Session{
		SessionID:     uuid.NewString(),
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerEmail: strings.TrimSpace(input.CustomerEmail),
		OrderNumber:   strings.TrimSpace(input.OrderNumber),
		IsLoggedIn:    input.IsLoggedIn,
		Status:        SessionActive,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("chat session started", zap.String("session_id", session.SessionID))
	return session, nil
}

// Session returns one session.
func (s *Service) Session(ctx context.Context, sessionID string) (*Session, error) {
	return s.repo.GetSession(ctx, sessionID)
}

// Sessions lists recent sessions, most recently active first.
func (s *Service) Sessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	return s.repo.ListSessions(ctx, limit)
}

// PostCustomerMessage appends a visitor message to an active session.
func (s *Service) PostCustomerMessage(ctx context.Context, sessionID, text string) (*Message, error) {
	return s.post(ctx, sessionID, Message{
		SessionID:      sessionID,
		Text:           text,
		IsFromCustomer: true,
	})
}

// PostAgentMessage appends an operator reply. Agent messages are read by
// definition.
func (s *Service) PostAgentMessage(ctx context.Context, sessionID, agentName, text string) (*Message, error) {
	return s.post(ctx, sessionID, Message{
		SessionID: sessionID,
		Text:      text,
		AgentName: agentName,
		IsRead:    true,
	})
}

func (s *Service) post(ctx context.Context, sessionID string, msg Message) (*Message, error) {
	if strings.TrimSpace(msg.Text) == "" {
		return nil, apperrors.NewValidationError("message text required", nil)
	}
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != SessionActive {
		return nil, apperrors.NewValidationError("session is not active", map[string]any{"status": session.Status})
	}
	if err := s.repo.SaveMessage(ctx, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Messages returns the session transcript oldest first.
func (s *Service) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	if _, err := s.repo.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.Messages(ctx, sessionID)
}

// MarkRead marks every customer message in the session as read.
func (s *Service) MarkRead(ctx context.Context, sessionID string) error {
	return s.repo.MarkRead(ctx, sessionID)
}

// CloseSession ends a session.
func (s *Service) CloseSession(ctx context.Context, sessionID string) error {
	return s.repo.UpdateStatus(ctx, sessionID, SessionClosed)
}

// AnalyzeSession flattens the session transcript and runs the full ingestion
// pipeline under the Chat channel.
func (s *Service) AnalyzeSession(ctx context.Context, sessionID string) (*domain.SupportTicket, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.repo.Messages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, apperrors.NewValidationError("session has no messages", map[string]any{"session_id": sessionID})
	}

	var lines []string
	for _, m := range msgs {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		if m.IsFromCustomer {
			lines = append(lines, "customer: "+text)
		} else {
			lines = append(lines, "agent: "+text)
		}
	}

	input := service.ConversationInput{
		CustomerName:  session.CustomerName,
		CustomerEmail: session.CustomerEmail,
		Channel:       domain.ChannelChat,
		Conversation:  strings.Join(lines, "\n"),
		OrderID:       session.OrderNumber,
		External: map[string]any{
			"chatSessionId": sessionID,
		},
	}
	if input.CustomerEmail == "" {
		input.CustomerFallbackID = sessionID
	}
	return s.tickets.IngestConversation(ctx, input)
}
