package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-intel/internal/analyzer"
	"github.com/spec-kit/support-intel/internal/domain"
	"github.com/spec-kit/support-intel/internal/events"
	"github.com/spec-kit/support-intel/internal/observability"
	"github.com/spec-kit/support-intel/internal/reconcile"
	"github.com/spec-kit/support-intel/internal/storage"
	apperrors "github.com/spec-kit/support-intel/pkg/util"
)

// TicketService is the imperative shell around the reconciliation engine.
// It owns the in-memory ticket set and serializes every fold behind a mutex
// so there is exactly one logical writer; the engine itself stays pure.
type TicketService struct {
	mu      sync.Mutex
	tickets []domain.SupportTicket

	store      *storage.SmartStore
	analyzer   analyzer.Analyzer
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store      *storage.SmartStore
	Analyzer   analyzer.Analyzer
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		store:      deps.Store,
		analyzer:   deps.Analyzer,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Bootstrap loads the ticket set, running the one-time legacy migration when
// neither store has current-format data.
func (s *TicketService) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, source, err := s.store.LoadSharedFirst(ctx)
	if err != nil {
		return err
	}
	if source == storage.SourceEmpty {
		migrated, err := s.store.BootstrapLegacy(ctx)
		if err != nil {
			s.logger.Warn("legacy migration failed", zap.Error(err))
		}
		tickets = migrated
	}
	s.tickets = tickets
	s.logger.Info("ticket set loaded",
		zap.Int("tickets", len(tickets)),
		zap.String("source", string(source)))
	return nil
}

// ConversationInput describes a raw conversation arriving from any channel,
// before analysis.
type ConversationInput struct {
	CustomerName       string
	CustomerEmail      string
	CustomerFallbackID string
	Channel            domain.Channel
	Conversation       string
	OrderID            string
	ProductID          string
	External           map[string]any
}

// IngestConversation runs the full pipeline for one conversation: analyze,
// evaluate the agent reply, build the normalized message input, and fold it
// into the ticket set. Analysis failures abort before any fold happens; a
// conversation with no product mention is skipped with ErrNotRelevant.
func (s *TicketService) IngestConversation(ctx context.Context, input ConversationInput) (*domain.SupportTicket, error) {
	if !domain.ValidChannel(input.Channel) {
		return nil, apperrors.NewValidationError("unknown channel", map[string]any{"channel": input.Channel})
	}
	if strings.TrimSpace(input.Conversation) == "" {
		return nil, apperrors.NewValidationError("conversation text required", nil)
	}

	hints := analyzer.Context{OrderID: input.OrderID}
	if product := domain.ProductByID(input.ProductID); product != nil {
		hints.ProductName = product.Name
		hints.ProductAmazonID = product.AmazonID
	}

	result, err := s.analyzer.AnalyzeConversation(ctx, input.Conversation, hints)
	if errors.Is(err, analyzer.ErrNotRelevant) {
		s.metrics.RecordAnalysis("skipped")
		return nil, err
	}
	if err != nil {
		s.metrics.RecordAnalysis("error")
		return nil, apperrors.NewUpstreamError("analysis", err)
	}
	s.metrics.RecordAnalysis("ok")

	agentAnalysis, err := s.analyzer.AnalyzeAgentReply(ctx, result.AgentReplyText, result.Customer)
	if err != nil {
		// The agent evaluation is advisory; losing it does not block the fold.
		s.logger.Warn("agent reply analysis failed", zap.Error(err))
		agentAnalysis = nil
	}

	msgInput := domain.TicketMessageInput{
		CustomerName:       input.CustomerName,
		CustomerEmail:      input.CustomerEmail,
		CustomerFallbackID: input.CustomerFallbackID,
		Channel:            input.Channel,
		CustomerText:       result.Customer.Text,
		AgentReplyText:     result.AgentReplyText,
		OrderID:            input.OrderID,
		CustomerAnalysis:   result.Customer,
		AgentAnalysis:      agentAnalysis,
		External:           input.External,
	}
	if product := domain.ProductByID(input.ProductID); product != nil {
		msgInput.ProductID = product.ID
		msgInput.ProductName = product.Name
		msgInput.ProductAmazonID = product.AmazonID
	} else if result.DetectedProduct != nil {
		msgInput.ProductID = result.DetectedProduct.ID
		msgInput.ProductName = result.DetectedProduct.Name
		msgInput.ProductAmazonID = result.DetectedProduct.AmazonID
	}

	return s.Ingest(ctx, msgInput)
}

// Ingest folds one normalized message input into the ticket set and
// persists the result. Adapters must only call this with a validated
// analysis in hand.
func (s *TicketService) Ingest(ctx context.Context, input domain.TicketMessageInput) (*domain.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	before := len(s.tickets)
	priorStatus := s.statusForKeyLocked(reconcile.ResolveCustomerKey(input.CustomerEmail, input.CustomerFallbackID))

	next, affectedID := reconcile.FoldAffected(s.tickets, input, now)
	s.tickets = next
	s.store.SaveSmart(ctx, next)

	affected := s.ticketByIDLocked(affectedID)
	if affected == nil {
		return nil, apperrors.NewInternalError(errors.New("fold produced no affected ticket"))
	}

	if len(next) > before {
		s.metrics.RecordFold("created", string(input.Channel))
		s.publish(ctx, events.Event{
			Type:        events.EventTicketCreated,
			TicketID:    affected.ID,
			CustomerKey: affected.CustomerKey,
			Payload: events.TicketCreatedPayload{
				Channel:          input.Channel,
				Severity:         affected.Severity,
				Status:           affected.Status,
				RootCausePrimary: affected.RootCausePrimary,
			},
		})
	} else {
		reopened := affected.Status == domain.TicketStatusReopened && priorStatus != domain.TicketStatusReopened
		s.metrics.RecordFold("appended", string(input.Channel))
		s.publish(ctx, events.Event{
			Type:        events.EventTicketAppended,
			TicketID:    affected.ID,
			CustomerKey: affected.CustomerKey,
			Payload: events.TicketAppendedPayload{
				MessageID:    affected.Messages[0].ID,
				Channel:      input.Channel,
				Severity:     affected.Severity,
				MessageCount: len(affected.Messages),
				Reopened:     reopened,
			},
		})
		if reopened {
			s.publish(ctx, events.Event{
				Type:        events.EventTicketReopened,
				TicketID:    affected.ID,
				CustomerKey: affected.CustomerKey,
			})
		}
	}

	result := *affected
	return &result, nil
}

// List returns the ticket set sorted most recently active first.
func (s *TicketService) List(ctx context.Context) []domain.SupportTicket {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SupportTicket, len(s.tickets))
	copy(out, s.tickets)
	storage.SortByActivity(out)
	return out
}

// Get returns one ticket by id.
func (s *TicketService) Get(ctx context.Context, ticketID string) (*domain.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID == ticketID {
			result := s.tickets[i]
			return &result, nil
		}
	}
	return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
}

// TicketPatch is an operator-driven update of ticket rollup fields. Nil
// fields are left untouched.
type TicketPatch struct {
	Status             *domain.TicketStatus
	Severity           *domain.Severity
	RootCausePrimary   *string
	RootCauseSecondary *string
}

// UpdateTicket applies an operator patch. Status stays caller-controlled
// outside of folds, so any valid status may be set here including Closed.
func (s *TicketService) UpdateTicket(ctx context.Context, ticketID string, patch TicketPatch) (*domain.SupportTicket, error) {
	if patch.Status != nil && !domain.ValidTicketStatus(*patch.Status) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *patch.Status})
	}
	if patch.Severity != nil && !domain.ValidSeverity(*patch.Severity) {
		return nil, apperrors.NewValidationError("unknown severity", map[string]any{"severity": *patch.Severity})
	}
	if patch.RootCausePrimary != nil && !domain.ValidRootCause(*patch.RootCausePrimary) {
		return nil, apperrors.NewValidationError("unknown root cause", map[string]any{"rootCause": *patch.RootCausePrimary})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tickets {
		if s.tickets[i].ID != ticketID {
			continue
		}
		oldStatus := s.tickets[i].Status
		if patch.Status != nil {
			s.tickets[i].Status = *patch.Status
		}
		if patch.Severity != nil {
			s.tickets[i].Severity = *patch.Severity
		}
		if patch.RootCausePrimary != nil {
			s.tickets[i].RootCausePrimary = *patch.RootCausePrimary
		}
		if patch.RootCauseSecondary != nil {
			s.tickets[i].RootCauseSecondary = *patch.RootCauseSecondary
		}
		s.store.SaveSmart(ctx, s.tickets)

		if patch.Status != nil && *patch.Status != oldStatus {
			s.publish(ctx, events.Event{
				Type:        events.EventTicketUpdated,
				TicketID:    ticketID,
				CustomerKey: s.tickets[i].CustomerKey,
				Payload:     events.TicketUpdatedPayload{OldStatus: oldStatus, NewStatus: *patch.Status},
			})
		}
		result := s.tickets[i]
		return &result, nil
	}
	return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
}

// DeleteTicket removes a ticket entirely.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var customerKey string
	for i := range s.tickets {
		if s.tickets[i].ID == ticketID {
			customerKey = s.tickets[i].CustomerKey
		}
	}
	if customerKey == "" {
		return apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
	}

	s.tickets = reconcile.DeleteTicket(s.tickets, ticketID)
	s.store.SaveSmart(ctx, s.tickets)
	s.publish(ctx, events.Event{
		Type:        events.EventTicketDeleted,
		TicketID:    ticketID,
		CustomerKey: customerKey,
	})
	return nil
}

// DeleteMessage removes one message; the ticket itself is removed when its
// last message goes.
func (s *TicketService) DeleteMessage(ctx context.Context, ticketID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	var customerKey string
	for i := range s.tickets {
		if s.tickets[i].ID != ticketID {
			continue
		}
		customerKey = s.tickets[i].CustomerKey
		for _, m := range s.tickets[i].Messages {
			if m.ID == messageID {
				found = true
			}
		}
	}
	if !found {
		return apperrors.NewNotFound("message", map[string]any{"ticket_id": ticketID, "message_id": messageID})
	}

	s.tickets = reconcile.DeleteMessage(s.tickets, ticketID, messageID)
	s.store.SaveSmart(ctx, s.tickets)

	ticketRemoved := true
	for i := range s.tickets {
		if s.tickets[i].ID == ticketID {
			ticketRemoved = false
		}
	}
	s.publish(ctx, events.Event{
		Type:        events.EventMessageDeleted,
		TicketID:    ticketID,
		CustomerKey: customerKey,
		Payload:     events.MessageDeletedPayload{MessageID: messageID, TicketRemoved: ticketRemoved},
	})
	return nil
}

// TicketsForCustomer returns the tickets grouped under one customer key.
func (s *TicketService) TicketsForCustomer(ctx context.Context, customerKey string) []domain.SupportTicket {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.SupportTicket
	for i := range s.tickets {
		if s.tickets[i].CustomerKey == customerKey {
			out = append(out, s.tickets[i])
		}
	}
	storage.SortByActivity(out)
	return out
}

func (s *TicketService) statusForKeyLocked(customerKey string) domain.TicketStatus {
	var latest *domain.SupportTicket
	for i := range s.tickets {
		if s.tickets[i].CustomerKey != customerKey {
			continue
		}
		if latest == nil || s.tickets[i].LastActivityAt.After(latest.LastActivityAt) {
			latest = &s.tickets[i]
		}
	}
	if latest == nil {
		return ""
	}
	return latest.Status
}

func (s *TicketService) ticketByIDLocked(ticketID string) *domain.SupportTicket {
	for i := range s.tickets {
		if s.tickets[i].ID == ticketID {
			return &s.tickets[i]
		}
	}
	return nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
