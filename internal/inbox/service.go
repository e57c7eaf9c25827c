package inbox

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-intel/internal/domain"
	"github.com/spec-kit/support-intel/internal/observability"
	"github.com/spec-kit/support-intel/internal/service"
	apperrors "github.com/spec-kit/support-intel/pkg/util"
)

// Service is the email channel adapter. The poller keeps a local copy of the
// mailbox in Postgres; operators read threads, reply, and trigger analysis
// from there. Analysis runs the same pipeline as every other channel and
// folds under the Gmail channel with the thread id in the external bag.
type Service struct {
	client  *Client
	repo    Repository
	state   *State
	tickets *service.TicketService
	metrics *observability.Metrics
	logger  *zap.Logger
	max     int
}

// Dependencies bundles collaborators for the inbox service.
type Dependencies struct {
	Client   *Client
	Repo     Repository
	State    *State
	Tickets  *service.TicketService
	Metrics  *observability.Metrics
	Logger   *zap.Logger
	FetchMax int
}

// NewService constructs the inbox service.
func NewService(deps Dependencies) *Service {
	max := deps.FetchMax
	if max <= 0 {
		max = 25
	}
	return &Service{
		client:  deps.Client,
		repo:    deps.Repo,
		state:   deps.State,
		tickets: deps.Tickets,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		max:     max,
	}
}

// Poll runs one poll cycle: fetch messages past the watermark, skip hidden
// threads and already-seen ids, persist the rest, then advance the watermark.
func (s *Service) Poll(ctx context.Context) error {
	since, err := s.state.LastSeen(ctx)
	if err != nil {
		return err
	}

	items, err := s.client.FetchInbox(ctx, since, s.max)
	if err != nil {
		return err
	}

	hidden, err := s.state.HiddenThreads(ctx)
	if err != nil {
		s.logger.Warn("hidden thread lookup failed", zap.Error(err))
		hidden = map[string]bool{}
	}

	maxMs := since
	var stored int
	for _, msg := range items {
		if msg.DateMs > maxMs {
			maxMs = msg.DateMs
		}
		if hidden[msg.ThreadID] {
			continue
		}
		seen, err := s.state.Seen(ctx, msg.MessageID)
		if err != nil {
			s.logger.Warn("seen-id lookup failed", zap.Error(err))
		}
		if seen {
			continue
		}

		if err := s.persistMessage(ctx, msg); err != nil {
			s.logger.Warn("inbox message persist failed",
				zap.String("message_id", msg.MessageID), zap.Error(err))
			continue
		}
		if err := s.state.MarkSeen(ctx, msg.MessageID); err != nil {
			s.logger.Warn("seen-id mark failed", zap.Error(err))
		}
		stored++
	}

	if maxMs > since {
		if err := s.state.SetLastSeen(ctx, maxMs); err != nil {
			s.logger.Warn("watermark update failed", zap.Error(err))
		}
	}

	s.metrics.RecordPollCycle()
	if stored > 0 {
		s.logger.Info("inbox poll stored messages",
			zap.Int("fetched", len(items)), zap.Int("stored", stored))
	}
	return nil
}

// List returns the most recent stored messages, hidden threads filtered out.
func (s *Service) List(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 120
	}
	msgs, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	hidden, err := s.state.HiddenThreads(ctx)
	if err != nil {
		return msgs, nil
	}
	out := msgs[:0]
	for _, m := range msgs {
		if !hidden[m.ThreadID] {
			out = append(out, m)
		}
	}
	return out, nil
}

// Thread fetches a live thread from the mailbox, persists it, and returns
// the messages oldest first. When the mailbox is unreachable the stored copy
// is served instead.
func (s *Service) Thread(ctx context.Context, threadID string) ([]Message, error) {
	if strings.TrimSpace(threadID) == "" {
		return nil, apperrors.NewValidationError("thread id required", nil)
	}

	msgs, err := s.client.FetchThread(ctx, threadID)
	if err != nil {
		s.logger.Warn("live thread fetch failed, serving stored copy",
			zap.String("thread_id", threadID), zap.Error(err))
		stored, repoErr := s.repo.ThreadMessages(ctx, threadID)
		if repoErr != nil || len(stored) == 0 {
			return nil, err
		}
		return stored, nil
	}

	for _, msg := range msgs {
		if persistErr := s.persistMessage(ctx, msg); persistErr != nil {
			s.logger.Warn("thread message persist failed",
				zap.String("message_id", msg.MessageID), zap.Error(persistErr))
		}
	}
	return msgs, nil
}

// Attachment downloads one attachment payload from the mailbox.
func (s *Service) Attachment(ctx context.Context, threadID, messageID string, index int) (*AttachmentPayload, error) {
	return s.client.FetchAttachment(ctx, threadID, messageID, index)
}

// AnalyzeThread flattens a thread into a transcript and runs the full
// ingestion pipeline. The first inbound message supplies the customer
// identity; the thread id and subject ride in the external bag.
func (s *Service) AnalyzeThread(ctx context.Context, threadID string) (*domain.SupportTicket, error) {
	msgs, err := s.Thread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, apperrors.NewNotFound("thread", map[string]any{"thread_id": threadID})
	}

	var lines []string
	var first *Message
	for i := range msgs {
		msg := msgs[i]
		body := strings.TrimSpace(msg.BodyText)
		if body == "" {
			continue
		}
		if msg.IsFromMe {
			lines = append(lines, "agent: "+body)
		} else {
			lines = append(lines, "customer: "+body)
			if first == nil {
				first = &msgs[i]
			}
		}
	}
	if first == nil {
		return nil, apperrors.NewValidationError("thread has no inbound messages", map[string]any{"thread_id": threadID})
	}

	return s.tickets.IngestConversation(ctx, service.ConversationInput{
		CustomerName:  first.FromName,
		CustomerEmail: first.FromEmail,
		Channel:       domain.ChannelGmail,
		Conversation:  strings.Join(lines, "\n"),
		External: map[string]any{
			"threadId": threadID,
			"subject":  first.Subject,
		},
	})
}

// Reply sends an operator reply and refreshes the stored thread.
func (s *Service) Reply(ctx context.Context, threadID, text string, attachments []OutgoingAttachment) error {
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		return apperrors.NewValidationError("reply needs text or attachments", nil)
	}
	if err := s.client.Reply(ctx, threadID, text, attachments); err != nil {
		return err
	}
	// Reload so the sent message lands in the stored thread.
	if _, err := s.Thread(ctx, threadID); err != nil {
		s.logger.Warn("thread refresh after reply failed",
			zap.String("thread_id", threadID), zap.Error(err))
	}
	return nil
}

// HideThread removes a thread from inbox views and trashes it upstream.
func (s *Service) HideThread(ctx context.Context, threadID string) error {
	if err := s.state.HideThread(ctx, threadID); err != nil {
		return err
	}
	if err := s.client.TrashThread(ctx, threadID); err != nil {
		s.logger.Warn("upstream trash failed", zap.String("thread_id", threadID), zap.Error(err))
	}
	return s.repo.DeleteThread(ctx, threadID)
}

func (s *Service) persistMessage(ctx context.Context, msg Message) error {
	if err := s.repo.SaveMessage(ctx, msg); err != nil {
		return err
	}
	for _, att := range msg.Attachments {
		if err := s.repo.SaveAttachment(ctx, msg.MessageID, att); err != nil {
			return fmt.Errorf("attachment %d: %w", att.Index, err)
		}
	}
	return nil
}
