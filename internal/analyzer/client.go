// Package analyzer wraps the external conversation-analysis API. It is the
// only component that talks to the model; everything it hands back has been
// validated against the closed domain enumerations. Calls fail closed: on
// transport or parse errors the caller gets an error and must not fold.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-intel/internal/config"
	"github.com/spec-kit/support-intel/internal/domain"
)

// ErrNotRelevant is returned when a conversation mentions no product and is
// skipped without an API call. Callers skip the fold for these.
var ErrNotRelevant = errors.New("conversation is not product related")

// Context carries optional hints the operator already knows.
type Context struct {
	ProductName     string `json:"productName"`
	ProductAmazonID string `json:"productAmazonId"`
	OrderID         string `json:"orderId"`
}

// ConversationAnalysis is the full result of analyzing one conversation.
type ConversationAnalysis struct {
	Customer        domain.AIAnalysis
	AgentReplyText  string
	DetectedProduct *domain.Product
	CustomerTurns   int
	AgentTurns      int
}

// Analyzer is the external analysis contract consumed by channel adapters.
type Analyzer interface {
	AnalyzeConversation(ctx context.Context, conversation string, hints Context) (*ConversationAnalysis, error)
	AnalyzeAgentReply(ctx context.Context, reply string, customer domain.AIAnalysis) (*domain.AgentReplyAnalysis, error)
}

// Client calls the Gemini generateContent API over HTTP.
type Client struct {
	cfg    config.AnalyzerConfig
	http   *http.Client
	logger *zap.Logger
}

// NewClient constructs the API client.
func NewClient(cfg config.AnalyzerConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout()},
		logger: logger,
	}
}

// AnalyzeConversation analyzes the customer side of a transcript and
// extracts the latest agent reply. Conversations with no product mention
// return ErrNotRelevant without an API call.
func (c *Client) AnalyzeConversation(ctx context.Context, conversation string, hints Context) (*ConversationAnalysis, error) {
	if !HasProductMention(conversation) {
		return nil, ErrNotRelevant
	}

	turns := ParseChatTurns(conversation)

	prompt := fmt.Sprintf("Full chat conversation:\n\"\"\"%s\"\"\"\n\nContext:\n%s\n\nChat Structure: %d customer messages, %d agent replies",
		conversation, mustJSON(hints), len(turns.Customer), len(turns.Agent))

	var payload customerPayload
	if err := c.generate(ctx, customerSystemPrompt(len(turns.Customer), len(turns.Agent)), prompt, &payload); err != nil {
		return nil, err
	}

	analysis := sanitizeCustomerAnalysis(payload.toAnalysis())
	if analysis.Text == "" {
		analysis.Text = strings.Join(turns.Customer, "\n")
	}

	result := &ConversationAnalysis{
		Customer:        analysis,
		AgentReplyText:  payload.AgentReplyText,
		DetectedProduct: domain.DetectProduct(conversation),
		CustomerTurns:   len(turns.Customer),
		AgentTurns:      len(turns.Agent),
	}
	if result.AgentReplyText == "" && len(turns.Agent) > 0 {
		result.AgentReplyText = strings.Join(turns.Agent, "\n")
	}
	return result, nil
}

// AnalyzeAgentReply evaluates the agent side of the conversation against the
// customer analysis already in hand. An empty reply yields nil without a call.
func (c *Client) AnalyzeAgentReply(ctx context.Context, reply string, customer domain.AIAnalysis) (*domain.AgentReplyAnalysis, error) {
	if strings.TrimSpace(reply) == "" {
		return nil, nil
	}

	prompt := fmt.Sprintf("Agent reply:\n\"\"\"%s\"\"\"\n\nCustomer context:\n%s", reply, mustJSON(map[string]any{
		"customerText":           customer.Text,
		"rootCausePrimary":       customer.RootCausePrimary,
		"sentiment":              customer.Sentiment,
		"replacementRequested":   customer.ReplacementRequested,
		"troubleshootingApplied": customer.TroubleshootingApplied,
	}))

	var payload agentPayload
	if err := c.generate(ctx, agentSystemPrompt(), prompt, &payload); err != nil {
		return nil, err
	}
	analysis := sanitizeAgentAnalysis(payload.toAnalysis())
	return &analysis, nil
}

// generate performs one generateContent call and decodes the JSON the model
// was instructed to emit into out.
func (c *Client) generate(ctx context.Context, system, prompt string, out any) error {
	reqBody := generateRequest{
		Contents:          []content{{Parts: []part{{Text: prompt}}}},
		SystemInstruction: &content{Parts: []part{{Text: system}}},
		GenerationConfig:  generationConfig{ResponseMIMEType: "application/json"},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("analysis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read analysis response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("analysis call rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(raw, 512)))
		return fmt.Errorf("analysis call failed with status %d", resp.StatusCode)
	}

	text, err := extractCandidateText(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("malformed analysis payload: %w", err)
	}
	return nil
}

// extractCandidateText pulls the JSON text out of the first candidate.
func extractCandidateText(raw []byte) (string, error) {
	var resp generateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode analysis response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("analysis response has no candidates")
	}
	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	// Models occasionally wrap the JSON in a fenced block despite the MIME hint.
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("analysis response candidate is empty")
	}
	return text, nil
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func truncate(b []byte, max int) []byte {
	if len(b) <= max {
		return b
	}
	return b[:max]
}
