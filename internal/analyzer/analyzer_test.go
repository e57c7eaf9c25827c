package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/support-intel/internal/config"
	"github.com/spec-kit/support-intel/internal/domain"
)

func TestParseChatTurns(t *testing.T) {
	conversation := "customer: my pad leaks\nAgent: sorry to hear that\ncustomer: it deflates overnight\nagent: we can replace it\n\nraw line without prefix"
	turns := ParseChatTurns(conversation)
	if len(turns.Customer) != 2 {
		t.Fatalf("customer turns = %d, want 2", len(turns.Customer))
	}
	if len(turns.Agent) != 2 {
		t.Fatalf("agent turns = %d, want 2", len(turns.Agent))
	}
	if turns.Customer[0] != "my pad leaks" {
		t.Errorf("first customer turn = %q", turns.Customer[0])
	}
	if turns.Agent[1] != "we can replace it" {
		t.Errorf("second agent turn = %q", turns.Agent[1])
	}
}

func TestHasProductMention(t *testing.T) {
	if !HasProductMention("My Artemis 3D deflates overnight") {
		t.Errorf("product conversation not detected")
	}
	if HasProductMention("hello, what are your opening hours?") {
		t.Errorf("unrelated conversation flagged as product mention")
	}
}

func TestSanitizeCustomerAnalysis(t *testing.T) {
	dirty := domain.AIAnalysis{
		RootCausePrimary: "Made Up Cause",
		Severity:         "Apocalyptic",
		SuggestedStatus:  "Escalated",
		Sentiment:        "Angry",
		Positives:        []string{"Holds Air All Night", "Invented Tag"},
		NegativePoints:   []string{"Valve Issues", "Another Invention"},
		PainPoints:       []string{"Side-sleeper incompatibility"},
	}
	clean := sanitizeCustomerAnalysis(dirty)

	if clean.RootCausePrimary != domain.RootCauseUncategorized {
		t.Errorf("rootCausePrimary = %q, want sentinel", clean.RootCausePrimary)
	}
	if clean.Severity != domain.SeverityNormal {
		t.Errorf("severity = %q, want Normal", clean.Severity)
	}
	if clean.SuggestedStatus != domain.TicketStatusOpen {
		t.Errorf("suggestedStatus = %q, want Open", clean.SuggestedStatus)
	}
	if clean.Sentiment != domain.SentimentNeutral {
		t.Errorf("sentiment = %q, want Neutral", clean.Sentiment)
	}
	if len(clean.Positives) != 1 || clean.Positives[0] != "Holds Air All Night" {
		t.Errorf("positives = %v", clean.Positives)
	}
	if len(clean.NegativePoints) != 1 || clean.NegativePoints[0] != "Valve Issues" {
		t.Errorf("negativePoints = %v", clean.NegativePoints)
	}
}

func TestExtractCandidateText(t *testing.T) {
	raw := []byte(`{"candidates":[{"content":{"parts":[{"text":"` + "```json\\n{\\\"summary\\\":\\\"ok\\\"}\\n```" + `"}]}}]}`)
	text, err := extractCandidateText(raw)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("fenced JSON not unwrapped: %v (text %q)", err, text)
	}
	if decoded["summary"] != "ok" {
		t.Errorf("decoded = %v", decoded)
	}

	if _, err := extractCandidateText([]byte(`{"candidates":[]}`)); err == nil {
		t.Errorf("empty candidates did not error")
	}
}

func TestAnalyzeConversation_NotRelevantSkipsCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(config.AnalyzerConfig{BaseURL: server.URL, Model: "test", TimeoutSeconds: 5}, zap.NewNop())
	_, err := client.AnalyzeConversation(context.Background(), "customer: what time do you open?", Context{})
	if err != ErrNotRelevant {
		t.Fatalf("err = %v, want ErrNotRelevant", err)
	}
	if called {
		t.Fatalf("irrelevant conversation still hit the API")
	}
}

func TestAnalyzeConversation_ParsesResponse(t *testing.T) {
	payload := customerPayload{
		Text:                 "my valve leaks",
		RootCausePrimary:     "Valve Leak",
		Sentiment:            "Negative",
		Severity:             "Urgent",
		SuggestedStatus:      "Open",
		Summary:              "valve leak report",
		ReplacementRequested: true,
		AgentReplyText:       "we will send a replacement",
	}
	inner, _ := json.Marshal(payload)
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": string(inner)}}}},
		},
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer server.Close()

	client := NewClient(config.AnalyzerConfig{BaseURL: server.URL, Model: "test", TimeoutSeconds: 5}, zap.NewNop())
	result, err := client.AnalyzeConversation(context.Background(),
		"customer: my artemis valve leaks\nagent: we will send a replacement", Context{})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.Customer.RootCausePrimary != "Valve Leak" {
		t.Errorf("rootCausePrimary = %q", result.Customer.RootCausePrimary)
	}
	if result.Customer.Severity != domain.SeverityUrgent {
		t.Errorf("severity = %q", result.Customer.Severity)
	}
	if !result.Customer.ReplacementRequested {
		t.Errorf("replacementRequested lost")
	}
	if result.AgentReplyText != "we will send a replacement" {
		t.Errorf("agentReplyText = %q", result.AgentReplyText)
	}
	if result.DetectedProduct == nil || result.DetectedProduct.ID != "artemis_3d" {
		t.Errorf("detectedProduct = %+v", result.DetectedProduct)
	}
	if result.CustomerTurns != 1 || result.AgentTurns != 1 {
		t.Errorf("turns = %d/%d", result.CustomerTurns, result.AgentTurns)
	}
}

func TestAnalyzeConversation_FailsClosedOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(config.AnalyzerConfig{BaseURL: server.URL, Model: "test", TimeoutSeconds: 5}, zap.NewNop())
	if _, err := client.AnalyzeConversation(context.Background(), "customer: valve leak", Context{}); err == nil {
		t.Fatalf("upstream failure did not surface an error")
	}
}

func TestAnalyzeAgentReply_EmptyReplySkips(t *testing.T) {
	client := NewClient(config.AnalyzerConfig{BaseURL: "http://invalid.localhost", Model: "test"}, zap.NewNop())
	result, err := client.AnalyzeAgentReply(context.Background(), "   ", domain.AIAnalysis{})
	if err != nil || result != nil {
		t.Fatalf("empty reply: result %v err %v, want nil/nil", result, err)
	}
}
