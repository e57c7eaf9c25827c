package analyzer

import (
	"fmt"
	"strings"

	"github.com/spec-kit/support-intel/internal/domain"
)

// Wire shapes for the generateContent API.

type generateRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// customerPayload is the JSON shape the model is instructed to produce for
// the customer-side analysis.
type customerPayload struct {
	Text                   string   `json:"text"`
	RootCausePrimary       string   `json:"rootCausePrimary"`
	RootCauseSecondary     string   `json:"rootCauseSecondary"`
	Sentiment              string   `json:"sentiment"`
	Severity               string   `json:"severity"`
	SuggestedStatus        string   `json:"suggestedStatus"`
	Summary                string   `json:"summary"`
	Positives              []string `json:"positives"`
	NegativePoints         []string `json:"negativePoints"`
	PainPoints             []string `json:"painPoints"`
	ReplacementRequested   bool     `json:"replacementRequested"`
	TroubleshootingApplied bool     `json:"troubleshootingApplied"`
	AgentReplyText         string   `json:"agentReplyText"`
}

func (p customerPayload) toAnalysis() domain.AIAnalysis {
	return domain.AIAnalysis{
		Text:                   p.Text,
		RootCausePrimary:       p.RootCausePrimary,
		RootCauseSecondary:     p.RootCauseSecondary,
		Sentiment:              domain.Sentiment(p.Sentiment),
		Severity:               domain.Severity(p.Severity),
		SuggestedStatus:        domain.TicketStatus(p.SuggestedStatus),
		Summary:                p.Summary,
		Positives:              p.Positives,
		NegativePoints:         p.NegativePoints,
		PainPoints:             p.PainPoints,
		ReplacementRequested:   p.ReplacementRequested,
		TroubleshootingApplied: p.TroubleshootingApplied,
	}
}

// agentPayload is the JSON shape for the agent-reply evaluation.
type agentPayload struct {
	OverallQualityScore int      `json:"overallQualityScore"`
	Summary             string   `json:"summary"`
	PositiveThemes      []string `json:"positiveThemes"`
	NegativeThemes      []string `json:"negativeThemes"`
	FocusAreas          []string `json:"focusAreas"`
}

func (p agentPayload) toAnalysis() domain.AgentReplyAnalysis {
	return domain.AgentReplyAnalysis{
		OverallQualityScore: p.OverallQualityScore,
		Summary:             p.Summary,
		PositiveThemes:      p.PositiveThemes,
		NegativeThemes:      p.NegativeThemes,
		FocusAreas:          p.FocusAreas,
	}
}

func customerSystemPrompt(customerTurns, agentTurns int) string {
	var products []string
	for _, p := range domain.Products {
		products = append(products, fmt.Sprintf("%s (ID: %s, Amazon: %s)", p.Name, p.ID, p.AmazonID))
	}
	return fmt.Sprintf(`You are an expert customer support analyst.

Analyze the full conversation: %d customer messages, %d agent replies.

Available products: %s

Return a single JSON object with these fields:
text (concatenated customer messages), rootCausePrimary (one of: %s),
rootCauseSecondary, sentiment (Positive|Neutral|Negative),
severity (Normal|Urgent|Critical), suggestedStatus (one of: %s),
summary, positives (subset of: %s), negativePoints (subset of: %s),
painPoints (subset of: %s), replacementRequested (bool),
troubleshootingApplied (bool), agentReplyText (latest agent reply verbatim).

Extract every problem mentioned, detect troubleshooting attempts and
replacement requests whether explicit or implicit, and never invent tags
outside the listed sets.`,
		customerTurns, agentTurns,
		strings.Join(products, ", "),
		strings.Join(domain.RootCauses, " | "),
		joinStatuses(),
		strings.Join(domain.StandardPositives, " | "),
		strings.Join(domain.StandardNegatives, " | "),
		strings.Join(domain.CustomerPainPoints, " | "))
}

func agentSystemPrompt() string {
	return fmt.Sprintf(`You are a customer service quality coach.

Evaluate the agent reply against the customer context. Return a single JSON
object with: overallQualityScore (0-100), summary,
positiveThemes (subset of: %s),
negativeThemes (subset of: %s),
focusAreas (short, concrete coaching suggestions).`,
		strings.Join(domain.AgentPositiveThemes, " | "),
		strings.Join(domain.AgentNegativeThemes, " | "))
}

func joinStatuses() string {
	var statuses []string
	for _, s := range domain.TicketStatuses {
		statuses = append(statuses, string(s))
	}
	return strings.Join(statuses, " | ")
}
