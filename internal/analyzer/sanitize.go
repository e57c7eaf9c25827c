package analyzer

import "github.com/spec-kit/support-intel/internal/domain"

// sanitizeCustomerAnalysis validates a decoded analysis against the closed
// enumerations. Unknown root causes fall back to the Uncategorized sentinel,
// unknown enum values to their documented defaults, and unknown tags are
// dropped. The core never sees a value outside its domain.
func sanitizeCustomerAnalysis(a domain.AIAnalysis) domain.AIAnalysis {
	if !domain.ValidRootCause(a.RootCausePrimary) {
		a.RootCausePrimary = domain.RootCauseUncategorized
	}
	if !domain.ValidSeverity(a.Severity) {
		a.Severity = domain.SeverityNormal
	}
	if !domain.ValidTicketStatus(a.SuggestedStatus) {
		a.SuggestedStatus = domain.TicketStatusOpen
	}
	if !domain.ValidSentiment(a.Sentiment) {
		a.Sentiment = domain.SentimentNeutral
	}
	a.Positives = domain.FilterTags(a.Positives, domain.StandardPositives)
	a.NegativePoints = domain.FilterTags(a.NegativePoints, domain.StandardNegatives)
	a.PainPoints = domain.FilterTags(a.PainPoints, domain.CustomerPainPoints)
	return a
}

// sanitizeAgentAnalysis validates the agent-side evaluation.
func sanitizeAgentAnalysis(a domain.AgentReplyAnalysis) domain.AgentReplyAnalysis {
	if a.OverallQualityScore < 0 {
		a.OverallQualityScore = 0
	}
	if a.OverallQualityScore > 100 {
		a.OverallQualityScore = 100
	}
	a.PositiveThemes = domain.FilterTags(a.PositiveThemes, domain.AgentPositiveThemes)
	a.NegativeThemes = domain.FilterTags(a.NegativeThemes, domain.AgentNegativeThemes)
	return a
}
