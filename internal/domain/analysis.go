package domain

// Sentiment classifies the emotional tone of a customer message.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// ValidSentiment reports whether s is a known sentiment.
func ValidSentiment(s Sentiment) bool {
	return s == SentimentPositive || s == SentimentNeutral || s == SentimentNegative
}

// AIAnalysis is the structured result of analyzing the customer side of a
// conversation. Channel adapters must only build one from a successful
// analyzer response; the reconciliation engine treats it as already valid.
type AIAnalysis struct {
	Text                   string       `json:"text"`
	RootCausePrimary       string       `json:"rootCausePrimary"`
	RootCauseSecondary     string       `json:"rootCauseSecondary"`
	Sentiment              Sentiment    `json:"sentiment"`
	Severity               Severity     `json:"severity"`
	SuggestedStatus        TicketStatus `json:"suggestedStatus"`
	Summary                string       `json:"summary"`
	Positives              []string     `json:"positives"`
	NegativePoints         []string     `json:"negativePoints"`
	PainPoints             []string     `json:"painPoints"`
	ReplacementRequested   bool         `json:"replacementRequested"`
	TroubleshootingApplied bool         `json:"troubleshootingApplied"`
}

// AgentReplyAnalysis is the structured evaluation of the agent side of a
// conversation.
type AgentReplyAnalysis struct {
	OverallQualityScore int      `json:"overallQualityScore"`
	Summary             string   `json:"summary"`
	PositiveThemes      []string `json:"positiveThemes"`
	NegativeThemes      []string `json:"negativeThemes"`
	FocusAreas          []string `json:"focusAreas"`
}
