package analyzer

import "strings"

// ChatTurns is a conversation split into customer and agent sides.
type ChatTurns struct {
	Customer []string
	Agent    []string
}

// ParseChatTurns splits a "customer:" / "agent:" prefixed transcript into
// sides. Arabic speaker labels are accepted alongside the English ones.
func ParseChatTurns(conversation string) ChatTurns {
	var turns ChatTurns
	for _, line := range strings.Split(conversation, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "customer:"):
			turns.Customer = append(turns.Customer, strings.TrimSpace(line[len("customer:"):]))
		case strings.HasPrefix(lower, "عميل:"):
			turns.Customer = append(turns.Customer, strings.TrimSpace(line[len("عميل:"):]))
		case strings.HasPrefix(lower, "agent:"):
			turns.Agent = append(turns.Agent, strings.TrimSpace(line[len("agent:"):]))
		case strings.HasPrefix(lower, "وكيل:"):
			turns.Agent = append(turns.Agent, strings.TrimSpace(line[len("وكيل:"):]))
		case strings.HasPrefix(lower, "موظف:"):
			turns.Agent = append(turns.Agent, strings.TrimSpace(line[len("موظف:"):]))
		}
	}
	return turns
}

// productKeywords gates analysis: conversations mentioning none of these are
// not support-relevant and are skipped without an API call.
var productKeywords = []string{
	"artemis", "ether", "oxylus", "pillow", "apolloair", "apollo air",
	"sleeping pad", "leak", "valve", "inflate", "deflate", "pump", "air",
	"mattress", "camping", "gear doctors", "deflation", "bubble", "noise",
	"comfort", "warranty", "replacement", "refund", "order",
}

// HasProductMention reports whether the conversation touches any product keyword.
func HasProductMention(conversation string) bool {
	lower := strings.ToLower(conversation)
	for _, keyword := range productKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
