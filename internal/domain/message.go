package domain

import "time"

// Channel identifies the transport a message arrived through.
type Channel string

const (
	ChannelManual   Channel = "Manual"
	ChannelEmail    Channel = "Email"
	ChannelChat     Channel = "Chat"
	ChannelAmazon   Channel = "Amazon"
	ChannelWhatsApp Channel = "WhatsApp"
	ChannelGmail    Channel = "Gmail"
)

// Channels lists every valid channel tag.
var Channels = []Channel{
	ChannelManual,
	ChannelEmail,
	ChannelChat,
	ChannelAmazon,
	ChannelWhatsApp,
	ChannelGmail,
}

// ValidChannel reports whether c is a known channel.
func ValidChannel(c Channel) bool {
	for _, candidate := range Channels {
		if candidate == c {
			return true
		}
	}
	return false
}

// TicketMessage is the immutable record of one conversational turn inside a
// ticket. Messages are owned by exactly one ticket and are never edited,
// only appended or removed.
type TicketMessage struct {
	ID               string              `json:"id"`
	CustomerKey      string              `json:"customerKey"`
	Channel          Channel             `json:"channel"`
	CustomerText     string              `json:"customerText"`
	AgentReplyText   string              `json:"agentReplyText,omitempty"`
	OrderID          string              `json:"orderId,omitempty"`
	ProductID        string              `json:"productId,omitempty"`
	ProductName      string              `json:"productName,omitempty"`
	ProductAmazonID  string              `json:"productAmazonId,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	CustomerAnalysis AIAnalysis          `json:"customerAnalysis"`
	AgentAnalysis    *AgentReplyAnalysis `json:"agentAnalysis,omitempty"`
	External         map[string]any      `json:"external,omitempty"`
}

// TicketMessageInput is one inbound conversational turn, normalized by a
// channel adapter and ready to be folded into the ticket set. Inputs are
// built immediately before reconciliation and discarded after the fold.
type TicketMessageInput struct {
	CustomerName       string
	CustomerEmail      string
	CustomerFallbackID string
	Channel            Channel
	CustomerText       string
	AgentReplyText     string
	OrderID            string
	ProductID          string
	ProductName        string
	ProductAmazonID    string
	CustomerAnalysis   AIAnalysis
	AgentAnalysis      *AgentReplyAnalysis
	External           map[string]any
}
