package dto

// LoginRequest is the operator login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the session token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// IngestRequest is the manual "add issue" payload: a pasted conversation
// plus whatever the operator knows about the customer and product.
type IngestRequest struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	OrderID       string `json:"orderId"`
	ProductID     string `json:"productId"`
	Conversation  string `json:"conversation"`
}

// TicketPatchRequest updates rollup fields on a ticket. Absent fields are
// left untouched.
type TicketPatchRequest struct {
	Status             *string `json:"status"`
	Severity           *string `json:"severity"`
	RootCausePrimary   *string `json:"rootCausePrimary"`
	RootCauseSecondary *string `json:"rootCauseSecondary"`
}

// ReplyAttachment is one attachment on an email reply, base64 encoded.
type ReplyAttachment struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Base64      string `json:"base64"`
}

// InboxReplyRequest sends an operator reply into a mail thread.
type InboxReplyRequest struct {
	Text        string            `json:"text"`
	Attachments []ReplyAttachment `json:"attachments"`
}

// StartChatSessionRequest opens a widget session.
type StartChatSessionRequest struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	OrderNumber   string `json:"orderNumber"`
	IsLoggedIn    bool   `json:"isLoggedIn"`
}

// ChatMessageRequest posts one chat line.
type ChatMessageRequest struct {
	Text      string `json:"text"`
	AgentName string `json:"agentName"`
}
