package models

// ChatRequest is one user turn for the campaign agent.
type ChatRequest struct {
	Message             string        `json:"message" binding:"required"`
	CampaignID          string        `json:"campaignId" binding:"required"`
	ConversationHistory []ChatMessage `json:"conversationHistory"`
}

// ChatResponse is the result of one orchestrator turn. When a paid tool
// was requested, RequiresPayment is set and PendingAction describes the
// deferred call; nothing has executed yet.
type ChatResponse struct {
	Success         bool           `json:"success"`
	Message         string         `json:"message"`
	RequiresPayment bool           `json:"requires_payment,omitempty"`
	Cost            float64        `json:"cost,omitempty"`
	PendingAction   *PendingAction `json:"pending_action,omitempty"`
	Iterations      int            `json:"iterations,omitempty"`
}

// PayRequest confirms an out-of-band payment for a campaign.
type PayRequest struct {
	CampaignID string  `json:"campaignId" binding:"required"`
	Amount     float64 `json:"amount" binding:"required"`
}

// PayResponse reports the executed pending action and the continuation
// of the agent loop, which may itself gate a second paid tool.
type PayResponse struct {
	ChatResponse
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transactionId"`
}

// VerifyStatusResponse reports the result of a mailbox reply scan.
type VerifyStatusResponse struct {
	Success      bool               `json:"success"`
	RepliesFound int                `json:"repliesFound"`
	Responses    []CampaignResponse `json:"responses"`
}

// AuthRequest exchanges a provider credential for a verified identity.
type AuthRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// AuthResponse returns the verified identity.
type AuthResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}
