package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Campaign statuses. A payment event moves a campaign from draft to
// active; no further states exist.
const (
	CampaignStatusDraft  = "draft"
	CampaignStatusActive = "active"
)

// Campaign is the unit of an outreach workflow: a conversation, a
// resolved contact list and a payment/execution state. The identifier is
// caller-supplied and unique per owner, so the primary key is composite.
type Campaign struct {
	ID       string   `json:"id" gorm:"primaryKey;type:varchar(255)"`
	UserID   string   `json:"userId" gorm:"primaryKey;type:varchar(255);index"`
	Name     string   `json:"name" gorm:"type:varchar(255);not null"`
	Status   string   `json:"status" gorm:"type:varchar(20);default:'draft'"`
	Executed bool     `json:"executed" gorm:"default:false"`
	Cost     *float64 `json:"cost"`

	// Nested structures are kept as JSON columns; encode/decode lives on
	// this type so no other component repeats ad hoc parsing.
	Contacts      datatypes.JSON `json:"contacts,omitempty" gorm:"type:jsonb"`
	Messages      datatypes.JSON `json:"messages,omitempty" gorm:"type:jsonb"`
	ToolCalls     datatypes.JSON `json:"toolCalls,omitempty" gorm:"column:tool_calls;type:jsonb"`
	PendingAction datatypes.JSON `json:"pendingAction,omitempty" gorm:"column:pending_action;type:jsonb"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Campaign model
func (Campaign) TableName() string {
	return "campaigns"
}

// ChatMessage is one conversation turn. The caller's message list is the
// source of truth for history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolCallRecord is one entry in the campaign's tool-call audit trail.
type ToolCallRecord struct {
	ToolName  string                 `json:"tool_name"`
	Arguments map[string]interface{} `json:"arguments"`
	Iteration int                    `json:"iteration"`
	Paid      bool                   `json:"paid"`
	CalledAt  time.Time              `json:"called_at"`
}

// PendingAction is the single deferred, paid tool invocation awaiting
// payment confirmation before execution.
type PendingAction struct {
	ToolName  string                 `json:"tool_name"`
	Arguments map[string]interface{} `json:"arguments"`
	CallID    string                 `json:"call_id"`
	Cost      float64                `json:"cost"`
	CreatedAt time.Time              `json:"created_at"`
}

// ContactList decodes the stored contact snapshot. A missing column
// yields an empty list.
func (c *Campaign) ContactList() ([]Contact, error) {
	if len(c.Contacts) == 0 || string(c.Contacts) == "null" {
		return nil, nil
	}
	var contacts []Contact
	if err := json.Unmarshal(c.Contacts, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// SetContactList overwrites the stored contact snapshot. At most one
// latest snapshot is kept.
func (c *Campaign) SetContactList(contacts []Contact) error {
	encoded, err := json.Marshal(contacts)
	if err != nil {
		return err
	}
	c.Contacts = datatypes.JSON(encoded)
	return nil
}

// MessageList decodes the stored conversation turns.
func (c *Campaign) MessageList() ([]ChatMessage, error) {
	if len(c.Messages) == 0 || string(c.Messages) == "null" {
		return nil, nil
	}
	var messages []ChatMessage
	if err := json.Unmarshal(c.Messages, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SetMessageList overwrites the stored conversation turns.
func (c *Campaign) SetMessageList(messages []ChatMessage) error {
	encoded, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	c.Messages = datatypes.JSON(encoded)
	return nil
}

// ToolCallList decodes the tool-call audit trail.
func (c *Campaign) ToolCallList() ([]ToolCallRecord, error) {
	if len(c.ToolCalls) == 0 || string(c.ToolCalls) == "null" {
		return nil, nil
	}
	var calls []ToolCallRecord
	if err := json.Unmarshal(c.ToolCalls, &calls); err != nil {
		return nil, err
	}
	return calls, nil
}

// PendingActionRecord decodes the pending action, or nil when none is
// outstanding.
func (c *Campaign) PendingActionRecord() (*PendingAction, error) {
	if len(c.PendingAction) == 0 || string(c.PendingAction) == "null" {
		return nil, nil
	}
	var action PendingAction
	if err := json.Unmarshal(c.PendingAction, &action); err != nil {
		return nil, err
	}
	return &action, nil
}

// CreateCampaignRequest represents the request to create or rename a campaign
type CreateCampaignRequest struct {
	CampaignID string        `json:"campaignId" binding:"required" example:"camp_8f2e1a"`
	Name       string        `json:"name" example:"Fintech CTO outreach"`
	Messages   []ChatMessage `json:"messages"`
}

// UpdateCampaignRequest represents a partial update; omitted fields are
// left untouched, not nulled.
type UpdateCampaignRequest struct {
	CampaignID string   `json:"campaignId" binding:"required" example:"camp_8f2e1a"`
	Name       *string  `json:"name"`
	Executed   *bool    `json:"executed"`
	Cost       *float64 `json:"cost"`
	Status     *string  `json:"status"`
}
