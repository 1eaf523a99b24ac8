package models

import (
	"time"
)

// CampaignResponse is one inbound reply matched to a campaign by sender
// address. Rows are append-only and scoped to the campaign owner, since
// campaign ids are only unique per owner.
type CampaignResponse struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"-" gorm:"type:varchar(255);not null;index:idx_responses_user_campaign"`
	CampaignID string    `json:"campaignId" gorm:"type:varchar(255);not null;index:idx_responses_user_campaign"`
	FromEmail  string    `json:"fromEmail" gorm:"type:varchar(255);not null"`
	FromName   string    `json:"fromName" gorm:"type:varchar(255)"`
	Subject    string    `json:"subject" gorm:"type:text"`
	Snippet    string    `json:"snippet" gorm:"type:text"`
	ReceivedAt time.Time `json:"receivedAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName specifies the table name for the CampaignResponse model
func (CampaignResponse) TableName() string {
	return "campaign_responses"
}
