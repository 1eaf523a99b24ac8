package models

import (
	"time"
)

// Analytics holds delivery counters for a campaign, one row per owner
// and campaign. Campaign ids are only unique per owner, so the counters
// are keyed by both columns.
type Analytics struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	UserID       string    `json:"-" gorm:"type:varchar(255);not null;uniqueIndex:idx_analytics_user_campaign"`
	CampaignID   string    `json:"campaignId" gorm:"type:varchar(255);not null;uniqueIndex:idx_analytics_user_campaign"`
	EmailsSent   int       `json:"emailsSent" gorm:"default:0"`
	EmailsOpened int       `json:"emailsOpened" gorm:"default:0"`
	Replies      int       `json:"replies" gorm:"default:0"`
	BounceRate   float64   `json:"bounceRate" gorm:"default:0"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Analytics model
func (Analytics) TableName() string {
	return "analytics"
}

// AnalyticsData is the counters payload returned by the API. Placeholder
// is true when the numbers were synthesized for an executed campaign that
// has no recorded counters yet, so consumers can tell fake reach from
// real activity.
type AnalyticsData struct {
	EmailsSent   int     `json:"emailsSent"`
	EmailsOpened int     `json:"emailsOpened"`
	Replies      int     `json:"replies"`
	BounceRate   float64 `json:"bounceRate"`
	Placeholder  bool    `json:"placeholder,omitempty"`
}

// AnalyticsUpdate is a partial counter update; nil fields are untouched.
type AnalyticsUpdate struct {
	EmailsSent   *int
	EmailsOpened *int
	Replies      *int
	BounceRate   *float64
}
