package repository

import (
	"gorm.io/gorm"

	"github.com/arcwardens/outreach-backend/internal/models"
)

type ResponseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Append records one inbound reply. The log is append-only; the row must
// carry the campaign owner's id.
func (r *ResponseRepository) Append(response *models.CampaignResponse) error {
	return r.db.Create(response).Error
}

// ListByCampaign returns the owner's recorded replies for a campaign,
// newest first.
func (r *ResponseRepository) ListByCampaign(userID, campaignID string) ([]models.CampaignResponse, error) {
	var responses []models.CampaignResponse
	err := r.db.Where("user_id = ? AND campaign_id = ?", userID, campaignID).
		Order("received_at DESC").
		Find(&responses).Error
	return responses, err
}

// ExistsForSender reports whether a reply from this sender is already
// recorded for the owner's campaign, so repeated scans do not duplicate
// rows.
func (r *ResponseRepository) ExistsForSender(userID, campaignID, fromEmail, subject string) (bool, error) {
	var count int64
	err := r.db.Model(&models.CampaignResponse{}).
		Where("user_id = ? AND campaign_id = ? AND from_email = ? AND subject = ?", userID, campaignID, fromEmail, subject).
		Count(&count).Error
	return count > 0, err
}
