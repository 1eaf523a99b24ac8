package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/arcwardens/outreach-backend/internal/models"
)

type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// GetByCampaignID returns the owner's analytics row for the campaign, or
// nil when none exists yet. Another owner's row under the same campaign
// id is never returned.
func (r *AnalyticsRepository) GetByCampaignID(userID, campaignID string) (*models.Analytics, error) {
	var analytics models.Analytics
	err := r.db.Where("user_id = ? AND campaign_id = ?", userID, campaignID).First(&analytics).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analytics, nil
}

// Upsert creates or partially updates the owner's analytics row. Only
// the counters present in the update are written.
func (r *AnalyticsRepository) Upsert(userID, campaignID string, update models.AnalyticsUpdate) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Analytics
		err := tx.Where("user_id = ? AND campaign_id = ?", userID, campaignID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row := models.Analytics{UserID: userID, CampaignID: campaignID, UpdatedAt: time.Now()}
			if update.EmailsSent != nil {
				row.EmailsSent = *update.EmailsSent
			}
			if update.EmailsOpened != nil {
				row.EmailsOpened = *update.EmailsOpened
			}
			if update.Replies != nil {
				row.Replies = *update.Replies
			}
			if update.BounceRate != nil {
				row.BounceRate = *update.BounceRate
			}
			return tx.Create(&row).Error
		}
		if err != nil {
			return err
		}

		fields := map[string]interface{}{"updated_at": time.Now()}
		if update.EmailsSent != nil {
			fields["emails_sent"] = *update.EmailsSent
		}
		if update.EmailsOpened != nil {
			fields["emails_opened"] = *update.EmailsOpened
		}
		if update.Replies != nil {
			fields["replies"] = *update.Replies
		}
		if update.BounceRate != nil {
			fields["bounce_rate"] = *update.BounceRate
		}
		return tx.Model(&models.Analytics{}).
			Where("user_id = ? AND campaign_id = ?", userID, campaignID).
			Updates(fields).Error
	})
}

// IncrementReplies bumps the reply counter, creating the row on first use.
func (r *AnalyticsRepository) IncrementReplies(userID, campaignID string, delta int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Analytics
		err := tx.Where("user_id = ? AND campaign_id = ?", userID, campaignID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.Analytics{
				UserID:     userID,
				CampaignID: campaignID,
				Replies:    delta,
				UpdatedAt:  time.Now(),
			}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&models.Analytics{}).
			Where("user_id = ? AND campaign_id = ?", userID, campaignID).
			Updates(map[string]interface{}{
				"replies":    gorm.Expr("replies + ?", delta),
				"updated_at": time.Now(),
			}).Error
	})
}
