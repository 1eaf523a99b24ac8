package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
	"github.com/arcwardens/outreach-backend/internal/models"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create creates a new campaign
func (r *CampaignRepository) Create(campaign *models.Campaign) error {
	return r.db.Create(campaign).Error
}

// GetByUserIDAndID retrieves a campaign scoped by its owner. A campaign
// id that exists under a different owner is reported as not found, never
// leaked.
func (r *CampaignRepository) GetByUserIDAndID(userID, campaignID string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.Where("user_id = ? AND id = ?", userID, campaignID).
		First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.NotFound, "campaign %s not found", campaignID)
		}
		return nil, err
	}
	return &campaign, nil
}

// GetByUserID retrieves all campaigns for a specific user
func (r *CampaignRepository) GetByUserID(userID string) ([]*models.Campaign, error) {
	var campaigns []*models.Campaign
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&campaigns).Error
	return campaigns, err
}

// UpdateFields applies a column-scoped partial update. Only the columns
// present in fields are written; everything else is untouched.
func (r *CampaignRepository) UpdateFields(userID, campaignID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.Model(&models.Campaign{}).
		Where("user_id = ? AND id = ?", userID, campaignID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.Newf(apperrors.NotFound, "campaign %s not found", campaignID)
	}
	return nil
}

// Delete deletes a campaign and its analytics and reply rows in one
// transaction. All three deletes are scoped to the owner; the same
// campaign id under another owner is untouched.
func (r *CampaignRepository) Delete(userID, campaignID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND id = ?", userID, campaignID).
			Delete(&models.Campaign{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.Newf(apperrors.NotFound, "campaign %s not found", campaignID)
		}
		if err := tx.Where("user_id = ? AND campaign_id = ?", userID, campaignID).
			Delete(&models.Analytics{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND campaign_id = ?", userID, campaignID).
			Delete(&models.CampaignResponse{}).Error
	})
}

// SetPendingAction serializes the deferred tool call onto the campaign.
// A prior pending action is overwritten entirely; last write wins.
func (r *CampaignRepository) SetPendingAction(userID, campaignID string, action *models.PendingAction) error {
	encoded, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("failed to encode pending action: %w", err)
	}
	return r.UpdateFields(userID, campaignID, map[string]interface{}{
		"pending_action": datatypes.JSON(encoded),
	})
}

// AppendToolCall appends one record to the campaign's tool-call history.
func (r *CampaignRepository) AppendToolCall(userID, campaignID string, record models.ToolCallRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		campaign, err := loadCampaign(tx, userID, campaignID)
		if err != nil {
			return err
		}
		encoded, err := appendToolCall(campaign, record)
		if err != nil {
			return err
		}
		return tx.Model(campaign).
			Where("user_id = ? AND id = ?", userID, campaignID).
			Update("tool_calls", encoded).Error
	})
}

// ConsumePendingAction atomically claims the campaign's pending action:
// the pending-action column is cleared and the paid history entry is
// appended in a single guarded update. The update only matches while the
// pending-action column is still set, so a stale or repeated resume
// loses the claim and gets not-found instead of executing twice.
func (r *CampaignRepository) ConsumePendingAction(userID, campaignID, callID string) (*models.PendingAction, error) {
	var consumed *models.PendingAction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		campaign, err := loadCampaign(tx, userID, campaignID)
		if err != nil {
			return err
		}
		action, err := campaign.PendingActionRecord()
		if err != nil {
			return fmt.Errorf("failed to decode pending action: %w", err)
		}
		if action == nil {
			return apperrors.Newf(apperrors.NotFound, "campaign %s has no pending action", campaignID)
		}
		if callID != "" && action.CallID != callID {
			return apperrors.Newf(apperrors.NotFound, "pending action %s no longer exists", callID)
		}
		encoded, err := appendToolCall(campaign, models.ToolCallRecord{
			ToolName:  action.ToolName,
			Arguments: action.Arguments,
			Paid:      true,
			CalledAt:  time.Now(),
		})
		if err != nil {
			return err
		}
		result := tx.Model(&models.Campaign{}).
			Where("user_id = ? AND id = ? AND pending_action IS NOT NULL", userID, campaignID).
			Updates(map[string]interface{}{
				"pending_action": gorm.Expr("NULL"),
				"tool_calls":     encoded,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.Newf(apperrors.NotFound, "pending action %s no longer exists", action.CallID)
		}
		consumed = action
		return nil
	})
	if err != nil {
		return nil, err
	}
	return consumed, nil
}

func loadCampaign(tx *gorm.DB, userID, campaignID string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := tx.Where("user_id = ? AND id = ?", userID, campaignID).
		First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.NotFound, "campaign %s not found", campaignID)
		}
		return nil, err
	}
	return &campaign, nil
}

func appendToolCall(campaign *models.Campaign, record models.ToolCallRecord) (datatypes.JSON, error) {
	calls, err := campaign.ToolCallList()
	if err != nil {
		return nil, fmt.Errorf("failed to decode tool calls: %w", err)
	}
	calls = append(calls, record)
	encoded, err := json.Marshal(calls)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool calls: %w", err)
	}
	return datatypes.JSON(encoded), nil
}
