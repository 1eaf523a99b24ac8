package services

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/arcwardens/outreach-backend/internal/database/repository"
	"github.com/arcwardens/outreach-backend/internal/models"
)

const defaultCampaignName = "New Campaign"

type CampaignService struct {
	campaignRepo  *repository.CampaignRepository
	analyticsRepo *repository.AnalyticsRepository
	responseRepo  *repository.ResponseRepository
}

func NewCampaignService(
	campaignRepo *repository.CampaignRepository,
	analyticsRepo *repository.AnalyticsRepository,
	responseRepo *repository.ResponseRepository,
) *CampaignService {
	return &CampaignService{
		campaignRepo:  campaignRepo,
		analyticsRepo: analyticsRepo,
		responseRepo:  responseRepo,
	}
}

// CreateOrRename creates the campaign on first sight, or renames it when
// the caller already owns one with that id. The name falls back to the
// first user message, truncated, then to a fixed default.
func (s *CampaignService) CreateOrRename(userID string, req *models.CreateCampaignRequest) (*models.Campaign, error) {
	name := deriveCampaignName(req)

	existing, err := s.campaignRepo.GetByUserIDAndID(userID, req.CampaignID)
	if err == nil {
		if err := s.campaignRepo.UpdateFields(userID, req.CampaignID, map[string]interface{}{"name": name}); err != nil {
			return nil, err
		}
		existing.Name = name
		return existing, nil
	}

	campaign := &models.Campaign{
		ID:     req.CampaignID,
		UserID: userID,
		Name:   name,
		Status: models.CampaignStatusDraft,
	}
	if len(req.Messages) > 0 {
		if err := campaign.SetMessageList(req.Messages); err != nil {
			return nil, fmt.Errorf("failed to encode messages: %w", err)
		}
	}
	if err := s.campaignRepo.Create(campaign); err != nil {
		return nil, err
	}
	logrus.Infof("Created campaign %s for user %s", campaign.ID, userID)
	return campaign, nil
}

func deriveCampaignName(req *models.CreateCampaignRequest) string {
	if req.Name != "" {
		return req.Name
	}
	for _, msg := range req.Messages {
		if msg.Role == "user" && strings.TrimSpace(msg.Content) != "" {
			return truncateRunes(strings.TrimSpace(msg.Content), 50)
		}
	}
	return defaultCampaignName
}

// truncateRunes cuts on rune boundaries so a multi-byte character is
// never split.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Update applies a partial update; omitted fields are left untouched.
func (s *CampaignService) Update(userID string, req *models.UpdateCampaignRequest) error {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Executed != nil {
		fields["executed"] = *req.Executed
	}
	if req.Cost != nil {
		fields["cost"] = *req.Cost
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	return s.campaignRepo.UpdateFields(userID, req.CampaignID, fields)
}

func (s *CampaignService) Delete(userID, campaignID string) error {
	return s.campaignRepo.Delete(userID, campaignID)
}

func (s *CampaignService) List(userID string) ([]*models.Campaign, error) {
	return s.campaignRepo.GetByUserID(userID)
}

func (s *CampaignService) Get(userID, campaignID string) (*models.Campaign, error) {
	return s.campaignRepo.GetByUserIDAndID(userID, campaignID)
}

// Analytics returns the campaign's counters. An executed campaign with
// no recorded counters gets deterministic placeholder numbers seeded
// from the campaign id, flagged as such.
func (s *CampaignService) Analytics(userID, campaignID string) (*models.Campaign, *models.AnalyticsData, error) {
	campaign, err := s.campaignRepo.GetByUserIDAndID(userID, campaignID)
	if err != nil {
		return nil, nil, err
	}

	row, err := s.analyticsRepo.GetByCampaignID(userID, campaignID)
	if err != nil {
		return nil, nil, err
	}
	if row != nil {
		return campaign, &models.AnalyticsData{
			EmailsSent:   row.EmailsSent,
			EmailsOpened: row.EmailsOpened,
			Replies:      row.Replies,
			BounceRate:   row.BounceRate,
		}, nil
	}
	if campaign.Executed {
		data := PlaceholderAnalytics(campaignID)
		return campaign, &data, nil
	}
	return campaign, &models.AnalyticsData{}, nil
}

// PlaceholderAnalytics synthesizes plausible counters for an executed
// campaign that has no recorded numbers yet. Seeded from the campaign id
// so repeated reads agree.
func PlaceholderAnalytics(campaignID string) models.AnalyticsData {
	h := fnv.New64a()
	h.Write([]byte(campaignID))
	r := rand.New(rand.NewSource(int64(h.Sum64())))

	sent := 500 + r.Intn(4501)
	openedLo := int(float64(sent) * 0.15)
	openedHi := int(float64(sent) * 0.35)
	opened := openedLo + r.Intn(openedHi-openedLo+1)
	repliesLo := int(float64(opened) * 0.05)
	repliesHi := int(float64(opened) * 0.15)
	replies := repliesLo + r.Intn(repliesHi-repliesLo+1)
	bounce := math.Round((1.0+r.Float64()*4.0)*10) / 10

	return models.AnalyticsData{
		EmailsSent:   sent,
		EmailsOpened: opened,
		Replies:      replies,
		BounceRate:   bounce,
		Placeholder:  true,
	}
}

// MarkPaid transitions a campaign to its executed, active state with the
// confirmed cost.
func (s *CampaignService) MarkPaid(userID, campaignID string, cost float64) error {
	return s.campaignRepo.UpdateFields(userID, campaignID, map[string]interface{}{
		"executed": true,
		"status":   models.CampaignStatusActive,
		"cost":     cost,
	})
}

// SaveMessages overwrites the campaign's stored conversation turns.
func (s *CampaignService) SaveMessages(userID, campaignID string, messages []models.ChatMessage) error {
	campaign := models.Campaign{}
	if err := campaign.SetMessageList(messages); err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}
	return s.campaignRepo.UpdateFields(userID, campaignID, map[string]interface{}{
		"messages": campaign.Messages,
	})
}

// SaveContacts overwrites the campaign's contact snapshot. At most one
// latest snapshot is kept.
func (s *CampaignService) SaveContacts(userID, campaignID string, contacts []models.Contact) error {
	campaign := models.Campaign{}
	if err := campaign.SetContactList(contacts); err != nil {
		return fmt.Errorf("failed to encode contacts: %w", err)
	}
	return s.campaignRepo.UpdateFields(userID, campaignID, map[string]interface{}{
		"contacts": campaign.Contacts,
	})
}

// Contacts loads the campaign's stored contact snapshot.
func (s *CampaignService) Contacts(userID, campaignID string) ([]models.Contact, error) {
	campaign, err := s.campaignRepo.GetByUserIDAndID(userID, campaignID)
	if err != nil {
		return nil, err
	}
	return campaign.ContactList()
}

// SetPendingAction stores the deferred paid tool call on the campaign.
func (s *CampaignService) SetPendingAction(userID, campaignID string, action *models.PendingAction) error {
	return s.campaignRepo.SetPendingAction(userID, campaignID, action)
}

// ConsumePendingAction atomically claims the campaign's pending action.
func (s *CampaignService) ConsumePendingAction(userID, campaignID, callID string) (*models.PendingAction, error) {
	return s.campaignRepo.ConsumePendingAction(userID, campaignID, callID)
}

// AppendToolCall records one executed tool call on the campaign.
func (s *CampaignService) AppendToolCall(userID, campaignID string, record models.ToolCallRecord) error {
	return s.campaignRepo.AppendToolCall(userID, campaignID, record)
}

// ToolCallHistory returns the campaign's recorded tool calls.
func (s *CampaignService) ToolCallHistory(userID, campaignID string) ([]models.ToolCallRecord, error) {
	campaign, err := s.campaignRepo.GetByUserIDAndID(userID, campaignID)
	if err != nil {
		return nil, err
	}
	return campaign.ToolCallList()
}

// SetEmailsSent records the successful-send count for the owner's campaign.
func (s *CampaignService) SetEmailsSent(userID, campaignID string, sent int) error {
	return s.analyticsRepo.Upsert(userID, campaignID, models.AnalyticsUpdate{EmailsSent: &sent})
}

// RecordReplies appends the reply candidates that are not yet recorded
// and bumps the reply counter by the number added.
func (s *CampaignService) RecordReplies(userID, campaignID string, candidates []models.CampaignResponse) (int, error) {
	added := 0
	for i := range candidates {
		reply := candidates[i]
		reply.UserID = userID
		exists, err := s.responseRepo.ExistsForSender(userID, campaignID, reply.FromEmail, reply.Subject)
		if err != nil {
			return added, err
		}
		if exists {
			continue
		}
		if err := s.responseRepo.Append(&reply); err != nil {
			return added, err
		}
		added++
	}
	if added > 0 {
		if err := s.analyticsRepo.IncrementReplies(userID, campaignID, added); err != nil {
			return added, err
		}
	}
	return added, nil
}

// Replies lists the owner's recorded replies for a campaign, newest first.
func (s *CampaignService) Replies(userID, campaignID string) ([]models.CampaignResponse, error) {
	return s.responseRepo.ListByCampaign(userID, campaignID)
}
