package tools

import (
	"context"

	"github.com/arcwardens/outreach-backend/internal/models"
	"github.com/arcwardens/outreach-backend/internal/services"
)

// Consumer-side interfaces over the service layer, kept narrow so tests
// can fake exactly what each executor touches.

// ContactStore reads and overwrites a campaign's contact snapshot.
type ContactStore interface {
	SaveContacts(userID, campaignID string, contacts []models.Contact) error
	Contacts(userID, campaignID string) ([]models.Contact, error)
}

// LeadSearcher fetches contacts from the lead database.
type LeadSearcher interface {
	SearchPeople(ctx context.Context, perPage int) ([]models.Contact, error)
}

// TextGenerator is the single-prompt model surface the filter needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// EmailSender sends the campaign email to the allow list.
type EmailSender interface {
	SendToList(ctx context.Context, token, campaignID string, contacts []models.Contact, subject, body string) (*services.SendReport, error)
}

// ReplyScanner lists inbox replies from known campaign senders.
type ReplyScanner interface {
	CheckReplies(ctx context.Context, token, campaignID string, knownSenders map[string]bool) ([]models.CampaignResponse, error)
}

// ReplyRecorder persists scanned replies and lists the recorded ones,
// scoped to the campaign owner.
type ReplyRecorder interface {
	RecordReplies(userID, campaignID string, candidates []models.CampaignResponse) (int, error)
	Replies(userID, campaignID string) ([]models.CampaignResponse, error)
}

// AnalyticsSetter records the successful-send count for the owner's
// campaign.
type AnalyticsSetter interface {
	SetEmailsSent(userID, campaignID string, sent int) error
}

// HistoryReader exposes a campaign's recorded tool calls.
type HistoryReader interface {
	ToolCallHistory(userID, campaignID string) ([]models.ToolCallRecord, error)
}
