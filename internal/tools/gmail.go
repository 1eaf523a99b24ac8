package tools

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
	"github.com/arcwardens/outreach-backend/internal/utils"
)

// GmailExecutor sends the campaign email or renders a preview of it.
type GmailExecutor struct {
	sender    EmailSender
	store     ContactStore
	analytics AnalyticsSetter
}

func NewGmailExecutor(sender EmailSender, store ContactStore, analytics AnalyticsSetter) *GmailExecutor {
	return &GmailExecutor{sender: sender, store: store, analytics: analytics}
}

func (e *GmailExecutor) Execute(ctx context.Context, inv Invocation) (Result, error) {
	action, _ := inv.Args["action"].(string)
	subject, _ := inv.Args["subject"].(string)
	body, _ := inv.Args["body"].(string)

	contacts, err := e.store.Contacts(inv.UserID, inv.CampaignID)
	if err != nil {
		return nil, err
	}

	switch action {
	case "draft":
		values := map[string]string{"name": "", "company": "", "title": ""}
		if len(contacts) > 0 {
			values["name"] = contacts[0].Name
			values["company"] = contacts[0].OrganizationName
			values["title"] = contacts[0].Title
		}
		return Result{
			"status":          "success",
			"action":          "draft",
			"subject":         utils.RenderTemplate(subject, values),
			"body":            utils.RenderTemplate(body, values),
			"recipient_count": len(contacts),
		}, nil

	case "send_to_list":
		report, err := e.sender.SendToList(ctx, inv.Token, inv.CampaignID, contacts, subject, body)
		if err != nil {
			return nil, err
		}
		if err := e.analytics.SetEmailsSent(inv.UserID, inv.CampaignID, report.SentCount); err != nil {
			logrus.Warnf("Failed to record emails_sent for campaign %s: %v", inv.CampaignID, err)
		}
		return Result{
			"status":       "success",
			"action":       "send_to_list",
			"sent_count":   report.SentCount,
			"failed_count": report.FailedCount,
			"results":      report.Results,
			"testModeOnly": report.TestModeOnly,
		}, nil
	}

	return nil, apperrors.Newf(apperrors.InvalidRequest, "gmail_tool: unsupported action %q", action)
}
