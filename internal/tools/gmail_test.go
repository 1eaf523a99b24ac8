package tools

import (
	"context"
	"testing"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
	"github.com/arcwardens/outreach-backend/internal/models"
	"github.com/arcwardens/outreach-backend/internal/services"
)

type fakeSender struct {
	report   *services.SendReport
	contacts []models.Contact
	subject  string
	body     string
}

func (s *fakeSender) SendToList(_ context.Context, _, _ string, contacts []models.Contact, subject, body string) (*services.SendReport, error) {
	s.contacts = contacts
	s.subject = subject
	s.body = body
	return s.report, nil
}

type fakeAnalytics struct {
	sent *int
}

func (a *fakeAnalytics) SetEmailsSent(_, _ string, sent int) error {
	a.sent = &sent
	return nil
}

func TestGmailDraftRendersFirstContact(t *testing.T) {
	store := &fakeContactStore{contacts: []models.Contact{
		{Name: "Ada", Title: "CTO", OrganizationName: "Initech"},
		{Name: "Ben"},
	}}
	executor := NewGmailExecutor(&fakeSender{}, store, &fakeAnalytics{})

	result, err := executor.Execute(context.Background(), Invocation{
		UserID:     "u1",
		CampaignID: "c1",
		Args: map[string]interface{}{
			"action":  "draft",
			"subject": "Hi {name}",
			"body":    "Regarding your role as {title} at {company}",
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if result["subject"] != "Hi Ada" {
		t.Errorf("subject = %v", result["subject"])
	}
	if result["body"] != "Regarding your role as CTO at Initech" {
		t.Errorf("body = %v", result["body"])
	}
	if result["recipient_count"] != 2 {
		t.Errorf("recipient_count = %v", result["recipient_count"])
	}
}

func TestGmailSendRecordsAnalytics(t *testing.T) {
	store := &fakeContactStore{contacts: []models.Contact{{Name: "Ada"}}}
	sender := &fakeSender{report: &services.SendReport{
		SentCount:    2,
		FailedCount:  1,
		TestModeOnly: true,
	}}
	analytics := &fakeAnalytics{}
	executor := NewGmailExecutor(sender, store, analytics)

	result, err := executor.Execute(context.Background(), Invocation{
		UserID:     "u1",
		CampaignID: "c1",
		Token:      "tok",
		Args: map[string]interface{}{
			"action":  "send_to_list",
			"subject": "s",
			"body":    "b",
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if result["sent_count"] != 2 || result["failed_count"] != 1 || result["testModeOnly"] != true {
		t.Fatalf("result = %v", result)
	}
	if analytics.sent == nil || *analytics.sent != 2 {
		t.Errorf("analytics sent = %v, want 2", analytics.sent)
	}
	if len(sender.contacts) != 1 {
		t.Errorf("sender got %d contacts", len(sender.contacts))
	}
}

func TestGmailRejectsUnknownAction(t *testing.T) {
	executor := NewGmailExecutor(&fakeSender{}, &fakeContactStore{}, &fakeAnalytics{})
	_, err := executor.Execute(context.Background(), Invocation{
		Args: map[string]interface{}{"action": "forward_all", "subject": "s", "body": "b"},
	})
	if apperrors.KindOf(err) != apperrors.InvalidRequest {
		t.Fatalf("err = %v, want invalid request", err)
	}
}
