package tools

import (
	"context"
	"testing"

	"github.com/arcwardens/outreach-backend/internal/models"
)

type fakeScanner struct {
	replies []models.CampaignResponse
	known   map[string]bool
}

func (s *fakeScanner) CheckReplies(_ context.Context, _, _ string, knownSenders map[string]bool) ([]models.CampaignResponse, error) {
	s.known = knownSenders
	return s.replies, nil
}

type fakeRecorder struct {
	recorded []models.CampaignResponse
	existing []models.CampaignResponse
}

func (r *fakeRecorder) RecordReplies(_, _ string, candidates []models.CampaignResponse) (int, error) {
	r.recorded = candidates
	r.existing = append(r.existing, candidates...)
	return len(candidates), nil
}

func (r *fakeRecorder) Replies(_, _ string) ([]models.CampaignResponse, error) {
	return r.existing, nil
}

func TestRepliesBuildsKnownSenderSet(t *testing.T) {
	store := &fakeContactStore{contacts: []models.Contact{
		{Name: "Ada", Email: "Ada@Corp.com"},
		{Name: "NoEmail"},
	}}
	scanner := &fakeScanner{replies: []models.CampaignResponse{
		{FromEmail: "ada@corp.com", Subject: "Re: Hello"},
	}}
	recorder := &fakeRecorder{existing: []models.CampaignResponse{
		{FromEmail: "old@corp.com"},
	}}

	executor := NewRepliesExecutor(scanner, recorder, store, []string{"qa@example.com"})
	result, err := executor.Execute(context.Background(), Invocation{
		UserID:     "u1",
		CampaignID: "c1",
		Token:      "tok",
	})
	if err != nil {
		t.Fatal(err)
	}

	// Contact emails are lowercased and the allow list is merged in.
	if !scanner.known["ada@corp.com"] || !scanner.known["qa@example.com"] {
		t.Errorf("known senders = %v", scanner.known)
	}
	if len(scanner.known) != 2 {
		t.Errorf("known senders = %v, want 2 entries", scanner.known)
	}

	if result["new_replies"] != 1 || result["total_replies"] != 2 {
		t.Fatalf("result = %v", result)
	}
}
