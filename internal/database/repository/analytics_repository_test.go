package repository

import (
	"testing"

	"github.com/arcwardens/outreach-backend/internal/models"
)

func TestAnalyticsUpsertPartialUpdate(t *testing.T) {
	repo := NewAnalyticsRepository(newTestDB(t))

	sent := 100
	opened := 40
	if err := repo.Upsert("u1", "c1", models.AnalyticsUpdate{EmailsSent: &sent, EmailsOpened: &opened}); err != nil {
		t.Fatal(err)
	}

	// Only the counters present in the update are written.
	sent = 120
	if err := repo.Upsert("u1", "c1", models.AnalyticsUpdate{EmailsSent: &sent}); err != nil {
		t.Fatal(err)
	}

	row, err := repo.GetByCampaignID("u1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if row == nil || row.EmailsSent != 120 || row.EmailsOpened != 40 {
		t.Fatalf("row = %+v, want emails_sent 120 and emails_opened 40", row)
	}
}

func TestAnalyticsRowsIsolatedPerOwner(t *testing.T) {
	repo := NewAnalyticsRepository(newTestDB(t))

	mine, theirs := 10, 99
	if err := repo.Upsert("u1", "c1", models.AnalyticsUpdate{EmailsSent: &mine}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Upsert("u2", "c1", models.AnalyticsUpdate{EmailsSent: &theirs}); err != nil {
		t.Fatal(err)
	}

	row, err := repo.GetByCampaignID("u1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if row == nil || row.EmailsSent != 10 {
		t.Fatalf("u1 row = %+v, want emails_sent 10", row)
	}
	row, err = repo.GetByCampaignID("u2", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if row == nil || row.EmailsSent != 99 {
		t.Fatalf("u2 row = %+v, want emails_sent 99", row)
	}

	row, err = repo.GetByCampaignID("u3", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if row != nil {
		t.Fatalf("stranger row = %+v, want nil", row)
	}
}

func TestIncrementRepliesCreatesThenBumps(t *testing.T) {
	repo := NewAnalyticsRepository(newTestDB(t))

	if err := repo.IncrementReplies("u1", "c1", 2); err != nil {
		t.Fatal(err)
	}
	if err := repo.IncrementReplies("u1", "c1", 3); err != nil {
		t.Fatal(err)
	}
	if err := repo.IncrementReplies("u2", "c1", 7); err != nil {
		t.Fatal(err)
	}

	row, err := repo.GetByCampaignID("u1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if row == nil || row.Replies != 5 {
		t.Fatalf("u1 row = %+v, want replies 5", row)
	}
	row, err = repo.GetByCampaignID("u2", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if row == nil || row.Replies != 7 {
		t.Fatalf("u2 row = %+v, want replies 7", row)
	}
}
