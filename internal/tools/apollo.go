package tools

import (
	"context"

	"github.com/sirupsen/logrus"
)

// contactPreviewLimit caps how many contacts are echoed back into the
// model conversation; the full list lives on the campaign.
const contactPreviewLimit = 25

// ApolloSearchExecutor fetches contacts from the lead database and
// snapshots them onto the campaign.
type ApolloSearchExecutor struct {
	apollo LeadSearcher
	store  ContactStore
}

func NewApolloSearchExecutor(apollo LeadSearcher, store ContactStore) *ApolloSearchExecutor {
	return &ApolloSearchExecutor{apollo: apollo, store: store}
}

func (e *ApolloSearchExecutor) Execute(ctx context.Context, inv Invocation) (Result, error) {
	limit := 100
	if n, ok := inv.Args["limit"].(int); ok && n > 0 {
		limit = n
	}

	contacts, err := e.apollo.SearchPeople(ctx, limit)
	if err != nil {
		return nil, err
	}

	if inv.CampaignID != "" {
		if err := e.store.SaveContacts(inv.UserID, inv.CampaignID, contacts); err != nil {
			return nil, err
		}
	}

	preview := contacts
	if len(preview) > contactPreviewLimit {
		preview = preview[:contactPreviewLimit]
	}

	logrus.Infof("apollo_search_people returned %d contacts for campaign %s", len(contacts), inv.CampaignID)
	return Result{
		"status":   "success",
		"count":    len(contacts),
		"contacts": preview,
		"query":    inv.Args["query"],
		"message":  "Contacts fetched and saved to the campaign. Apply filter_contacts_by_company_criteria next if the user specified criteria.",
	}, nil
}
