package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/arcwardens/outreach-backend/internal/models"
)

// FilterExecutor narrows the campaign's contact snapshot to the subset
// matching the user's criteria, judged by the language model.
type FilterExecutor struct {
	llm   TextGenerator
	store ContactStore
}

func NewFilterExecutor(llm TextGenerator, store ContactStore) *FilterExecutor {
	return &FilterExecutor{llm: llm, store: store}
}

func (e *FilterExecutor) Execute(ctx context.Context, inv Invocation) (Result, error) {
	contacts, err := e.store.Contacts(inv.UserID, inv.CampaignID)
	if err != nil {
		return nil, err
	}
	// Nothing to filter: succeed without spending a model call.
	if len(contacts) == 0 {
		return Result{
			"status":         "success",
			"filtered_count": 0,
			"contacts":       []models.Contact{},
			"message":        "No contacts available to filter. Run apollo_search_people first.",
		}, nil
	}

	userPrompt, _ := inv.Args["user_prompt"].(string)
	response, err := e.llm.GenerateText(ctx, buildFilterPrompt(contacts, userPrompt))
	if err != nil {
		return nil, err
	}

	indices, err := ParseIndexArray(response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse filter response: %w", err)
	}

	filtered := make([]models.Contact, 0, len(indices))
	seen := map[int]bool{}
	for _, idx := range indices {
		// Out-of-range and duplicate indices are dropped; the model may
		// only select from what it was shown.
		if idx < 0 || idx >= len(contacts) || seen[idx] {
			continue
		}
		seen[idx] = true
		filtered = append(filtered, contacts[idx])
	}

	if err := e.store.SaveContacts(inv.UserID, inv.CampaignID, filtered); err != nil {
		return nil, err
	}

	preview := filtered
	if len(preview) > contactPreviewLimit {
		preview = preview[:contactPreviewLimit]
	}

	logrus.Infof("Contact filter kept %d of %d contacts for campaign %s", len(filtered), len(contacts), inv.CampaignID)
	return Result{
		"status":         "success",
		"filtered_count": len(filtered),
		"total_count":    len(contacts),
		"contacts":       preview,
	}, nil
}

func buildFilterPrompt(contacts []models.Contact, criteria string) string {
	var b strings.Builder
	b.WriteString("You are filtering a contact list for a sales campaign.\n\n")
	b.WriteString("Contacts (index: name | title | company | location):\n")
	for i, c := range contacts {
		location := strings.TrimSpace(strings.Trim(strings.Join([]string{c.City, c.State, c.Country}, ", "), ", "))
		fmt.Fprintf(&b, "%d: %s | %s | %s | %s\n", i, c.Name, c.Title, c.OrganizationName, location)
	}
	b.WriteString("\nUser criteria: ")
	b.WriteString(criteria)
	b.WriteString("\n\nSelect the contacts matching ALL of the criteria. Be strict: ")
	b.WriteString("a contact matches only if every stated condition (title, location, company trait) holds exactly; ")
	b.WriteString("reject near misses like a similar title, a neighboring city, or a company that merely resembles the criteria.\n")
	b.WriteString("Respond with ONLY a JSON array of the matching indices, e.g. [0, 3, 7]. ")
	b.WriteString("If no contact matches, respond with [].")
	return b.String()
}

// ParseIndexArray extracts a JSON integer array from model output,
// tolerating markdown code fences and surrounding prose.
func ParseIndexArray(text string) ([]int, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in %q", truncateForError(text))
	}

	var raw []float64
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("malformed index array: %w", err)
	}

	indices := make([]int, 0, len(raw))
	for _, v := range raw {
		indices = append(indices, int(v))
	}
	return indices, nil
}

func truncateForError(s string) string {
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
