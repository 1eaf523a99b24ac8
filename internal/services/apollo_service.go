package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
	"github.com/arcwardens/outreach-backend/internal/config"
	"github.com/arcwardens/outreach-backend/internal/models"
)

const apolloBaseURL = "https://api.apollo.io/api/v1"

type ApolloService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewApolloService(cfg config.ApolloConfig) *ApolloService {
	return &ApolloService{
		apiKey:  cfg.APIKey,
		baseURL: apolloBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type apolloContact struct {
	Name             string `json:"name"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
	Title            string `json:"title"`
	OrganizationName string `json:"organization_name"`
	City             string `json:"city"`
	State            string `json:"state"`
	Country          string `json:"country"`
	LinkedinURL      string `json:"linkedin_url"`
	Organization     struct {
		Name string `json:"name"`
	} `json:"organization"`
}

type apolloSearchResponse struct {
	Contacts []apolloContact `json:"contacts"`
	People   []apolloContact `json:"people"`
}

// SearchPeople fetches the account's saved contacts from Apollo. The
// free tier ignores server-side filters and returns everything, so
// filtering happens downstream on the snapshot.
func (s *ApolloService) SearchPeople(ctx context.Context, perPage int) ([]models.Contact, error) {
	if s.apiKey == "" {
		return nil, apperrors.New(apperrors.NotConfigured, "APOLLO_API_KEY is not configured")
	}
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}

	payload, err := json.Marshal(map[string]interface{}{
		"per_page": perPage,
		"page":     1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode apollo request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/contacts/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build apollo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.UpstreamUnavailable, "apollo request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read apollo response: %w", err)
	}

	if resp.StatusCode >= 400 {
		logrus.Errorf("Apollo API error (%d): %s", resp.StatusCode, string(body))
		return nil, apperrors.Newf(apperrors.UpstreamUnavailable, "apollo error: HTTP %d", resp.StatusCode)
	}

	var parsed apolloSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperrors.Wrap(apperrors.UpstreamUnavailable, "failed to parse apollo response", err)
	}

	raw := parsed.Contacts
	if len(raw) == 0 {
		raw = parsed.People
	}

	contacts := make([]models.Contact, 0, len(raw))
	for _, c := range raw {
		contact := models.Contact{
			Name:             c.Name,
			FirstName:        c.FirstName,
			LastName:         c.LastName,
			Email:            c.Email,
			Title:            c.Title,
			OrganizationName: c.OrganizationName,
			City:             c.City,
			State:            c.State,
			Country:          c.Country,
			LinkedinURL:      c.LinkedinURL,
		}
		if contact.OrganizationName == "" {
			contact.OrganizationName = c.Organization.Name
		}
		if contact.Name == "" {
			contact.Name = strings.TrimSpace(c.FirstName + " " + c.LastName)
		}
		contacts = append(contacts, contact)
	}

	logrus.Infof("Apollo search returned %d contacts", len(contacts))
	return contacts, nil
}
