package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
	"github.com/arcwardens/outreach-backend/internal/config"
	"github.com/arcwardens/outreach-backend/internal/models"
	"github.com/arcwardens/outreach-backend/internal/utils"
)

const gmailBaseURL = "https://gmail.googleapis.com/gmail/v1"

// SendResult is the outcome for one recipient. No retries: the caller
// sees exactly what happened per address.
type SendResult struct {
	Recipient string `json:"recipient"`
	Contact   string `json:"contact,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// SendReport summarizes one send_to_list execution.
type SendReport struct {
	SentCount    int          `json:"sent_count"`
	FailedCount  int          `json:"failed_count"`
	Results      []SendResult `json:"results"`
	TestModeOnly bool         `json:"testModeOnly"`
}

type GmailService struct {
	testAddresses   []string
	feedbackBaseURL string
	baseURL         string
	httpClient      *http.Client
}

func NewGmailService(cfg config.EmailConfig) *GmailService {
	return &GmailService{
		testAddresses:   cfg.TestAddresses,
		feedbackBaseURL: cfg.FeedbackBaseURL,
		baseURL:         gmailBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendToList sends one personalized email per allow-listed address on
// behalf of the authenticated user. Resolved campaign recipients supply
// the personalization only; every message is redirected to the test
// allow list, never to the real contacts.
func (s *GmailService) SendToList(ctx context.Context, token, campaignID string, contacts []models.Contact, subject, body string) (*SendReport, error) {
	if len(s.testAddresses) == 0 {
		return nil, apperrors.New(apperrors.NotConfigured, "TEST_EMAIL_ADDRESSES is not configured")
	}
	if token == "" {
		return nil, apperrors.New(apperrors.Unauthenticated, "missing delegated email token")
	}

	report := &SendReport{TestModeOnly: true}
	for i, address := range s.testAddresses {
		values := map[string]string{"name": "", "company": "", "title": ""}
		contactLabel := ""
		if len(contacts) > 0 {
			contact := contacts[i%len(contacts)]
			values["name"] = contact.Name
			values["company"] = contact.OrganizationName
			values["title"] = contact.Title
			contactLabel = fmt.Sprintf("%s <%s>", contact.Name, contact.Email)
		}

		renderedSubject := utils.RenderTemplate(subject, values)
		renderedBody := utils.RenderTemplate(body, values) + s.feedbackFooter(campaignID)

		result := SendResult{Recipient: address, Contact: contactLabel, Status: "success"}
		if err := s.sendMessage(ctx, token, address, renderedSubject, renderedBody); err != nil {
			logrus.Warnf("Failed to send campaign email to %s: %v", address, err)
			result.Status = "error"
			result.Error = err.Error()
			report.FailedCount++
		} else {
			report.SentCount++
		}
		report.Results = append(report.Results, result)
	}

	logrus.Infof("Campaign %s send complete: %d sent, %d failed", campaignID, report.SentCount, report.FailedCount)
	return report, nil
}

func (s *GmailService) feedbackFooter(campaignID string) string {
	return fmt.Sprintf("\n\n---\nShare your feedback: %s?campaign=%s", s.feedbackBaseURL, url.QueryEscape(campaignID))
}

func (s *GmailService) sendMessage(ctx context.Context, token, to, subject, body string) error {
	var msg strings.Builder
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	payload, err := json.Marshal(map[string]string{
		"raw": base64.URLEncoding.EncodeToString([]byte(msg.String())),
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/users/me/messages/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.UpstreamUnavailable, "gmail send failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusUnauthorized {
			return apperrors.New(apperrors.Unauthenticated, "gmail token rejected")
		}
		return apperrors.Newf(apperrors.UpstreamUnavailable, "gmail send error: HTTP %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}
	return nil
}

type gmailMessageList struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type gmailMessage struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
	Payload struct {
		Headers []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
	} `json:"payload"`
	InternalDate string `json:"internalDate"`
}

// CheckReplies scans the user's recent inbox for messages from known
// campaign senders and returns them as reply candidates. The caller
// dedupes and persists.
func (s *GmailService) CheckReplies(ctx context.Context, token, campaignID string, knownSenders map[string]bool) ([]models.CampaignResponse, error) {
	if token == "" {
		return nil, apperrors.New(apperrors.Unauthenticated, "missing delegated email token")
	}

	listURL := s.baseURL + "/users/me/messages?maxResults=25&q=" + url.QueryEscape("in:inbox newer_than:7d")
	var list gmailMessageList
	if err := s.getJSON(ctx, token, listURL, &list); err != nil {
		return nil, err
	}

	var replies []models.CampaignResponse
	for _, entry := range list.Messages {
		var msg gmailMessage
		msgURL := fmt.Sprintf("%s/users/me/messages/%s?format=metadata&metadataHeaders=From&metadataHeaders=Subject&metadataHeaders=Date", s.baseURL, entry.ID)
		if err := s.getJSON(ctx, token, msgURL, &msg); err != nil {
			logrus.Warnf("Failed to fetch message %s: %v", entry.ID, err)
			continue
		}

		fromName, fromEmail := parseAddress(header(msg, "From"))
		if fromEmail == "" || !knownSenders[strings.ToLower(fromEmail)] {
			continue
		}

		receivedAt := time.Now()
		if ts := msg.InternalDate; ts != "" {
			var millis int64
			if _, err := fmt.Sscanf(ts, "%d", &millis); err == nil && millis > 0 {
				receivedAt = time.UnixMilli(millis)
			}
		}

		replies = append(replies, models.CampaignResponse{
			CampaignID: campaignID,
			FromEmail:  strings.ToLower(fromEmail),
			FromName:   fromName,
			Subject:    header(msg, "Subject"),
			Snippet:    msg.Snippet,
			ReceivedAt: receivedAt,
		})
	}

	return replies, nil
}

func (s *GmailService) getJSON(ctx context.Context, token, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build gmail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.UpstreamUnavailable, "gmail request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gmail response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return apperrors.New(apperrors.Unauthenticated, "gmail token rejected")
	}
	if resp.StatusCode >= 400 {
		return apperrors.Newf(apperrors.UpstreamUnavailable, "gmail error: HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return json.Unmarshal(body, out)
}

func header(msg gmailMessage, name string) string {
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// parseAddress splits "Display Name <addr@example.com>" into its parts.
func parseAddress(raw string) (name, email string) {
	raw = strings.TrimSpace(raw)
	if open := strings.LastIndex(raw, "<"); open >= 0 {
		end := strings.LastIndex(raw, ">")
		if end > open {
			email = strings.TrimSpace(raw[open+1 : end])
			name = strings.Trim(strings.TrimSpace(raw[:open]), `"`)
			return name, email
		}
	}
	if strings.Contains(raw, "@") {
		return "", raw
	}
	return raw, ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
