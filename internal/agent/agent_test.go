package agent

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
	"github.com/arcwardens/outreach-backend/internal/config"
	"github.com/arcwardens/outreach-backend/internal/models"
	"github.com/arcwardens/outreach-backend/internal/services"
	"github.com/arcwardens/outreach-backend/internal/tools"
)

// scriptedModel replays canned responses in order; the last response
// repeats once the script runs out.
type scriptedModel struct {
	responses []services.GeminiContent
	turn      int
}

func (m *scriptedModel) GenerateContent(_ context.Context, _ string, _ []services.GeminiContent, _ []services.FunctionDeclaration) (*services.GeminiContent, error) {
	idx := m.turn
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	m.turn++
	resp := m.responses[idx]
	return &resp, nil
}

func (m *scriptedModel) GenerateText(_ context.Context, _ string) (string, error) {
	return "", nil
}

type fakeStore struct {
	campaign  *models.Campaign
	messages  []models.ChatMessage
	pending   *models.PendingAction
	toolCalls []models.ToolCallRecord
	paidCost  *float64
}

func (s *fakeStore) Get(_, campaignID string) (*models.Campaign, error) {
	if s.campaign == nil || s.campaign.ID != campaignID {
		return nil, apperrors.Newf(apperrors.NotFound, "campaign %s not found", campaignID)
	}
	campaign := *s.campaign
	campaign.PendingAction = nil
	if s.pending != nil {
		encoded, err := json.Marshal(s.pending)
		if err != nil {
			return nil, err
		}
		campaign.PendingAction = datatypes.JSON(encoded)
	}
	return &campaign, nil
}

func (s *fakeStore) SaveMessages(_, _ string, messages []models.ChatMessage) error {
	s.messages = messages
	return nil
}

func (s *fakeStore) SetPendingAction(_, _ string, action *models.PendingAction) error {
	s.pending = action
	return nil
}

func (s *fakeStore) ConsumePendingAction(_, _, _ string) (*models.PendingAction, error) {
	if s.pending == nil {
		return nil, apperrors.Newf(apperrors.NotFound, "no pending action")
	}
	action := s.pending
	s.pending = nil
	return action, nil
}

func (s *fakeStore) AppendToolCall(_, _ string, record models.ToolCallRecord) error {
	s.toolCalls = append(s.toolCalls, record)
	return nil
}

func (s *fakeStore) MarkPaid(_, _ string, cost float64) error {
	s.paidCost = &cost
	return nil
}

// stubExecutor is a free tool that always succeeds.
type stubExecutor struct {
	calls int
}

func (e *stubExecutor) Execute(_ context.Context, _ tools.Invocation) (tools.Result, error) {
	e.calls++
	return tools.Result{"status": "success", "new_replies": 0}, nil
}

func textTurn(text string) services.GeminiContent {
	return services.GeminiContent{Role: "model", Parts: []services.GeminiPart{{Text: text}}}
}

func callTurn(name string, args map[string]interface{}) services.GeminiContent {
	return services.GeminiContent{Role: "model", Parts: []services.GeminiPart{
		{FunctionCall: &services.GeminiFunctionCall{Name: name, Args: args}},
	}}
}

func newTestAgent(t *testing.T, llm services.GeminiClient, store CampaignStore, maxIterations int) (*Agent, *stubExecutor) {
	t.Helper()
	registry := tools.NewRegistry()
	stub := &stubExecutor{}
	if err := registry.Register("check_campaign_replies", stub); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register("ask_for_clarification", tools.NewClarifyExecutor()); err != nil {
		t.Fatal(err)
	}
	cfg := config.AgentConfig{MaxIterations: maxIterations, Deadline: 5 * time.Second}
	return NewAgent(llm, registry, store, cfg), stub
}

func TestChatReturnsModelText(t *testing.T) {
	store := &fakeStore{campaign: &models.Campaign{ID: "c1", UserID: "u1"}}
	llm := &scriptedModel{responses: []services.GeminiContent{textTurn("Hello, how can I help?")}}
	a, _ := newTestAgent(t, llm, store, 10)

	resp, err := a.Chat(context.Background(), "u1", "tok", &models.ChatRequest{
		Message:    "hi",
		CampaignID: "c1",
	})
	if err != nil {
		t.Fatal(err)
	}

	if !resp.Success || resp.Message != "Hello, how can I help?" {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Iterations != 1 {
		t.Errorf("iterations = %d, want 1", resp.Iterations)
	}
	// The stored conversation ends with the user turn and the reply.
	if len(store.messages) != 2 || store.messages[1].Role != "assistant" {
		t.Errorf("stored messages = %v", store.messages)
	}
}

func TestChatUnknownCampaign(t *testing.T) {
	store := &fakeStore{}
	llm := &scriptedModel{responses: []services.GeminiContent{textTurn("unused")}}
	a, _ := newTestAgent(t, llm, store, 10)

	_, err := a.Chat(context.Background(), "u1", "tok", &models.ChatRequest{
		Message:    "hi",
		CampaignID: "missing",
	})
	if apperrors.KindOf(err) != apperrors.NotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestChatDefersPaidTool(t *testing.T) {
	store := &fakeStore{campaign: &models.Campaign{ID: "c1", UserID: "u1"}}
	llm := &scriptedModel{responses: []services.GeminiContent{
		callTurn("apollo_search_people", map[string]interface{}{"query": "CTOs in fintech"}),
	}}
	a, stub := newTestAgent(t, llm, store, 10)

	resp, err := a.Chat(context.Background(), "u1", "tok", &models.ChatRequest{
		Message:    "find me fintech CTOs",
		CampaignID: "c1",
	})
	if err != nil {
		t.Fatal(err)
	}

	if !resp.RequiresPayment {
		t.Fatalf("resp = %+v, want requires_payment", resp)
	}
	if resp.Cost != 1.0 {
		t.Errorf("cost = %v, want 1.0", resp.Cost)
	}
	if resp.PendingAction == nil || resp.PendingAction.ToolName != "apollo_search_people" {
		t.Errorf("pending action = %+v", resp.PendingAction)
	}
	if store.pending == nil {
		t.Error("pending action was not persisted")
	}
	if stub.calls != 0 {
		t.Error("a tool executed before payment")
	}
}

func TestChatRunsFreeToolsInline(t *testing.T) {
	store := &fakeStore{campaign: &models.Campaign{ID: "c1", UserID: "u1"}}
	llm := &scriptedModel{responses: []services.GeminiContent{
		callTurn("check_campaign_replies", nil),
		textTurn("No new replies yet."),
	}}
	a, stub := newTestAgent(t, llm, store, 10)

	resp, err := a.Chat(context.Background(), "u1", "tok", &models.ChatRequest{
		Message:    "any replies?",
		CampaignID: "c1",
	})
	if err != nil {
		t.Fatal(err)
	}

	if resp.Message != "No new replies yet." || resp.Iterations != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if stub.calls != 1 {
		t.Errorf("tool calls = %d, want 1", stub.calls)
	}
	if len(store.toolCalls) != 1 || store.toolCalls[0].ToolName != "check_campaign_replies" {
		t.Errorf("recorded tool calls = %v", store.toolCalls)
	}
}

func TestChatIterationCap(t *testing.T) {
	store := &fakeStore{campaign: &models.Campaign{ID: "c1", UserID: "u1"}}
	// The model never produces a text-only turn.
	llm := &scriptedModel{responses: []services.GeminiContent{
		callTurn("check_campaign_replies", nil),
	}}
	a, stub := newTestAgent(t, llm, store, 3)

	resp, err := a.Chat(context.Background(), "u1", "tok", &models.ChatRequest{
		Message:    "loop forever",
		CampaignID: "c1",
	})
	if err != nil {
		t.Fatal(err)
	}

	if !resp.Success || resp.Message != exhaustedMessage {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Iterations != 3 {
		t.Errorf("iterations = %d, want 3", resp.Iterations)
	}
	if stub.calls != 3 {
		t.Errorf("tool calls = %d, want 3", stub.calls)
	}
}

func TestChatClarificationIsTerminal(t *testing.T) {
	store := &fakeStore{campaign: &models.Campaign{ID: "c1", UserID: "u1"}}
	llm := &scriptedModel{responses: []services.GeminiContent{
		callTurn("ask_for_clarification", map[string]interface{}{
			"question": "Which job titles should I target?",
		}),
		textTurn("should never be reached"),
	}}
	a, _ := newTestAgent(t, llm, store, 10)

	resp, err := a.Chat(context.Background(), "u1", "tok", &models.ChatRequest{
		Message:    "send the emails",
		CampaignID: "c1",
	})
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(resp.Message, "Which job titles should I target?") {
		t.Fatalf("resp message = %q", resp.Message)
	}
	if resp.Iterations != 1 {
		t.Errorf("iterations = %d, want 1", resp.Iterations)
	}
}

func TestResumeExecutesPendingActionAndContinues(t *testing.T) {
	campaign := &models.Campaign{ID: "c1", UserID: "u1"}
	if err := campaign.SetMessageList([]models.ChatMessage{
		{Role: "user", Content: "any replies?"},
	}); err != nil {
		t.Fatal(err)
	}
	store := &fakeStore{
		campaign: campaign,
		pending: &models.PendingAction{
			ToolName: "check_campaign_replies",
			CallID:   "call-1",
			Cost:     2.0,
		},
	}
	llm := &scriptedModel{responses: []services.GeminiContent{textTurn("Done, the scan ran.")}}
	a, stub := newTestAgent(t, llm, store, 10)

	resp, err := a.Resume(context.Background(), "u1", "tok", &models.PayRequest{
		CampaignID: "c1",
		Amount:     2.0,
	})
	if err != nil {
		t.Fatal(err)
	}

	if stub.calls != 1 {
		t.Fatalf("deferred tool ran %d times, want 1", stub.calls)
	}
	if store.pending != nil {
		t.Error("pending action was not consumed")
	}
	if store.paidCost == nil || *store.paidCost != 2.0 {
		t.Errorf("paid cost = %v, want 2.0", store.paidCost)
	}
	if resp.Message != "Done, the scan ran." {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Amount != 2.0 || !strings.HasPrefix(resp.TransactionID, "tx_c1_") {
		t.Errorf("amount = %v, transactionId = %q", resp.Amount, resp.TransactionID)
	}
}

func TestResumeRejectsUnderpayment(t *testing.T) {
	store := &fakeStore{
		campaign: &models.Campaign{ID: "c1", UserID: "u1"},
		pending: &models.PendingAction{
			ToolName: "check_campaign_replies",
			CallID:   "call-1",
			Cost:     2.0,
		},
	}
	llm := &scriptedModel{responses: []services.GeminiContent{textTurn("unused")}}
	a, stub := newTestAgent(t, llm, store, 10)

	_, err := a.Resume(context.Background(), "u1", "tok", &models.PayRequest{
		CampaignID: "c1",
		Amount:     1.0,
	})
	if apperrors.KindOf(err) != apperrors.InvalidRequest {
		t.Fatalf("err = %v, want invalid request", err)
	}

	// A rejected payment leaves the pending action in place and runs
	// nothing.
	if store.pending == nil {
		t.Error("pending action was consumed by a rejected payment")
	}
	if stub.calls != 0 {
		t.Errorf("deferred tool ran %d times, want 0", stub.calls)
	}
	if store.paidCost != nil {
		t.Errorf("paid cost = %v, want unset", *store.paidCost)
	}
}

func TestResumeRecordsQuotedCostNotOverpayment(t *testing.T) {
	store := &fakeStore{
		campaign: &models.Campaign{ID: "c1", UserID: "u1"},
		pending: &models.PendingAction{
			ToolName: "check_campaign_replies",
			CallID:   "call-1",
			Cost:     2.0,
		},
	}
	llm := &scriptedModel{responses: []services.GeminiContent{textTurn("Done.")}}
	a, _ := newTestAgent(t, llm, store, 10)

	resp, err := a.Resume(context.Background(), "u1", "tok", &models.PayRequest{
		CampaignID: "c1",
		Amount:     5.0,
	})
	if err != nil {
		t.Fatal(err)
	}

	if store.paidCost == nil || *store.paidCost != 2.0 {
		t.Errorf("paid cost = %v, want the quoted 2.0", store.paidCost)
	}
	if resp.Amount != 5.0 {
		t.Errorf("amount = %v, want the confirmed 5.0", resp.Amount)
	}
}

func TestResumeWithoutPendingAction(t *testing.T) {
	store := &fakeStore{campaign: &models.Campaign{ID: "c1", UserID: "u1"}}
	llm := &scriptedModel{responses: []services.GeminiContent{textTurn("unused")}}
	a, _ := newTestAgent(t, llm, store, 10)

	_, err := a.Resume(context.Background(), "u1", "tok", &models.PayRequest{
		CampaignID: "c1",
		Amount:     1.0,
	})
	if apperrors.KindOf(err) != apperrors.NotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}
