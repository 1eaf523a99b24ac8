package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
	"github.com/arcwardens/outreach-backend/internal/config"
	"github.com/arcwardens/outreach-backend/internal/models"
	"github.com/arcwardens/outreach-backend/internal/services"
	"github.com/arcwardens/outreach-backend/internal/tools"
)

// exhaustedMessage is the fixed reply when the loop hits its iteration
// cap without a text-only turn. Work done along the way stands.
const exhaustedMessage = "I've completed the requested actions. Let me know if there's anything else you'd like me to do with this campaign."

// CampaignStore is the campaign persistence the orchestrator needs.
type CampaignStore interface {
	Get(userID, campaignID string) (*models.Campaign, error)
	SaveMessages(userID, campaignID string, messages []models.ChatMessage) error
	SetPendingAction(userID, campaignID string, action *models.PendingAction) error
	ConsumePendingAction(userID, campaignID, callID string) (*models.PendingAction, error)
	AppendToolCall(userID, campaignID string, record models.ToolCallRecord) error
	MarkPaid(userID, campaignID string, cost float64) error
}

// Agent drives the pay-gated tool-calling loop for campaign
// conversations.
type Agent struct {
	llm      services.GeminiClient
	registry *tools.Registry
	store    CampaignStore
	cfg      config.AgentConfig
}

func NewAgent(llm services.GeminiClient, registry *tools.Registry, store CampaignStore, cfg config.AgentConfig) *Agent {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 10
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = 90 * time.Second
	}
	return &Agent{llm: llm, registry: registry, store: store, cfg: cfg}
}

// Chat runs one orchestrator turn. The caller's conversation history is
// the source of truth; the campaign's stored copy is refreshed with the
// user turn and the final assistant turn.
func (a *Agent) Chat(ctx context.Context, userID, token string, req *models.ChatRequest) (*models.ChatResponse, error) {
	if _, err := a.store.Get(userID, req.CampaignID); err != nil {
		return nil, err
	}

	contents := historyToContents(req.ConversationHistory)
	contents = append(contents, services.GeminiContent{
		Role:  "user",
		Parts: []services.GeminiPart{{Text: req.Message}},
	})

	resp, err := a.runLoop(ctx, userID, req.CampaignID, token, contents)
	if err != nil {
		return nil, err
	}

	stored := append(append([]models.ChatMessage{}, req.ConversationHistory...),
		models.ChatMessage{Role: "user", Content: req.Message},
		models.ChatMessage{Role: "assistant", Content: resp.Message},
	)
	if err := a.store.SaveMessages(userID, req.CampaignID, stored); err != nil {
		logrus.Warnf("Failed to persist conversation for campaign %s: %v", req.CampaignID, err)
	}

	return resp, nil
}

// Resume confirms payment for the campaign's pending action, executes
// it, and continues the loop with the result spliced in. A later paid
// tool in the continuation gates again.
func (a *Agent) Resume(ctx context.Context, userID, token string, req *models.PayRequest) (*models.PayResponse, error) {
	// Check the amount against the quoted cost before consuming, so a
	// rejected payment leaves the pending action claimable.
	campaign, err := a.store.Get(userID, req.CampaignID)
	if err != nil {
		return nil, err
	}
	pending, err := campaign.PendingActionRecord()
	if err != nil {
		return nil, fmt.Errorf("failed to decode pending action: %w", err)
	}
	if pending == nil {
		return nil, apperrors.Newf(apperrors.NotFound, "campaign %s has no pending action", req.CampaignID)
	}
	if req.Amount < pending.Cost {
		return nil, apperrors.Newf(apperrors.InvalidRequest,
			"payment of %.1f does not cover the pending action cost of %.1f", req.Amount, pending.Cost)
	}

	action, err := a.store.ConsumePendingAction(userID, req.CampaignID, "")
	if err != nil {
		return nil, err
	}

	// The recorded cost is the action's quoted price, not whatever amount
	// the caller happened to send.
	if err := a.store.MarkPaid(userID, req.CampaignID, action.Cost); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Deadline)
	defer cancel()

	result := a.registry.Dispatch(ctx, action.ToolName, tools.Invocation{
		UserID:     userID,
		CampaignID: req.CampaignID,
		Token:      token,
		Args:       action.Arguments,
	})

	campaign, err = a.store.Get(userID, req.CampaignID)
	if err != nil {
		return nil, err
	}
	history, err := campaign.MessageList()
	if err != nil {
		return nil, fmt.Errorf("failed to decode conversation: %w", err)
	}

	contents := historyToContents(history)
	contents = append(contents,
		services.GeminiContent{
			Role:  "model",
			Parts: []services.GeminiPart{{FunctionCall: &services.GeminiFunctionCall{Name: action.ToolName, Args: action.Arguments}}},
		},
		services.GeminiContent{
			Role:  "user",
			Parts: []services.GeminiPart{{FunctionResponse: &services.GeminiFunctionResponse{Name: action.ToolName, Response: result}}},
		},
	)

	resp, err := a.runLoop(ctx, userID, req.CampaignID, token, contents)
	if err != nil {
		return nil, err
	}

	stored := append(append([]models.ChatMessage{}, history...),
		models.ChatMessage{Role: "assistant", Content: resp.Message},
	)
	if err := a.store.SaveMessages(userID, req.CampaignID, stored); err != nil {
		logrus.Warnf("Failed to persist conversation for campaign %s: %v", req.CampaignID, err)
	}

	return &models.PayResponse{
		ChatResponse:  *resp,
		Amount:        req.Amount,
		TransactionID: fmt.Sprintf("tx_%s_%d", req.CampaignID, time.Now().Unix()),
	}, nil
}

// runLoop is the bounded tool-calling loop shared by Chat and Resume.
// Free tools execute inline; the first paid tool is deferred into the
// campaign's pending action and ends the turn.
func (a *Agent) runLoop(ctx context.Context, userID, campaignID, token string, contents []services.GeminiContent) (*models.ChatResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Deadline)
	defer cancel()

	system := BuildSystemPrompt()
	decls := declarations()

	for iteration := 1; iteration <= a.cfg.MaxIterations; iteration++ {
		content, err := a.llm.GenerateContent(ctx, system, contents, decls)
		if err != nil {
			return nil, err
		}

		calls := content.FunctionCalls()
		if len(calls) == 0 {
			return &models.ChatResponse{
				Success:    true,
				Message:    content.Text(),
				Iterations: iteration,
			}, nil
		}

		contents = append(contents, *content)

		var responses []services.GeminiPart
		for _, call := range calls {
			cost, paid, err := a.toolCost(call.Name)
			if err != nil {
				return nil, err
			}
			if paid {
				// Defer behind the payment gate. Remaining calls in this
				// turn are dropped; the continuation re-plans after payment.
				action := &models.PendingAction{
					ToolName:  call.Name,
					Arguments: call.Args,
					CallID:    uuid.NewString(),
					Cost:      cost,
					CreatedAt: time.Now(),
				}
				if err := a.store.SetPendingAction(userID, campaignID, action); err != nil {
					return nil, err
				}
				logrus.Infof("Campaign %s: deferred paid tool %s (cost %.1f)", campaignID, call.Name, cost)
				return &models.ChatResponse{
					Success:         true,
					Message:         fmt.Sprintf("This action uses %s, which costs %.1f USDC. Please confirm the payment to continue.", call.Name, cost),
					RequiresPayment: true,
					Cost:            cost,
					PendingAction:   action,
					Iterations:      iteration,
				}, nil
			}

			result := a.registry.Dispatch(ctx, call.Name, tools.Invocation{
				UserID:     userID,
				CampaignID: campaignID,
				Token:      token,
				Args:       call.Args,
			})

			if status, _ := result["status"].(string); status != "error" {
				record := models.ToolCallRecord{
					ToolName:  call.Name,
					Arguments: call.Args,
					Iteration: iteration,
					CalledAt:  time.Now(),
				}
				if err := a.store.AppendToolCall(userID, campaignID, record); err != nil {
					logrus.Warnf("Failed to record tool call %s for campaign %s: %v", call.Name, campaignID, err)
				}
			}

			// A clarification is terminal: its formatted question is the
			// assistant's reply.
			if call.Name == "ask_for_clarification" {
				if message, ok := result["message"].(string); ok && message != "" {
					return &models.ChatResponse{
						Success:    true,
						Message:    message,
						Iterations: iteration,
					}, nil
				}
			}

			responses = append(responses, services.GeminiPart{
				FunctionResponse: &services.GeminiFunctionResponse{
					Name:     call.Name,
					Response: result,
				},
			})
		}

		contents = append(contents, services.GeminiContent{Role: "user", Parts: responses})
	}

	logrus.Warnf("Campaign %s: agent loop hit the %d-iteration cap", campaignID, a.cfg.MaxIterations)
	return &models.ChatResponse{
		Success:    true,
		Message:    exhaustedMessage,
		Iterations: a.cfg.MaxIterations,
	}, nil
}

// toolCost resolves the payment gate for a tool. A paid tool missing
// from the cost table is an error, never a free execution.
func (a *Agent) toolCost(name string) (float64, bool, error) {
	desc := tools.DescriptorByName(name)
	if desc == nil || !desc.Paid {
		return 0, false, nil
	}
	cost, ok := tools.Costs[name]
	if !ok {
		return 0, false, apperrors.Newf(apperrors.Internal, "paid tool %s has no configured cost", name)
	}
	return cost, true, nil
}

func declarations() []services.FunctionDeclaration {
	decls := make([]services.FunctionDeclaration, 0, len(tools.Descriptors))
	for i := range tools.Descriptors {
		d := &tools.Descriptors[i]
		decls = append(decls, services.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.ParametersSchema(),
		})
	}
	return decls
}

func historyToContents(history []models.ChatMessage) []services.GeminiContent {
	contents := make([]services.GeminiContent, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == "assistant" || msg.Role == "model" {
			role = "model"
		}
		if msg.Content == "" {
			continue
		}
		contents = append(contents, services.GeminiContent{
			Role:  role,
			Parts: []services.GeminiPart{{Text: msg.Content}},
		})
	}
	return contents
}
