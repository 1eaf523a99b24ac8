package tools

import (
	"context"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
)

// actionTools maps the repeatable action types to the tools that
// originally performed them.
var actionTools = map[string]string{
	"search_leads":    "apollo_search_people",
	"filter_contacts": "filter_contacts_by_company_criteria",
	"send_emails":     "gmail_tool",
}

// RepeatExecutor re-runs a recorded tool call from one of the user's
// campaigns against the current campaign.
type RepeatExecutor struct {
	history  HistoryReader
	registry *Registry
}

func NewRepeatExecutor(history HistoryReader, registry *Registry) *RepeatExecutor {
	return &RepeatExecutor{history: history, registry: registry}
}

func (e *RepeatExecutor) Execute(ctx context.Context, inv Invocation) (Result, error) {
	sourceCampaignID, _ := inv.Args["campaign_id"].(string)
	actionType, _ := inv.Args["action_type"].(string)

	toolName, ok := actionTools[actionType]
	if !ok {
		return nil, apperrors.Newf(apperrors.InvalidRequest, "unknown action type %q", actionType)
	}

	// History lookup is owner-scoped; another user's campaign id reads
	// as not found.
	records, err := e.history.ToolCallHistory(inv.UserID, sourceCampaignID)
	if err != nil {
		return nil, err
	}

	var recorded map[string]interface{}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].ToolName == toolName {
			recorded = records[i].Arguments
			break
		}
	}
	if recorded == nil {
		return nil, apperrors.Newf(apperrors.NotFound, "campaign %s has no recorded %s action", sourceCampaignID, actionType)
	}

	args := map[string]interface{}{}
	for k, v := range recorded {
		args[k] = v
	}
	if overrides, ok := inv.Args["modified_params"].(map[string]interface{}); ok {
		for k, v := range overrides {
			args[k] = v
		}
	}

	// Paid tools must pass back through the payment gate; re-dispatching
	// them from here would execute without a confirmed payment.
	if Costs[toolName] > 0 {
		return Result{
			"status":    "requires_tool_call",
			"tool":      toolName,
			"arguments": args,
			"message":   "This action is a paid tool. Call " + toolName + " directly with these arguments so payment can be confirmed first.",
		}, nil
	}

	repeated := inv
	repeated.Args = args
	return e.registry.Dispatch(ctx, toolName, repeated), nil
}
