package tools

import (
	"context"
	"strings"
)

// RepliesExecutor scans the mailbox for replies from known campaign
// senders and records the new ones.
type RepliesExecutor struct {
	scanner   ReplyScanner
	recorder  ReplyRecorder
	store     ContactStore
	allowList []string
}

func NewRepliesExecutor(scanner ReplyScanner, recorder ReplyRecorder, store ContactStore, allowList []string) *RepliesExecutor {
	return &RepliesExecutor{scanner: scanner, recorder: recorder, store: store, allowList: allowList}
}

func (e *RepliesExecutor) Execute(ctx context.Context, inv Invocation) (Result, error) {
	contacts, err := e.store.Contacts(inv.UserID, inv.CampaignID)
	if err != nil {
		return nil, err
	}

	// Replies can come from the resolved contacts or, in test mode, from
	// the allow-list addresses the send was redirected to.
	known := map[string]bool{}
	for _, c := range contacts {
		if c.Email != "" {
			known[strings.ToLower(c.Email)] = true
		}
	}
	for _, addr := range e.allowList {
		known[strings.ToLower(addr)] = true
	}

	candidates, err := e.scanner.CheckReplies(ctx, inv.Token, inv.CampaignID, known)
	if err != nil {
		return nil, err
	}

	added, err := e.recorder.RecordReplies(inv.UserID, inv.CampaignID, candidates)
	if err != nil {
		return nil, err
	}

	all, err := e.recorder.Replies(inv.UserID, inv.CampaignID)
	if err != nil {
		return nil, err
	}

	return Result{
		"status":        "success",
		"new_replies":   added,
		"total_replies": len(all),
	}, nil
}
