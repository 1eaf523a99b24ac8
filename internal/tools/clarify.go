package tools

import (
	"context"
	"fmt"
	"strings"
)

// ClarifyExecutor formats a clarification request for the user. Pure and
// local; the agent surfaces the text as the assistant's reply.
type ClarifyExecutor struct{}

func NewClarifyExecutor() *ClarifyExecutor {
	return &ClarifyExecutor{}
}

func (e *ClarifyExecutor) Execute(_ context.Context, inv Invocation) (Result, error) {
	question, _ := inv.Args["question"].(string)

	var b strings.Builder
	b.WriteString("I need some clarification to help you better:\n\n**")
	b.WriteString(question)
	b.WriteString("**")

	if context, ok := inv.Args["context"].(string); ok && context != "" {
		b.WriteString("\n\n_Context: ")
		b.WriteString(context)
		b.WriteString("_")
	}

	if options, ok := inv.Args["options"].([]string); ok && len(options) > 0 {
		b.WriteString("\n\nPlease choose from these options:\n")
		for i, opt := range options {
			fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
		}
	}

	return Result{
		"status":  "success",
		"message": b.String(),
	}, nil
}
