package tools

import (
	"context"
	"strings"
	"testing"
)

func TestClarifyFormatsQuestion(t *testing.T) {
	executor := NewClarifyExecutor()

	result, err := executor.Execute(context.Background(), Invocation{
		Args: map[string]interface{}{
			"question": "Which job titles should I target?",
			"context":  "The search needs at least one title filter",
			"options":  []string{"CTO", "VP Engineering"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	message, _ := result["message"].(string)
	for _, want := range []string{
		"**Which job titles should I target?**",
		"_Context: The search needs at least one title filter_",
		"1. CTO",
		"2. VP Engineering",
	} {
		if !strings.Contains(message, want) {
			t.Errorf("message missing %q:\n%s", want, message)
		}
	}
}

func TestClarifyQuestionOnly(t *testing.T) {
	result, err := NewClarifyExecutor().Execute(context.Background(), Invocation{
		Args: map[string]interface{}{"question": "How many leads?"},
	})
	if err != nil {
		t.Fatal(err)
	}
	message, _ := result["message"].(string)
	if strings.Contains(message, "Context") || strings.Contains(message, "options") {
		t.Errorf("unexpected sections in %q", message)
	}
}
