package tools

import (
	"context"
	"strings"
	"testing"
)

// captureExecutor records the invocation it received and returns a
// canned result.
type captureExecutor struct {
	inv    *Invocation
	result Result
}

func (e *captureExecutor) Execute(_ context.Context, inv Invocation) (Result, error) {
	e.inv = &inv
	if e.result != nil {
		return e.result, nil
	}
	return Result{"status": "success"}, nil
}

func TestRegisterRejectsUnknownTool(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("no_such_tool", &captureExecutor{}); err == nil {
		t.Fatal("expected error registering a tool with no descriptor")
	}
}

func TestDispatchUnknownToolReturnsErrorResult(t *testing.T) {
	r := NewRegistry()
	result := r.Dispatch(context.Background(), "gmail_tool", Invocation{})
	if result["status"] != "error" {
		t.Fatalf("result = %v, want status error", result)
	}
	if msg, _ := result["error"].(string); !strings.Contains(msg, "unknown tool") {
		t.Errorf("error = %q, want mention of unknown tool", msg)
	}
}

func TestDispatchMissingRequiredArgument(t *testing.T) {
	r := NewRegistry()
	exec := &captureExecutor{}
	if err := r.Register("apollo_search_people", exec); err != nil {
		t.Fatal(err)
	}

	result := r.Dispatch(context.Background(), "apollo_search_people", Invocation{
		Args: map[string]interface{}{},
	})
	if result["status"] != "error" {
		t.Fatalf("result = %v, want status error", result)
	}
	if exec.inv != nil {
		t.Error("executor ran despite missing required argument")
	}
}

func TestDispatchClampsAndDefaultsArguments(t *testing.T) {
	r := NewRegistry()
	exec := &captureExecutor{}
	if err := r.Register("apollo_search_people", exec); err != nil {
		t.Fatal(err)
	}

	// JSON-decoded numbers arrive as float64; limit above the maximum is
	// clamped, unknown extras are dropped.
	r.Dispatch(context.Background(), "apollo_search_people", Invocation{
		Args: map[string]interface{}{
			"query":   "CTOs in fintech",
			"limit":   float64(500),
			"invented": "extra",
		},
	})
	if exec.inv == nil {
		t.Fatal("executor did not run")
	}
	if got := exec.inv.Args["limit"]; got != 100 {
		t.Errorf("limit = %v, want clamped 100", got)
	}
	if _, ok := exec.inv.Args["invented"]; ok {
		t.Error("unknown argument was not dropped")
	}

	// Omitted limit picks up the declared default.
	r.Dispatch(context.Background(), "apollo_search_people", Invocation{
		Args: map[string]interface{}{"query": "CTOs"},
	})
	if got := exec.inv.Args["limit"]; got != 25 {
		t.Errorf("default limit = %v, want 25", got)
	}
}

func TestDispatchRejectsEnumViolation(t *testing.T) {
	r := NewRegistry()
	exec := &captureExecutor{}
	if err := r.Register("gmail_tool", exec); err != nil {
		t.Fatal(err)
	}

	result := r.Dispatch(context.Background(), "gmail_tool", Invocation{
		Args: map[string]interface{}{
			"action":  "delete_everything",
			"subject": "s",
			"body":    "b",
		},
	})
	if result["status"] != "error" {
		t.Fatalf("result = %v, want status error", result)
	}
	if exec.inv != nil {
		t.Error("executor ran despite enum violation")
	}
}

func TestDispatchCoercesStringArrays(t *testing.T) {
	r := NewRegistry()
	exec := &captureExecutor{}
	if err := r.Register("apollo_search_people", exec); err != nil {
		t.Fatal(err)
	}

	r.Dispatch(context.Background(), "apollo_search_people", Invocation{
		Args: map[string]interface{}{
			"query":         "CTOs",
			"person_titles": []interface{}{"CEO", "CTO"},
		},
	})
	titles, ok := exec.inv.Args["person_titles"].([]string)
	if !ok || len(titles) != 2 || titles[1] != "CTO" {
		t.Errorf("person_titles = %v (%T)", exec.inv.Args["person_titles"], exec.inv.Args["person_titles"])
	}
}
