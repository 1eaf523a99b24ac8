package tools

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
)

// Invocation carries the request-scoped identity and arguments for one
// tool execution. The delegated token is threaded explicitly; executors
// never reach into ambient state.
type Invocation struct {
	UserID     string
	CampaignID string
	Token      string
	Args       map[string]interface{}
}

// Result is a tool's structured outcome, serialized back to the model
// as a function response.
type Result map[string]interface{}

// ErrorResult wraps a failure as a tool result so the model can react
// to it instead of the request failing.
func ErrorResult(err error) Result {
	return Result{"status": "error", "error": err.Error()}
}

// Executor runs one tool.
type Executor interface {
	Execute(ctx context.Context, inv Invocation) (Result, error)
}

// Registry maps tool names to executors and validates arguments against
// the tool's schema before dispatch.
type Registry struct {
	executors map[string]Executor
}

func NewRegistry() *Registry {
	return &Registry{executors: map[string]Executor{}}
}

// Register binds an executor to a tool name. The name must have a
// descriptor in the catalog.
func (r *Registry) Register(name string, executor Executor) error {
	if DescriptorByName(name) == nil {
		return fmt.Errorf("no descriptor for tool %q", name)
	}
	r.executors[name] = executor
	return nil
}

// Has reports whether a tool is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.executors[name]
	return ok
}

// Dispatch validates and executes one tool call. An unknown tool or a
// schema violation yields an error result, never a request failure: the
// model sees the problem and can correct itself.
func (r *Registry) Dispatch(ctx context.Context, name string, inv Invocation) Result {
	executor, ok := r.executors[name]
	if !ok {
		logrus.Warnf("Dispatch of unknown tool %q", name)
		return ErrorResult(apperrors.Newf(apperrors.ToolNotFound, "unknown tool: %s", name))
	}

	desc := DescriptorByName(name)
	args, err := validateArgs(desc, inv.Args)
	if err != nil {
		return ErrorResult(err)
	}
	inv.Args = args

	result, err := executor.Execute(ctx, inv)
	if err != nil {
		logrus.Warnf("Tool %s failed: %v", name, err)
		return ErrorResult(err)
	}
	if result == nil {
		result = Result{"status": "success"}
	}
	return result
}

// validateArgs checks required fields, applies defaults, and coerces
// the loosely typed values the model produces into the declared types.
func validateArgs(desc *Descriptor, args map[string]interface{}) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	for key, value := range args {
		prop, ok := desc.Properties[key]
		if !ok {
			// Unknown arguments are dropped rather than rejected; the
			// model occasionally invents extras.
			continue
		}
		coerced, err := coerce(key, prop, value)
		if err != nil {
			return nil, err
		}
		out[key] = coerced
	}

	for name, prop := range desc.Properties {
		if _, ok := out[name]; !ok && prop.Default != nil {
			out[name] = prop.Default
		}
	}

	for _, name := range desc.Required {
		if v, ok := out[name]; !ok || v == nil || v == "" {
			return nil, apperrors.Newf(apperrors.InvalidRequest, "tool %s: missing required argument %q", desc.Name, name)
		}
	}
	return out, nil
}

func coerce(name string, prop Property, value interface{}) (interface{}, error) {
	switch prop.Type {
	case "string":
		if s, ok := value.(string); ok {
			if len(prop.Enum) > 0 && !contains(prop.Enum, s) {
				return nil, apperrors.Newf(apperrors.InvalidRequest, "argument %q: %q is not one of %v", name, s, prop.Enum)
			}
			return s, nil
		}
		return fmt.Sprintf("%v", value), nil
	case "integer":
		switch v := value.(type) {
		case float64:
			n := int(v)
			if prop.Minimum != nil && float64(n) < *prop.Minimum {
				n = int(*prop.Minimum)
			}
			if prop.Maximum != nil && float64(n) > *prop.Maximum {
				n = int(*prop.Maximum)
			}
			return n, nil
		case int:
			return v, nil
		}
		return nil, apperrors.Newf(apperrors.InvalidRequest, "argument %q: expected integer, got %T", name, value)
	case "number":
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		}
		return nil, apperrors.Newf(apperrors.InvalidRequest, "argument %q: expected number, got %T", name, value)
	case "boolean":
		if b, ok := value.(bool); ok {
			return b, nil
		}
		return nil, apperrors.Newf(apperrors.InvalidRequest, "argument %q: expected boolean, got %T", name, value)
	case "array":
		list, ok := value.([]interface{})
		if !ok {
			return nil, apperrors.Newf(apperrors.InvalidRequest, "argument %q: expected array, got %T", name, value)
		}
		if prop.Items != nil && prop.Items.Type == "string" {
			out := make([]string, 0, len(list))
			for _, item := range list {
				out = append(out, fmt.Sprintf("%v", item))
			}
			return out, nil
		}
		return list, nil
	case "object":
		if m, ok := value.(map[string]interface{}); ok {
			return m, nil
		}
		return nil, apperrors.Newf(apperrors.InvalidRequest, "argument %q: expected object, got %T", name, value)
	}
	return value, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
