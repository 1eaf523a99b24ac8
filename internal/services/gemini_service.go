package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
	"github.com/arcwardens/outreach-backend/internal/config"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// FunctionDeclaration describes one callable tool to the model.
type FunctionDeclaration struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// GeminiFunctionCall is the model's request to invoke a tool.
type GeminiFunctionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// GeminiFunctionResponse carries a tool result back to the model.
type GeminiFunctionResponse struct {
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response"`
}

// GeminiPart is one content fragment: text, a function call, or a
// function response.
type GeminiPart struct {
	Text             string                  `json:"text,omitempty"`
	FunctionCall     *GeminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *GeminiFunctionResponse `json:"functionResponse,omitempty"`
}

// GeminiContent is one turn in the model conversation.
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// FunctionCalls returns the function-call parts of the content, in order.
func (c *GeminiContent) FunctionCalls() []GeminiFunctionCall {
	var calls []GeminiFunctionCall
	for _, part := range c.Parts {
		if part.FunctionCall != nil {
			calls = append(calls, *part.FunctionCall)
		}
	}
	return calls
}

// Text concatenates the text parts of the content.
func (c *GeminiContent) Text() string {
	var out string
	for _, part := range c.Parts {
		out += part.Text
	}
	return out
}

// GeminiClient is the generative-language surface the agent and the
// contact filter depend on.
type GeminiClient interface {
	GenerateContent(ctx context.Context, system string, contents []GeminiContent, tools []FunctionDeclaration) (*GeminiContent, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type GeminiService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiService(cfg config.GeminiConfig) *GeminiService {
	return &GeminiService{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: geminiBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type geminiRequest struct {
	SystemInstruction *GeminiContent  `json:"systemInstruction,omitempty"`
	Contents          []GeminiContent `json:"contents"`
	Tools             []geminiTool    `json:"tools,omitempty"`
}

type geminiTool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      GeminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateContent runs one model turn with optional tool declarations
// and returns the first candidate's content.
func (s *GeminiService) GenerateContent(ctx context.Context, system string, contents []GeminiContent, tools []FunctionDeclaration) (*GeminiContent, error) {
	if s.apiKey == "" {
		return nil, apperrors.New(apperrors.NotConfigured, "GEMINI_API_KEY is not configured")
	}

	reqBody := geminiRequest{Contents: contents}
	if system != "" {
		reqBody.SystemInstruction = &GeminiContent{Parts: []GeminiPart{{Text: system}}}
	}
	if len(tools) > 0 {
		reqBody.Tools = []geminiTool{{FunctionDeclarations: tools}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.UpstreamUnavailable, "gemini request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gemini response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperrors.Wrap(apperrors.UpstreamUnavailable, "failed to parse gemini response", err)
	}

	if resp.StatusCode >= 400 {
		message := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			message = parsed.Error.Message
		}
		logrus.Errorf("Gemini API error (%d): %s", resp.StatusCode, message)
		return nil, apperrors.Newf(apperrors.UpstreamUnavailable, "gemini error: %s", message)
	}

	if len(parsed.Candidates) == 0 {
		return nil, apperrors.New(apperrors.UpstreamUnavailable, "gemini returned no candidates")
	}

	content := parsed.Candidates[0].Content
	return &content, nil
}

// GenerateText is the tool-free single-prompt variant used by the
// contact filter.
func (s *GeminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	content, err := s.GenerateContent(ctx, "", []GeminiContent{
		{Role: "user", Parts: []GeminiPart{{Text: prompt}}},
	}, nil)
	if err != nil {
		return "", err
	}
	return content.Text(), nil
}
