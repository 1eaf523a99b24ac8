package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
)

func testGeminiService(baseURL string) *GeminiService {
	return &GeminiService{
		apiKey:     "test-key",
		model:      "gemini-2.0-flash",
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGenerateContentRequiresAPIKey(t *testing.T) {
	s := testGeminiService("http://unused")
	s.apiKey = ""
	_, err := s.GenerateContent(context.Background(), "", nil, nil)
	if apperrors.KindOf(err) != apperrors.NotConfigured {
		t.Fatalf("err = %v, want not configured", err)
	}
}

func TestGenerateContentParsesFunctionCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != "be helpful" {
			t.Errorf("systemInstruction = %+v", req.SystemInstruction)
		}
		if len(req.Tools) != 1 || len(req.Tools[0].FunctionDeclarations) != 1 {
			t.Errorf("tools = %+v", req.Tools)
		}

		w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [
			{"functionCall": {"name": "apollo_search_people", "args": {"query": "CTOs"}}}
		]}}]}`))
	}))
	defer srv.Close()

	s := testGeminiService(srv.URL)
	content, err := s.GenerateContent(context.Background(), "be helpful",
		[]GeminiContent{{Role: "user", Parts: []GeminiPart{{Text: "find CTOs"}}}},
		[]FunctionDeclaration{{Name: "apollo_search_people", Description: "search"}},
	)
	if err != nil {
		t.Fatal(err)
	}

	calls := content.FunctionCalls()
	if len(calls) != 1 || calls[0].Name != "apollo_search_people" {
		t.Fatalf("calls = %+v", calls)
	}
	if calls[0].Args["query"] != "CTOs" {
		t.Errorf("args = %v", calls[0].Args)
	}
}

func TestGenerateContentSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"code": 429, "message": "quota exceeded"}}`))
	}))
	defer srv.Close()

	_, err := testGeminiService(srv.URL).GenerateContent(context.Background(), "", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("err = %v, want provider message surfaced", err)
	}
	if apperrors.KindOf(err) != apperrors.UpstreamUnavailable {
		t.Fatalf("kind = %v", apperrors.KindOf(err))
	}
}

func TestGenerateTextConcatenatesParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [
			{"text": "[0, "}, {"text": "1]"}
		]}}]}`))
	}))
	defer srv.Close()

	text, err := testGeminiService(srv.URL).GenerateText(context.Background(), "pick indices")
	if err != nil {
		t.Fatal(err)
	}
	if text != "[0, 1]" {
		t.Fatalf("text = %q", text)
	}
}
