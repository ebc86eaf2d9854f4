package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnthropicComplete(t *testing.T) {
	var gotReq anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("path = %s, want /messages", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "sk-test" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != anthropicAPIVersion {
			t.Errorf("anthropic-version = %q", r.Header.Get("anthropic-version"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"content": [{"type": "text", "text": "from textual.app import App"}],
			"usage": {"input_tokens": 120, "output_tokens": 340}
		}`))
	}))
	defer server.Close()

	c := newAnthropic(Config{APIKey: "sk-test", BaseURL: server.URL + "/"})
	got, err := c.complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	if got.Text != "from textual.app import App" {
		t.Errorf("Text = %q", got.Text)
	}
	if got.PromptTokens != 120 || got.CompletionTokens != 340 {
		t.Errorf("tokens = %d/%d, want 120/340", got.PromptTokens, got.CompletionTokens)
	}
	if gotReq.Model != anthropicDefaultModel {
		t.Errorf("model = %q, want %q", gotReq.Model, anthropicDefaultModel)
	}
	if gotReq.MaxTokens != 8192 {
		t.Errorf("max_tokens = %d, want 8192", gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "hello" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestAnthropicErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
		wantErr error
	}{
		{
			name:    "api error message",
			status:  http.StatusUnauthorized,
			body:    `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			wantMsg: "anthropic error (401): invalid x-api-key",
		},
		{
			name:    "rate limited",
			status:  http.StatusTooManyRequests,
			body:    `{"error":{"type":"rate_limit_error","message":"slow down"}}`,
			wantMsg: "rate limit exceeded: slow down",
		},
		{
			name:    "unparseable body",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			wantMsg: "anthropic error: status 502",
		},
		{
			name:    "no text blocks",
			status:  http.StatusOK,
			body:    `{"content": [], "usage": {"input_tokens": 1, "output_tokens": 0}}`,
			wantErr: ErrEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := newAnthropic(Config{APIKey: "k", BaseURL: server.URL})
			_, err := c.complete(context.Background(), "x")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGeminiComplete(t *testing.T) {
	var gotReq geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.5-flash:generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "g-key" {
			t.Errorf("x-goog-api-key = %q", r.Header.Get("x-goog-api-key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "import "}, {"text": "textual"}]}}],
			"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 20}
		}`))
	}))
	defer server.Close()

	c := newGemini(Config{APIKey: "g-key", BaseURL: server.URL, MaxTokens: 1024})
	got, err := c.complete(context.Background(), "prompt text")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	if got.Text != "import textual" {
		t.Errorf("Text = %q", got.Text)
	}
	if got.PromptTokens != 10 || got.CompletionTokens != 20 {
		t.Errorf("tokens = %d/%d, want 10/20", got.PromptTokens, got.CompletionTokens)
	}
	if gotReq.GenerationConfig.MaxOutputTokens != 1024 {
		t.Errorf("maxOutputTokens = %d, want 1024", gotReq.GenerationConfig.MaxOutputTokens)
	}
	if len(gotReq.Contents) != 1 || gotReq.Contents[0].Parts[0].Text != "prompt text" {
		t.Errorf("contents = %+v", gotReq.Contents)
	}
}

func TestGeminiNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	c := newGemini(Config{APIKey: "k", BaseURL: server.URL})
	if _, err := c.complete(context.Background(), "x"); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestOpenAIComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer oa-key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body["model"] != "gpt-4o" {
			t.Errorf("model = %v", body["model"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "print(1)"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 7, "completion_tokens": 3, "total_tokens": 10}
		}`))
	}))
	defer server.Close()

	c := newOpenAI(Config{APIKey: "oa-key", Model: "gpt-4o", BaseURL: server.URL + "/v1"})
	got, err := c.complete(context.Background(), "x")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if got.Text != "print(1)" {
		t.Errorf("Text = %q", got.Text)
	}
	if got.PromptTokens != 7 || got.CompletionTokens != 3 {
		t.Errorf("tokens = %d/%d, want 7/3", got.PromptTokens, got.CompletionTokens)
	}
	if c.model() != "gpt-4o" {
		t.Errorf("model() = %q", c.model())
	}
}

func TestOpenAIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "Incorrect API key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	c := newOpenAI(Config{APIKey: "bad", BaseURL: server.URL})
	_, err := c.complete(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Incorrect API key") {
		t.Errorf("error = %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	names := r.Names()
	want := []string{"anthropic", "gemini", "openai"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	for _, name := range []string{"anthropic", "Gemini", "OPENAI"} {
		p, err := r.New(name, Config{APIKey: "k"}, Options{})
		if err != nil {
			t.Errorf("New(%q) failed: %v", name, err)
			continue
		}
		if p.Name() != strings.ToLower(name) {
			t.Errorf("Name() = %q, want %q", p.Name(), strings.ToLower(name))
		}
	}

	if _, err := r.New("cohere", Config{}, Options{}); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestRegistryRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	backend := &fakeCompleter{reply: Completion{Text: "custom"}}
	r.Register("Local", func(config Config, opts Options) (Provider, error) {
		return newService("local", backend, opts), nil
	})

	p, err := r.New("local", Config{}, Options{Limiter: unlimited()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	code, err := p.Repair(context.Background(), "a", "b")
	if err != nil || code != "custom" {
		t.Errorf("Repair = %q, %v", code, err)
	}
}
