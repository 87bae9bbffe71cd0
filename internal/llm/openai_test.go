package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAICompleterSendsPromptAndReturnsText(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"East leads."}}]}`))
	}))
	defer srv.Close()

	completer, err := NewOpenAICompleter(OpenAIConfig{BaseURL: srv.URL + "/", APIKey: " k1 ", Model: "m1", MaxOutputTokens: 64})
	if err != nil {
		t.Fatalf("NewOpenAICompleter() error = %v", err)
	}
	got, err := completer.Complete(context.Background(), "which region leads?")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got.Text != "East leads." || got.Provider != ProviderOpenAI || got.Model != "m1" {
		t.Fatalf("Complete() = %#v", got)
	}
	if gotAuth != "Bearer k1" || gotPath != "/v1/chat/completions" {
		t.Fatalf("request auth=%q path=%q", gotAuth, gotPath)
	}
	messages, ok := gotBody["messages"].([]any)
	if !ok || len(messages) != 1 {
		t.Fatalf("messages = %#v", gotBody["messages"])
	}
	if content := messages[0].(map[string]any)["content"]; content != "which region leads?" {
		t.Fatalf("content = %#v", content)
	}
	if gotBody["max_tokens"] != float64(64) {
		t.Fatalf("max_tokens = %#v", gotBody["max_tokens"])
	}
}

func TestOpenAICompleterReturnsEmptyTextWithoutChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	completer, err := NewOpenAICompleter(OpenAIConfig{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewOpenAICompleter() error = %v", err)
	}
	got, err := completer.Complete(context.Background(), "p")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got.Text != "" {
		t.Fatalf("Text = %q", got.Text)
	}
}

func TestOpenAICompleterFailsOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	completer, err := NewOpenAICompleter(OpenAIConfig{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewOpenAICompleter() error = %v", err)
	}
	_, err = completer.Complete(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "status=401") {
		t.Fatalf("Complete() error = %v", err)
	}
}

func TestNewOpenAICompleterRequiresKey(t *testing.T) {
	if _, err := NewOpenAICompleter(OpenAIConfig{BaseURL: "https://api.example.com"}); err == nil {
		t.Fatal("expected error")
	}
}
