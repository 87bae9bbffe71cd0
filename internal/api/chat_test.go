package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vizchat/vizchat/internal/assistant"
	"github.com/vizchat/vizchat/internal/config"
	"github.com/vizchat/vizchat/internal/llm"
)

func TestChatEndpointAnswersWithTableContext(t *testing.T) {
	cfg, err := config.Load("vizchat-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	completer := &recordingCompleter{text: "Revenue is highest in East."}
	h := NewHandler(cfg, Dependencies{Chat: assistant.NewService(completer, nil)})

	body := `{"message":"Which region leads?","tableau":{"sheetName":"Sales","columns":["Region","Revenue"],"rows":[["East",100],["West","n/a"]]}}`
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	var resp assistant.ChatResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Response != "Revenue is highest in East." {
		t.Fatalf("response = %q", resp.Response)
	}
	for _, want := range []string{
		"User question:\nWhich region leads?",
		"worksheet named 'Sales'",
		"It contains 2 rows and 2 columns.",
		"Region,Revenue\nEast,100\nWest,n/a\n",
	} {
		if !strings.Contains(completer.prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, completer.prompt)
		}
	}
}

func TestChatEndpointWithoutTableauUsesNoDataContext(t *testing.T) {
	cfg, err := config.Load("vizchat-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	completer := &recordingCompleter{text: "General answer."}
	h := NewHandler(cfg, Dependencies{Chat: assistant.NewService(completer, nil)})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hello","tableau":null}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(completer.prompt, "No Tableau data was provided for context.") {
		t.Fatalf("prompt = %s", completer.prompt)
	}
}

func TestChatEndpointReturnsFallbackForBlankModelOutput(t *testing.T) {
	cfg, err := config.Load("vizchat-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	h := NewHandler(cfg, Dependencies{Chat: assistant.NewService(&recordingCompleter{text: "  \n"}, nil)})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"message":"?"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp assistant.ChatResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Response != assistant.FallbackAnswer {
		t.Fatalf("response = %q", resp.Response)
	}
}

func TestChatEndpointModelFailureReturns500WithoutResponse(t *testing.T) {
	cfg, err := config.Load("vizchat-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	completer := &recordingCompleter{err: errors.New("upstream unavailable")}
	h := NewHandler(cfg, Dependencies{Chat: assistant.NewService(completer, nil)})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"message":"hi"}`)))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := body["response"]; ok {
		t.Fatalf("error body carried a response: %#v", body)
	}
	if body["error_code"] != "MODEL_INVOCATION_FAILED" {
		t.Fatalf("error_code = %#v", body["error_code"])
	}
	message, _ := body["message"].(string)
	if !strings.HasPrefix(message, "Internal Server Error: ") || !strings.Contains(message, "upstream unavailable") {
		t.Fatalf("message = %q", message)
	}
}

func TestChatEndpointRequestValidation(t *testing.T) {
	cfg, err := config.Load("vizchat-api", mapLookup(map[string]string{
		"VIZCHAT_HTTP_MAX_BODY_BYTES": "64",
	}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	h := NewHandler(cfg, Dependencies{Chat: &fakeChatService{answer: "ok"}})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "invalid json", body: `{"message":`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_JSON"},
		{name: "wrong message type", body: `{"message":42}`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_JSON"},
		{name: "missing message", body: `{"tableau":null}`, wantStatus: http.StatusBadRequest, wantCode: "MESSAGE_REQUIRED"},
		{name: "too large", body: `{"message":"` + strings.Repeat("a", 128) + `"}`, wantStatus: http.StatusRequestEntityTooLarge, wantCode: "PAYLOAD_TOO_LARGE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(tc.body)))
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
			}
			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body["error_code"] != tc.wantCode {
				t.Fatalf("error_code = %#v", body["error_code"])
			}
		})
	}
}

func TestChatEndpointAcceptsEmptyMessage(t *testing.T) {
	cfg, err := config.Load("vizchat-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	chat := &fakeChatService{answer: "ok"}
	h := NewHandler(cfg, Dependencies{Chat: chat})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"message":""}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if chat.last.Message != "" {
		t.Fatalf("message = %q", chat.last.Message)
	}
}

func TestChatEndpointNotConfigured(t *testing.T) {
	cfg, err := config.Load("vizchat-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	h := NewHandler(cfg, Dependencies{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"message":"hi"}`)))
	if rr.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestChatEndpointRejectsGet(t *testing.T) {
	cfg, err := config.Load("vizchat-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	h := NewHandler(cfg, Dependencies{Chat: &fakeChatService{answer: "ok"}})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/chat", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rr.Code)
	}
}

type fakeChatService struct {
	answer string
	err    error
	last   assistant.ChatRequest
}

func (f *fakeChatService) Chat(_ context.Context, req assistant.ChatRequest) (assistant.ChatResponse, error) {
	f.last = req
	if f.err != nil {
		return assistant.ChatResponse{}, f.err
	}
	return assistant.ChatResponse{Response: f.answer}, nil
}

type recordingCompleter struct {
	text   string
	err    error
	prompt string
}

func (c *recordingCompleter) Complete(_ context.Context, prompt string) (llm.Completion, error) {
	c.prompt = prompt
	if c.err != nil {
		return llm.Completion{Provider: "test"}, c.err
	}
	return llm.Completion{Text: c.text, Provider: "test", Model: "test-model"}, nil
}
