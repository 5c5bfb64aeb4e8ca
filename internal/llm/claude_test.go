package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func claudeMessageResponse(text string, inputTokens, outputTokens int) map[string]any {
	return map[string]any{
		"id":    "msg_1",
		"type":  "message",
		"role":  "assistant",
		"model": "test-model",
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"stop_reason": "end_turn",
		"usage": map[string]any{
			"input_tokens":  inputTokens,
			"output_tokens": outputTokens,
		},
	}
}

func TestClaudeProvider_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}
		_ = r.Body.Close()

		w.Header().Set("content-type", "application/json")
		_ = json.NewEncoder(w).Encode(claudeMessageResponse("Paris", 3, 5))
	}))
	t.Cleanup(srv.Close)

	p := NewClaudeProvider("k", srv.URL+"/v1", "m")

	resp, err := p.Complete(context.Background(), &Request{
		System:    "answer briefly",
		Messages:  []Message{{Role: "user", Content: "capital of France?"}},
		MaxTokens: 16,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "Paris" {
		t.Fatalf("text: got %q", resp.Text)
	}
	if resp.InputTokens != 3 || resp.OutputTokens != 5 {
		t.Fatalf("usage: got %d/%d", resp.InputTokens, resp.OutputTokens)
	}
	if resp.StopReason != "end_turn" {
		t.Fatalf("stop reason: got %q", resp.StopReason)
	}
}

func TestClaudeProvider_Guards(t *testing.T) {
	var pnil *ClaudeProvider
	if _, err := pnil.Complete(context.Background(), &Request{}); err == nil {
		t.Fatalf("expected error for nil provider")
	}

	p := NewClaudeProvider("k", "", "")
	if _, err := p.Complete(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil request")
	}

	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("ANTHROPIC_AUTH_TOKEN", "")
	p = NewClaudeProvider("", "", "")
	if _, err := p.Complete(context.Background(), &Request{}); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}

func TestSDKBaseURL(t *testing.T) {
	cases := map[string]string{
		"http://x/v1":  "http://x",
		"http://x/v1/": "http://x",
		"http://x":     "http://x",
		"":             "",
	}
	for in, want := range cases {
		if got := sdkBaseURL(in); got != want {
			t.Fatalf("sdkBaseURL(%q): got %q want %q", in, got, want)
		}
	}
}
