package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openai/openai-go/responses"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

func responseBody(outputText string) string {
	body := map[string]any{
		"id":         "resp_test",
		"object":     "response",
		"created_at": 0,
		"status":     "completed",
		"model":      "gpt-5-mini",
		"output": []any{
			map[string]any{
				"type":   "message",
				"id":     "msg_test",
				"status": "completed",
				"role":   "assistant",
				"content": []any{
					map[string]any{"type": "output_text", "text": outputText, "annotations": []any{}},
				},
			},
		},
	}
	b, _ := json.Marshal(body)
	return string(b)
}

func testOpenAIConfig(url string) OpenAIConfig {
	cfg := DefaultOpenAIConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = url + "/"
	cfg.RateLimitBackoff = []time.Duration{time.Millisecond}
	cfg.ServerErrorBackoff = []time.Duration{time.Millisecond}
	return cfg
}

func TestOpenAIAnalyzer_Analyze(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, responseBody(`{"joy":0.8,"curiosity":0.6,"wonder":0.5,"serenity":0.4,"longing":0.2,"tension":0.1,"awe":0.7}`))
	}))
	defer srv.Close()

	a, err := NewOpenAIAnalyzer(testOpenAIConfig(srv.URL))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	p, err := a.Analyze(context.Background(), "what a lovely morning")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(p) != affect.NumChannels || p[affect.Joy] != 0.8 || p[affect.Awe] != 0.7 {
		t.Fatalf("unexpected partial: %v", p)
	}
	if !strings.HasSuffix(gotPath, "/responses") {
		t.Fatalf("expected responses endpoint, got %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotBody["model"] != "gpt-5-mini" {
		t.Fatalf("model not sent: %v", gotBody["model"])
	}
	text, _ := gotBody["text"].(map[string]any)
	format, _ := text["format"].(map[string]any)
	if format["type"] != "json_schema" || format["strict"] != true {
		t.Fatalf("expected strict json_schema format, got %v", format)
	}
}

func TestOpenAIAnalyzer_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
			return
		}
		fmt.Fprint(w, responseBody(`{"joy":0.5,"curiosity":0.5,"wonder":0.5,"serenity":0.5,"longing":0.5,"tension":0.9,"awe":0.5}`))
	}))
	defer srv.Close()

	a, err := NewOpenAIAnalyzer(testOpenAIConfig(srv.URL))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	p, err := a.Analyze(context.Background(), "deadline panic")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if p[affect.Tension] != 0.9 {
		t.Fatalf("unexpected partial: %v", p)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestOpenAIAnalyzer_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad schema","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	a, err := NewOpenAIAnalyzer(testOpenAIConfig(srv.URL))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := a.Analyze(context.Background(), "anything"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("400 should not be retried, got %d calls", calls.Load())
	}
}

func TestOpenAIAnalyzer_Validation(t *testing.T) {
	if _, err := NewOpenAIAnalyzer(OpenAIConfig{Model: "m"}); err == nil {
		t.Fatal("expected error for missing key")
	}
	if _, err := NewOpenAIAnalyzer(OpenAIConfig{APIKey: "k"}); err == nil {
		t.Fatal("expected error for missing model")
	}
	cfg := DefaultOpenAIConfig()
	cfg.APIKey = "k"
	a, err := NewOpenAIAnalyzer(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := a.Analyze(context.Background(), "  "); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestCallWithRetry_RateLimitThenSuccess(t *testing.T) {
	cfg := OpenAIConfig{MaxAttempts: 3, RateLimitBackoff: []time.Duration{time.Millisecond}}
	calls := 0
	resp, err := CallWithRetry(context.Background(), cfg, func(context.Context) (*responses.Response, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("429 Too Many Requests")
		}
		return &responses.Response{ID: "ok"}, nil
	})
	if err != nil || resp.ID != "ok" {
		t.Fatalf("expected success, got %v %v", resp, err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestCallWithRetry_GivesUp(t *testing.T) {
	cfg := OpenAIConfig{MaxAttempts: 2, ServerErrorBackoff: []time.Duration{time.Millisecond}}
	calls := 0
	_, err := CallWithRetry(context.Background(), cfg, func(context.Context) (*responses.Response, error) {
		calls++
		return nil, errors.New("500 internal server error")
	})
	if err == nil || !strings.Contains(err.Error(), "failed after 2 attempts") {
		t.Fatalf("expected give-up error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestCallWithRetry_CancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := OpenAIConfig{MaxAttempts: 3, RateLimitBackoff: []time.Duration{time.Hour}}
	_, err := CallWithRetry(ctx, cfg, func(context.Context) (*responses.Response, error) {
		cancel()
		return nil, errors.New("rate limit reached")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBackoffAt(t *testing.T) {
	waits := []time.Duration{1, 2}
	if backoffAt(waits, 0) != 1 || backoffAt(waits, 1) != 2 || backoffAt(waits, 5) != 2 {
		t.Fatal("backoff should repeat the last entry")
	}
	if backoffAt(nil, 3) != 0 {
		t.Fatal("empty backoff should be zero")
	}
}
