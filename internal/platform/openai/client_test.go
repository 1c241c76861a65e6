package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type recordedCall struct {
	Auth string
	Body map[string]any
}

type fakeResponses struct {
	mu      sync.Mutex
	calls   []recordedCall
	handler func(n int, body map[string]any) (int, string)
}

func (f *fakeResponses) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Auth: r.Header.Get("Authorization"), Body: body})
	n := len(f.calls)
	f.mu.Unlock()
	status, payload := f.handler(n, body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, payload)
}

func outputText(text string) string {
	b, _ := json.Marshal(map[string]any{
		"output": []any{map[string]any{
			"type": "message",
			"role": "assistant",
			"content": []any{map[string]any{
				"type": "output_text",
				"text": text,
			}},
		}},
		"usage": map[string]any{"input_tokens": 10, "output_tokens": 5},
	})
	return string(b)
}

func newTestClient(t *testing.T, f *fakeResponses, retries int) Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c, err := NewClient(nil, Config{
		APIKey:       "sk-test",
		BaseURL:      srv.URL,
		Model:        "gpt-test",
		Timeout:      5 * time.Second,
		MaxRetries:   retries,
		RetryBackoff: time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(nil, Config{}, nil); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestGenerateJSONSendsSchemaAndTemperature(t *testing.T) {
	f := &fakeResponses{handler: func(int, map[string]any) (int, string) {
		return http.StatusOK, outputText(`{"title":"VP of Engineering"}`)
	}}
	c := WithTemperature(newTestClient(t, f, 0), 0.1)

	obj, err := c.GenerateJSON(context.Background(), "sys", "user", "job", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if obj["title"] != "VP of Engineering" {
		t.Fatalf("title: got=%v", obj["title"])
	}
	if len(f.calls) != 1 {
		t.Fatalf("calls: want=1 got=%d", len(f.calls))
	}
	call := f.calls[0]
	if call.Auth != "Bearer sk-test" {
		t.Fatalf("auth header: got=%q", call.Auth)
	}
	if call.Body["temperature"] != 0.1 {
		t.Fatalf("temperature: got=%v", call.Body["temperature"])
	}
	format := call.Body["text"].(map[string]any)["format"].(map[string]any)
	if format["type"] != "json_schema" || format["name"] != "job" {
		t.Fatalf("format: got=%v", format)
	}
}

func TestGenerateJSONMalformedOutput(t *testing.T) {
	f := &fakeResponses{handler: func(int, map[string]any) (int, string) {
		return http.StatusOK, outputText("Sure! Here is the role: VP")
	}}
	c := newTestClient(t, f, 0)

	_, err := c.GenerateJSON(context.Background(), "sys", "user", "job", map[string]any{"type": "object"})
	if !errors.Is(err, ErrMalformedOutput) {
		t.Fatalf("want ErrMalformedOutput got=%v", err)
	}
	var oe *OutputError
	if !errors.As(err, &oe) || oe.Raw != "Sure! Here is the role: VP" {
		t.Fatalf("raw output not kept: %#v", err)
	}
}

func TestGenerateJSONStripsCodeFence(t *testing.T) {
	f := &fakeResponses{handler: func(int, map[string]any) (int, string) {
		return http.StatusOK, outputText("```json\n{\"ok\":true}\n```")
	}}
	c := newTestClient(t, f, 0)
	obj, err := c.GenerateJSON(context.Background(), "sys", "user", "x", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if obj["ok"] != true {
		t.Fatalf("ok: got=%v", obj["ok"])
	}
}

func TestTemperatureRejectedRetriesWithoutAndRemembers(t *testing.T) {
	f := &fakeResponses{handler: func(_ int, body map[string]any) (int, string) {
		if _, ok := body["temperature"]; ok {
			return http.StatusBadRequest, `{"error":{"message":"Unsupported parameter: 'temperature' is not supported with this model."}}`
		}
		return http.StatusOK, outputText("APPROPRIATE")
	}}
	c := WithTemperature(newTestClient(t, f, 0), 0)

	for i := 0; i < 2; i++ {
		got, err := c.GenerateText(context.Background(), "sys", "user")
		if err != nil {
			t.Fatalf("GenerateText #%d: %v", i, err)
		}
		if got != "APPROPRIATE" {
			t.Fatalf("text: got=%q", got)
		}
	}
	if len(f.calls) != 3 {
		t.Fatalf("calls: want=3 (reject, retry, remembered) got=%d", len(f.calls))
	}
	if _, ok := f.calls[2].Body["temperature"]; ok {
		t.Fatalf("learned no-temperature model still sent temperature")
	}
}

func TestRetriesTransientStatus(t *testing.T) {
	f := &fakeResponses{handler: func(n int, _ map[string]any) (int, string) {
		if n == 1 {
			return http.StatusServiceUnavailable, `{"error":"busy"}`
		}
		return http.StatusOK, outputText("hello")
	}}
	c := newTestClient(t, f, 2)
	got, err := c.GenerateText(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "hello" || len(f.calls) != 2 {
		t.Fatalf("got=%q calls=%d", got, len(f.calls))
	}
}

func TestDoesNotRetryClientError(t *testing.T) {
	f := &fakeResponses{handler: func(int, map[string]any) (int, string) {
		return http.StatusUnauthorized, `{"error":"bad key"}`
	}}
	c := newTestClient(t, f, 3)
	if _, err := c.GenerateText(context.Background(), "sys", "user"); err == nil {
		t.Fatalf("expected error")
	}
	if len(f.calls) != 1 {
		t.Fatalf("calls: want=1 got=%d", len(f.calls))
	}
}

func TestParseNoTempModelRules(t *testing.T) {
	exact, prefixes := parseNoTempModelRules([]string{" o1-* ", "GPT-5", ""})
	if !exact["gpt-5"] || len(prefixes) != 1 || prefixes[0] != "o1" {
		t.Fatalf("rules: exact=%v prefixes=%v", exact, prefixes)
	}
}
