package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/noahbkim00/executive-ai-mvp/internal/observability"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/httpx"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/pointers"
)

// ErrMalformedOutput marks a response that arrived but could not be read as the requested JSON.
var ErrMalformedOutput = errors.New("openai: malformed model output")

// OutputError carries the raw model text alongside ErrMalformedOutput.
type OutputError struct {
	Raw    string
	Reason string
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformedOutput.Error(), e.Reason)
}

func (e *OutputError) Unwrap() error { return ErrMalformedOutput }

type Client interface {
	// Structured outputs (json_schema)
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)

	// Plain text (no schema)
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	// First retry delay; doubles per attempt.
	RetryBackoff time.Duration

	// Models that never accept temperature. A trailing "*" matches by prefix.
	NoTemperatureModels []string
	NoTemperatureTTL    time.Duration
}

// WithTemperature returns a client that sends temperature t on every call.
// Clients that are not *client are returned unchanged.
func WithTemperature(base Client, t float64) Client {
	if c, ok := base.(*client); ok {
		return c.cloneWithTemperature(t)
	}
	return base
}

type client struct {
	log        *logger.Logger
	metrics    *observability.Metrics
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	retry      httpx.RetryPolicy

	temperature *float64

	noTempModels   map[string]bool
	noTempPrefixes []string

	// shared across temperature clones so a learned rejection sticks for the model
	noTemp *noTempMemory
}

type noTempMemory struct {
	mu   sync.RWMutex
	seen map[string]time.Time
	ttl  time.Duration
}

func NewClient(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing openai api key")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	retry := httpx.RetryPolicy{MaxRetries: cfg.MaxRetries, InitialBackoff: cfg.RetryBackoff}
	if retry.MaxRetries < 0 {
		retry.MaxRetries = 0
	}
	ttl := cfg.NoTemperatureTTL
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	noTempModels, noTempPrefixes := parseNoTempModelRules(cfg.NoTemperatureModels)

	if log == nil {
		log = logger.Nop()
	}
	return &client{
		log:            log.With("client", "OpenAIClient"),
		metrics:        metrics,
		baseURL:        baseURL,
		apiKey:         apiKey,
		model:          model,
		httpClient:     &http.Client{Timeout: timeout},
		retry:          retry,
		noTempModels:   noTempModels,
		noTempPrefixes: noTempPrefixes,
		noTemp:         &noTempMemory{seen: map[string]time.Time{}, ttl: ttl},
	}, nil
}

func (c *client) cloneWithTemperature(t float64) *client {
	cp := *c
	cp.temperature = pointers.Float64(t)
	return &cp
}

func normalizeModelKey(m string) string {
	return strings.ToLower(strings.TrimSpace(m))
}

func parseNoTempModelRules(raw []string) (map[string]bool, []string) {
	m := map[string]bool{}
	var prefixes []string
	for _, part := range raw {
		s := normalizeModelKey(part)
		if s == "" {
			continue
		}
		if strings.HasSuffix(s, "*") {
			p := strings.TrimSpace(strings.TrimRight(strings.TrimSuffix(s, "*"), "-_./:"))
			if p != "" {
				prefixes = append(prefixes, p)
			}
			continue
		}
		m[s] = true
	}
	return m, prefixes
}

func (c *client) modelIsNoTemp(model string) bool {
	m := normalizeModelKey(model)
	if m == "" {
		return false
	}
	if c.noTempModels[m] {
		return true
	}
	for _, p := range c.noTempPrefixes {
		if strings.HasPrefix(m, p) {
			return true
		}
	}
	if c.noTemp == nil {
		return false
	}
	c.noTemp.mu.RLock()
	ts, ok := c.noTemp.seen[m]
	ttl := c.noTemp.ttl
	c.noTemp.mu.RUnlock()
	return ok && time.Since(ts) < ttl
}

func (c *client) noteNoTempModel(model string) {
	m := normalizeModelKey(model)
	if m == "" || c.noTemp == nil {
		return
	}
	c.noTemp.mu.Lock()
	c.noTemp.seen[m] = time.Now().UTC()
	c.noTemp.mu.Unlock()
}

func (c *client) applyTemperature(req *responsesRequest) {
	if req == nil || c.temperature == nil {
		return
	}
	if c.modelIsNoTemp(req.Model) {
		return
	}
	t := *c.temperature
	req.Temperature = &t
}

func isUnsupportedTemperatureMessage(s string) bool {
	msg := strings.ToLower(strings.TrimSpace(s))
	if msg == "" || !strings.Contains(msg, "temperature") {
		return false
	}
	for _, marker := range []string{
		"unsupported parameter",
		"unknown parameter",
		"unrecognized parameter",
		"not supported",
		"does not support",
		"only the default",
		"unsupported_value",
		"invalid_request_error",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func isUnsupportedTemperatureParam(err error) bool {
	var se *httpx.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadRequest {
		return false
	}
	return isUnsupportedTemperatureMessage(se.Body)
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &httpx.StatusError{Service: "openai", StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, method, path string, body *responsesRequest, out any) error {
	start := time.Now()
	model := ""
	if body != nil {
		model = body.Model
	}
	var (
		raw     []byte
		lastErr error
		lastRes *http.Response
	)
	err := httpx.Do(ctx, c.log, "openai "+path, c.retry, func(ctx context.Context) (*http.Response, error) {
		resp, b, err := c.doOnce(ctx, method, path, body)
		lastRes, lastErr = resp, err
		if err == nil {
			raw = b
		}
		return resp, err
	})
	if err != nil {
		c.metrics.ObserveLLMRequest(model, path, statusFromRespErr(lastRes, lastErr, err), time.Since(start), 0, 0)
		return err
	}
	inputTokens, outputTokens := extractUsageFromRaw(raw)
	c.metrics.ObserveLLMRequest(model, path, strconv.Itoa(lastRes.StatusCode), time.Since(start), inputTokens, outputTokens)
	if out == nil {
		return nil
	}
	if uErr := json.Unmarshal(raw, out); uErr != nil {
		return fmt.Errorf("openai decode error: %w", uErr)
	}
	return nil
}

// doWithTempFallback retries exactly once without temperature if the model rejects it.
func (c *client) doWithTempFallback(ctx context.Context, req *responsesRequest, out any) error {
	err := c.do(ctx, http.MethodPost, "/v1/responses", req, out)
	if err == nil || req.Temperature == nil || !isUnsupportedTemperatureParam(err) {
		return err
	}
	c.log.Warn("model rejected temperature; retrying without it", "model", req.Model)
	c.noteNoTempModel(req.Model)
	req.Temperature = nil
	return c.do(ctx, http.MethodPost, "/v1/responses", req, out)
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`
	Text  *struct {
		Format map[string]any `json:"format,omitempty"`
	} `json:"text,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type    string `json:"type"`
			Text    string `json:"text,omitempty"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					out.WriteString(c.Text)
				}
			}
		}
	}
	return out.String()
}

func extractRefusal(resp responsesResponse) string {
	if resp.Refusal != "" {
		return resp.Refusal
	}
	for _, item := range resp.Output {
		for _, c := range item.Content {
			if c.Type == "refusal" && c.Refusal != "" {
				return c.Refusal
			}
		}
	}
	return ""
}

func (c *client) newRequest(system, user string) *responsesRequest {
	req := &responsesRequest{
		Model: c.model,
		Input: []inputMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	c.applyTemperature(req)
	return req
}

func (c *client) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	if schemaName == "" {
		return nil, errors.New("schemaName required")
	}
	if schema == nil {
		return nil, errors.New("schema required")
	}
	req := c.newRequest(system, user)
	req.Text = &struct {
		Format map[string]any `json:"format,omitempty"`
	}{Format: map[string]any{
		"type":   "json_schema",
		"name":   schemaName,
		"schema": schema,
		"strict": false,
	}}

	var resp responsesResponse
	if err := c.doWithTempFallback(ctx, req, &resp); err != nil {
		return nil, err
	}
	if refusal := extractRefusal(resp); refusal != "" {
		return nil, &OutputError{Raw: refusal, Reason: "model refused"}
	}
	jsonText := extractOutputText(resp)
	if strings.TrimSpace(jsonText) == "" {
		return nil, &OutputError{Reason: "no output_text found in response"}
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(jsonText)), &obj); err != nil {
		return nil, &OutputError{Raw: jsonText, Reason: "invalid JSON: " + err.Error()}
	}
	return obj, nil
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	req := c.newRequest(system, user)
	var resp responsesResponse
	if err := c.doWithTempFallback(ctx, req, &resp); err != nil {
		return "", err
	}
	if refusal := extractRefusal(resp); refusal != "" {
		return "", &OutputError{Raw: refusal, Reason: "model refused"}
	}
	text := extractOutputText(resp)
	if strings.TrimSpace(text) == "" {
		return "", &OutputError{Reason: "no output_text found in response"}
	}
	return text, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add around JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func extractUsageFromRaw(raw []byte) (int, int) {
	if len(raw) == 0 {
		return 0, 0
	}
	var payload struct {
		Usage *struct {
			InputTokens      int `json:"input_tokens"`
			OutputTokens     int `json:"output_tokens"`
			TotalTokens      int `json:"total_tokens"`
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Usage == nil {
		return 0, 0
	}
	u := payload.Usage
	in, out := u.InputTokens, u.OutputTokens
	if in == 0 && out == 0 {
		in, out = u.PromptTokens, u.CompletionTokens
	}
	if in == 0 && out == 0 && u.TotalTokens > 0 {
		in = u.TotalTokens
	}
	return in, out
}

func statusFromRespErr(resp *http.Response, lastErr, err error) string {
	if resp != nil {
		return strconv.Itoa(resp.StatusCode)
	}
	var se *httpx.StatusError
	if errors.As(lastErr, &se) {
		return strconv.Itoa(se.StatusCode)
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "error"
}
