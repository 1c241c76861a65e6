package search

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
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/noahbkim00/executive-ai-mvp/internal/observability"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/httpx"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
)

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("search: no search provider configured")

type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Date    string `json:"date,omitempty"`
}

// Searcher runs one web query. An empty slice is a valid answer.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Disabled fails every query so callers take their no-search path.
type Disabled struct{}

func (Disabled) Search(context.Context, string) ([]Result, error) { return nil, ErrNotConfigured }

type Config struct {
	APIKey       string
	BaseURL      string
	NumResults   int
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

const maxNewsResults = 3

type serperClient struct {
	log        *logger.Logger
	metrics    *observability.Metrics
	baseURL    string
	apiKey     string
	numResults int
	httpClient *http.Client
	retry      httpx.RetryPolicy
}

func NewSerperClient(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Searcher, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing serper api key")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://google.serper.dev"
	}
	num := cfg.NumResults
	if num <= 0 {
		num = 10
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &serperClient{
		log:        log.With("client", "SerperClient"),
		metrics:    metrics,
		baseURL:    baseURL,
		apiKey:     apiKey,
		numResults: num,
		httpClient: &http.Client{Timeout: timeout},
		retry:      httpx.RetryPolicy{MaxRetries: max(cfg.MaxRetries, 0), InitialBackoff: cfg.RetryBackoff},
	}, nil
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	HL  string `json:"hl"`
	GL  string `json:"gl"`
}

type serperItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
	Date    string `json:"date"`
}

type serperResponse struct {
	Organic []serperItem `json:"organic"`
	News    []serperItem `json:"news"`
}

func (c *serperClient) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search: empty query")
	}
	ctx, span := observability.StartSpan(ctx, "search.serper", attribute.String("search.query", query))
	start := time.Now()

	var (
		payload serperResponse
		status  = "error"
	)
	err := httpx.Do(ctx, c.log, "serper search", c.retry, func(ctx context.Context) (*http.Response, error) {
		resp, raw, err := c.doOnce(ctx, query)
		if resp != nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		if err != nil {
			return resp, err
		}
		payload = serperResponse{}
		if uErr := json.Unmarshal(raw, &payload); uErr != nil {
			return resp, fmt.Errorf("serper decode error: %w", uErr)
		}
		return resp, nil
	})
	if errors.Is(err, context.DeadlineExceeded) {
		status = "timeout"
	}
	c.metrics.ObserveSearch(status, time.Since(start))
	if err != nil {
		observability.EndSpan(span, err)
		return nil, err
	}
	results := parseSerper(payload)
	span.SetAttributes(attribute.Int("search.results", len(results)))
	observability.EndSpan(span, nil)
	return results, nil
}

func (c *serperClient) doOnce(ctx context.Context, query string) (*http.Response, []byte, error) {
	body, err := json.Marshal(serperRequest{Q: query, Num: c.numResults, HL: "en", GL: "us"})
	if err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
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
		return resp, raw, &httpx.StatusError{Service: "serper", StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

// parseSerper keeps every organic hit, then at most three news hits.
func parseSerper(p serperResponse) []Result {
	out := make([]Result, 0, len(p.Organic)+maxNewsResults)
	for _, it := range p.Organic {
		out = append(out, toResult(it))
	}
	for i, it := range p.News {
		if i >= maxNewsResults {
			break
		}
		out = append(out, toResult(it))
	}
	return out
}

func toResult(it serperItem) Result {
	return Result{
		Title:   strings.TrimSpace(it.Title),
		Snippet: strings.TrimSpace(it.Snippet),
		URL:     strings.TrimSpace(it.Link),
		Date:    strings.TrimSpace(it.Date),
	}
}
