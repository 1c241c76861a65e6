package search

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newClient(t *testing.T, retries int, rt roundTripperFunc) *serperClient {
	t.Helper()
	s, err := NewSerperClient(nil, Config{
		APIKey:       "serper-key",
		BaseURL:      "https://serper.test/",
		NumResults:   7,
		MaxRetries:   retries,
		RetryBackoff: time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("NewSerperClient: %v", err)
	}
	c := s.(*serperClient)
	c.httpClient = &http.Client{Transport: rt}
	return c
}

func TestSerperSearchParsesOrganicAndNews(t *testing.T) {
	var sent serperRequest
	c := newClient(t, 0, func(r *http.Request) (*http.Response, error) {
		if r.URL.String() != "https://serper.test/search" {
			t.Fatalf("url: got=%s", r.URL)
		}
		if r.Header.Get("X-API-KEY") != "serper-key" {
			t.Fatalf("api key header missing")
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &sent)
		return jsonResponse(http.StatusOK, `{
			"organic":[{"title":"Stripe raises","snippet":"Series I","link":"https://a","date":"2024-03-01"},{"title":"Stripe","snippet":"payments","link":"https://b"}],
			"news":[{"title":"n1","link":"https://n1"},{"title":"n2","link":"https://n2"},{"title":"n3","link":"https://n3"},{"title":"n4","link":"https://n4"}]
		}`), nil
	})

	got, err := c.Search(context.Background(), "Stripe funding")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if sent.Q != "Stripe funding" || sent.Num != 7 || sent.HL != "en" || sent.GL != "us" {
		t.Fatalf("request body: %+v", sent)
	}
	if len(got) != 5 {
		t.Fatalf("results: want=5 (2 organic + 3 news) got=%d", len(got))
	}
	if got[0].URL != "https://a" || got[0].Date != "2024-03-01" {
		t.Fatalf("first result: %+v", got[0])
	}
	if got[4].Title != "n3" {
		t.Fatalf("news cap: last=%+v", got[4])
	}
}

func TestSerperSearchEmptyIsNotAnError(t *testing.T) {
	c := newClient(t, 0, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{}`), nil
	})
	got, err := c.Search(context.Background(), "Nobody Inc")
	if err != nil || len(got) != 0 {
		t.Fatalf("want empty, got=%v err=%v", got, err)
	}
}

func TestSerperSearchRetriesThenFails(t *testing.T) {
	var calls int32
	c := newClient(t, 2, func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(http.StatusTooManyRequests, `{"message":"slow down"}`), nil
	})
	_, err := c.Search(context.Background(), "Stripe")
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 3 {
		t.Fatalf("calls: want=3 got=%d", calls)
	}
}

func TestSerperSearchRejectsBlankQuery(t *testing.T) {
	c := newClient(t, 0, func(*http.Request) (*http.Response, error) {
		t.Fatalf("no request expected")
		return nil, nil
	})
	if _, err := c.Search(context.Background(), "   "); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDisabled(t *testing.T) {
	if _, err := (Disabled{}).Search(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured got=%v", err)
	}
	if _, err := NewSerperClient(nil, Config{}, nil); err == nil {
		t.Fatalf("missing key should error")
	}
}
