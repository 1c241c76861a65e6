// Package research gathers web search results about a company and synthesizes
// them into a CompanyResearch for question generation.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/prompts"
	"github.com/noahbkim00/executive-ai-mvp/internal/observability"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
	"github.com/noahbkim00/executive-ai-mvp/internal/platform/completion"
	"github.com/noahbkim00/executive-ai-mvp/internal/platform/search"
)

const (
	stageName = "research"

	// FallbackConfidence marks research inferred from the company name alone.
	FallbackConfidence = 0.2
	defaultConfidence  = 0.5

	defaultQueryTimeout   = 15 * time.Second
	defaultMaxPerCategory = 5
)

// ErrSearchUnavailable is the cause when every category query failed.
var ErrSearchUnavailable = errors.New("research: all search queries failed")

type Config struct {
	QueryTimeout   time.Duration
	MaxPerCategory int
	// Concurrency caps in-flight queries; zero runs all categories at once.
	Concurrency int
}

type Deps struct {
	Log      *logger.Logger
	Searcher search.Searcher
	Model    completion.Model
	Metrics  *observability.Metrics
	Config   Config
	Now      func() time.Time
}

type Researcher struct {
	log      *logger.Logger
	searcher search.Searcher
	model    completion.Model
	metrics  *observability.Metrics
	cfg      Config
	now      func() time.Time
}

func New(deps Deps) *Researcher {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	cfg := deps.Config
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = defaultQueryTimeout
	}
	if cfg.MaxPerCategory <= 0 {
		cfg.MaxPerCategory = defaultMaxPerCategory
	}
	searcher := deps.Searcher
	if searcher == nil {
		searcher = search.Disabled{}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Researcher{
		log:      log.With("service", "CompanyResearcher"),
		searcher: searcher,
		model:    deps.Model,
		metrics:  deps.Metrics,
		cfg:      cfg,
		now:      now,
	}
}

// Research never fails. When searching or synthesis fails the result is a
// name-based heuristic with FallbackConfidence and Degraded set.
func (r *Researcher) Research(ctx context.Context, companyName, roleTitle string) intake.Outcome[intake.CompanyResearch] {
	start := time.Now()
	companyName = strings.TrimSpace(companyName)
	ctx, span := observability.StartSpan(ctx, "intake.research", attribute.String("intake.company", companyName))

	out := r.research(ctx, companyName, roleTitle)

	outcome := "success"
	if out.Degraded {
		outcome = "degraded"
	}
	span.SetAttributes(
		attribute.String("intake.outcome", outcome),
		attribute.Float64("intake.research_confidence", out.Value.Confidence),
	)
	observability.EndSpan(span, nil)
	r.metrics.ObserveStage(stageName, outcome, time.Since(start))
	r.metrics.ObserveResearchConfidence(out.Value.Confidence)
	return out
}

func (r *Researcher) research(ctx context.Context, companyName, roleTitle string) intake.Outcome[intake.CompanyResearch] {
	if companyName == "" {
		return intake.Degraded(Fallback(companyName, roleTitle), errors.New("research: empty company name"))
	}

	results := r.gather(ctx, companyName)
	if !results.anySucceeded() {
		r.log.Warn("Company search unavailable, using heuristic research", "company", companyName)
		return intake.Degraded(Fallback(companyName, roleTitle), ErrSearchUnavailable)
	}

	p, err := prompts.Build(prompts.ResearchSynthesis, prompts.Input{
		CompanyName:   companyName,
		SearchResults: results.format(r.cfg.MaxPerCategory),
	})
	if err != nil {
		return intake.Degraded(Fallback(companyName, roleTitle), err)
	}
	res := completion.Structured[synthesis](ctx, r.model, string(prompts.ResearchSynthesis), p.System, p.User)
	if !res.OK() {
		r.log.Warn("Research synthesis failed, using heuristic research", "company", companyName, "error", res.Err())
		return intake.Degraded(Fallback(companyName, roleTitle), res.Err())
	}

	out := toResearch(res.Value, companyName)
	r.log.Info("Company research completed",
		"company", companyName,
		"funding_stage", string(out.FundingStage),
		"company_size", string(out.CompanySize),
		"confidence", out.Confidence,
	)
	return intake.Succeeded(out)
}

// gather runs every category query concurrently. A failed query is logged and
// leaves its category empty; it never cancels its siblings.
func (r *Researcher) gather(ctx context.Context, companyName string) categoryResults {
	qs := Queries(companyName, r.now().Year())
	out := make(categoryResults, len(qs))

	var g errgroup.Group
	if r.cfg.Concurrency > 0 {
		g.SetLimit(r.cfg.Concurrency)
	}
	for i, q := range qs {
		g.Go(func() error {
			qctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout)
			defer cancel()
			items, err := r.searcher.Search(qctx, q.Text)
			out[i] = categoryResult{Category: q.Category, Results: items, Err: err}
			if err != nil {
				r.log.Warn("Research query failed", "category", q.Category, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

type Query struct {
	Category string
	Text     string
}

// Queries returns the fixed category queries for a company.
func Queries(companyName string, year int) []Query {
	c := companyName
	return []Query{
		{Category: "funding", Text: c + " funding series round investors valuation"},
		{Category: "industry", Text: c + " industry business model revenue competitors"},
		{Category: "leadership", Text: c + " CEO CTO CFO executive team leadership hiring"},
		{Category: "news", Text: fmt.Sprintf("%s news %d %d announcements partnerships", c, year-1, year)},
		{Category: "size", Text: c + " employees headcount company size"},
		{Category: "ipo", Text: c + " IPO public offering S-1 filing"},
	}
}

type categoryResult struct {
	Category string
	Results  []search.Result
	Err      error
}

type categoryResults []categoryResult

func (rs categoryResults) anySucceeded() bool {
	for _, r := range rs {
		if r.Err == nil {
			return true
		}
	}
	return false
}

// format renders the category-labeled context block handed to synthesis.
func (rs categoryResults) format(maxPerCategory int) string {
	var b strings.Builder
	for _, r := range rs {
		if r.Err != nil || len(r.Results) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n=== %s SEARCH RESULTS ===\n", strings.ToUpper(r.Category))
		for i, item := range r.Results {
			if i >= maxPerCategory {
				break
			}
			fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, item.Title, item.Snippet)
			if item.Date != "" {
				fmt.Fprintf(&b, "   Date: %s\n", item.Date)
			}
			fmt.Fprintf(&b, "   URL: %s\n\n", item.URL)
		}
	}
	if b.Len() == 0 {
		return "No search results found."
	}
	return b.String()
}
