// Package questions produces the fixed question set for a conversation's questioning phase.
//
// Tiers, in order: model-generated candidates, each validated by a second
// deterministic call; template backfill when too few survive; and a static
// template fallback when generation fails outright.
package questions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	domainagg "github.com/noahbkim00/executive-ai-mvp/internal/domain/aggregates"
	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/prompts"
	"github.com/noahbkim00/executive-ai-mvp/internal/observability"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
	"github.com/noahbkim00/executive-ai-mvp/internal/platform/completion"
)

const (
	stageName = "generation"

	BackfillRationale = "Role-specific question based on functional area and seniority"
	FallbackRationale = "Standard question for this role type"
)

type Config struct {
	MinAccepted   int
	MaxBackfill   int
	MaxQuestions  int
	FallbackCount int
}

func (c Config) withDefaults() Config {
	if c.MinAccepted <= 0 {
		c.MinAccepted = 3
	}
	if c.MaxBackfill <= 0 {
		c.MaxBackfill = 2
	}
	if c.MaxQuestions <= 0 {
		c.MaxQuestions = 5
	}
	if c.FallbackCount <= 0 {
		c.FallbackCount = 4
	}
	return c
}

type Deps struct {
	Log        *logger.Logger
	Generation completion.Model
	Validation completion.Model
	Metrics    *observability.Metrics
	Config     Config
	// Templates defaults to RoleTemplates.
	Templates TemplateSource
}

type Generator struct {
	log        *logger.Logger
	generation completion.Model
	validation completion.Model
	metrics    *observability.Metrics
	cfg        Config
	templates  TemplateSource
}

func New(deps Deps) *Generator {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	templates := deps.Templates
	if templates == nil {
		templates = RoleTemplates
	}
	return &Generator{
		log:        log.With("service", "QuestionGenerator"),
		generation: deps.Generation,
		validation: deps.Validation,
		metrics:    deps.Metrics,
		cfg:        deps.Config.withDefaults(),
		templates:  templates,
	}
}

// Input is everything generation conditions on. Research may be EmptyResearch
// when the company is unknown.
type Input struct {
	Job      *intake.JobRequirements
	Company  *intake.CompanyInfo
	Research intake.CompanyResearch
	Insights intake.ResearchInsights
}

type candidate struct {
	QuestionID string `json:"question_id,omitempty"`
	Question   string `json:"question,omitempty"`
	Category   string `json:"category,omitempty"`
	Rationale  string `json:"rationale,omitempty"`
}

func (c candidate) complete() bool {
	return strings.TrimSpace(c.QuestionID) != "" && strings.TrimSpace(c.Question) != "" &&
		strings.TrimSpace(c.Category) != "" && strings.TrimSpace(c.Rationale) != ""
}

type generated struct {
	Questions []candidate `json:"questions"`
}

func (g generated) Validate() error {
	if len(g.Questions) == 0 {
		return errors.New("no questions generated")
	}
	return nil
}

// Generate returns between 1 and MaxQuestions questions. Degraded is set when the
// static fallback was used. An error is returned only when even the fallback is empty.
func (g *Generator) Generate(ctx context.Context, in Input) (intake.Outcome[intake.QuestionSet], error) {
	const op = "Intake.Questions.Generate"
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "intake.generation")

	out, err := g.generate(ctx, in)

	outcome := "success"
	switch {
	case err != nil:
		outcome = "failed"
	case out.Degraded:
		outcome = "degraded"
	}
	span.SetAttributes(
		attribute.String("intake.outcome", outcome),
		attribute.Int("intake.questions", out.Value.Len()),
	)
	observability.EndSpan(span, err)
	g.metrics.ObserveStage(stageName, outcome, time.Since(start))
	if err != nil {
		return out, domainagg.NewError(domainagg.CodeGenerationFailure, op, "no questions could be produced", err)
	}
	return out, nil
}

func (g *Generator) generate(ctx context.Context, in Input) (intake.Outcome[intake.QuestionSet], error) {
	if in.Job == nil {
		in.Job = intake.FallbackJobRequirements("")
	}
	if in.Company == nil {
		in.Company = intake.FallbackCompanyInfo()
	}

	candidates, err := g.candidates(ctx, in)
	if err != nil {
		g.log.Warn("Question generation failed, using role templates",
			"title", in.Job.Title, "company", in.Company.Name, "error", err)
		set := g.fallback(in)
		if set.Len() == 0 {
			return intake.Outcome[intake.QuestionSet]{}, fmt.Errorf("static fallback empty after: %w", err)
		}
		return intake.Degraded(set, err), nil
	}

	accepted := g.validate(ctx, candidates)
	if len(accepted) < g.cfg.MinAccepted {
		extra := g.backfill(in, accepted)
		g.log.Info("Backfilled role-specific questions", "accepted", len(accepted), "added", len(extra))
		accepted = append(accepted, extra...)
	}
	if len(accepted) > g.cfg.MaxQuestions {
		accepted = accepted[:g.cfg.MaxQuestions]
	}
	if len(accepted) == 0 {
		set := g.fallback(in)
		if set.Len() == 0 {
			return intake.Outcome[intake.QuestionSet]{}, errors.New("no questions survived and static fallback empty")
		}
		return intake.Degraded(set, errors.New("no questions survived validation or backfill")), nil
	}
	return intake.Succeeded(accepted), nil
}

func (g *Generator) candidates(ctx context.Context, in Input) ([]candidate, error) {
	p, err := prompts.Build(prompts.QuestionGeneration, promptInput(in))
	if err != nil {
		return nil, err
	}
	res := completion.Structured[generated](ctx, g.generation, string(prompts.QuestionGeneration), p.System, p.User)
	if !res.OK() {
		return nil, res.Err()
	}
	return res.Value.Questions, nil
}

// validate checks candidates one at a time. Incomplete candidates are dropped
// without a call; a failed call drops only that candidate.
func (g *Generator) validate(ctx context.Context, cands []candidate) intake.QuestionSet {
	var out intake.QuestionSet
	for i, c := range cands {
		if !c.complete() {
			g.log.Warn("Dropping incomplete question candidate", "index", i)
			continue
		}
		text := strings.TrimSpace(c.Question)
		ok, err := g.appropriate(ctx, text)
		if err != nil {
			g.log.Warn("Question validation failed, dropping candidate", "index", i, "error", err)
			continue
		}
		if !ok {
			g.log.Info("Filtered researchable question", "question", text)
			continue
		}
		out = append(out, intake.Question{
			ID:        fmt.Sprintf("q%d", len(out)+1),
			Text:      text,
			Category:  Categorize(text),
			Rationale: strings.TrimSpace(c.Rationale),
		})
	}
	return out
}

func (g *Generator) appropriate(ctx context.Context, question string) (bool, error) {
	p, err := prompts.Build(prompts.QuestionValidation, prompts.Input{Question: question})
	if err != nil {
		return false, err
	}
	res := completion.Text(ctx, g.validation, p.System, p.User)
	if !res.OK() {
		return false, res.Err()
	}
	return ParseVerdict(res.Value), nil
}

// ParseVerdict reads a validation reply. INAPPROPRIATE is checked first since it contains APPROPRIATE.
func ParseVerdict(reply string) bool {
	v := strings.ToUpper(strings.TrimSpace(reply))
	if strings.Contains(v, "INAPPROPRIATE") {
		return false
	}
	return strings.Contains(v, "APPROPRIATE")
}

func (g *Generator) roleTemplates(in Input) []string {
	return g.templates(in.Job.FunctionalArea, in.Job.SeniorityLevel, in.Company.Stage)
}

// backfill draws unseen templates, skipping any that contain an accepted question's text.
func (g *Generator) backfill(in Input, accepted intake.QuestionSet) intake.QuestionSet {
	seen := make([]string, 0, len(accepted))
	for _, q := range accepted {
		seen = append(seen, squash(q.Text))
	}
	var out intake.QuestionSet
	for _, t := range g.roleTemplates(in) {
		if len(out) >= g.cfg.MaxBackfill {
			break
		}
		if duplicates(squash(t), seen) {
			continue
		}
		out = append(out, templateQuestion(intake.TemplateIDPrefix, len(out)+1, t, BackfillRationale))
	}
	return out
}

func (g *Generator) fallback(in Input) intake.QuestionSet {
	var out intake.QuestionSet
	for i, t := range g.roleTemplates(in) {
		if i >= g.cfg.FallbackCount {
			break
		}
		out = append(out, templateQuestion(intake.FallbackIDPrefix, i+1, t, FallbackRationale))
	}
	return out
}

func templateQuestion(prefix string, n int, text, rationale string) intake.Question {
	return intake.Question{
		ID:        fmt.Sprintf("%s%d", prefix, n),
		Text:      text,
		Category:  Categorize(text),
		Rationale: rationale,
	}
}

func squash(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}

func duplicates(template string, seen []string) bool {
	for _, s := range seen {
		if s != "" && strings.Contains(template, s) {
			return true
		}
	}
	return false
}

func promptInput(in Input) prompts.Input {
	r := in.Research
	company := r.CompanyName
	if strings.TrimSpace(company) == "" {
		company = in.Company.Name
	}
	industry := r.Industry
	if strings.TrimSpace(industry) == "" {
		industry = string(in.Company.Industry)
	}
	return prompts.Input{
		CompanyName:           company,
		Industry:              industry,
		FundingStage:          string(r.FundingStage),
		CompanySize:           string(r.CompanySize),
		Competitors:           joinOr(first(r.KeyCompetitors, 3), ", ", "Not identified"),
		RecentDevelopments:    joinOr(first(r.RecentDevelopments, 2), "; ", "Not available"),
		RegulatoryEnvironment: orDefault(r.RegulatoryEnvironment, "Standard business environment"),
		JobTitle:              in.Job.Title,
		SeniorityLevel:        titleCase(string(in.Job.SeniorityLevel)),
		FunctionalArea:        titleCase(string(in.Job.FunctionalArea)),
		StageInsights:         strings.Join(in.Insights.Stage, "; "),
		IndustryInsights:      strings.Join(in.Insights.Industry, "; "),
		CompetitiveInsights:   strings.Join(in.Insights.Competitive, "; "),
		LeadershipNeeds:       strings.Join(in.Insights.Leadership, "; "),
		IPOInsights:           joinOr(in.Insights.IPO, "; ", "Not applicable"),
	}
}

func first(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}

func joinOr(in []string, sep, def string) string {
	if len(in) == 0 {
		return def
	}
	return strings.Join(in, sep)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
