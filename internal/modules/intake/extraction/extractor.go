// Package extraction turns a hiring manager's free-text request into job requirements and company info.
package extraction

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"

	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/prompts"
	"github.com/noahbkim00/executive-ai-mvp/internal/observability"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
	"github.com/noahbkim00/executive-ai-mvp/internal/platform/completion"
)

const stageName = "extraction"

// Extraction is the pair produced from one message. Neither side is ever nil;
// missing pieces carry the sentinel values.
type Extraction struct {
	Job     *intake.JobRequirements
	Company *intake.CompanyInfo
}

// Usable reports whether the extraction found a role to search for.
func (e Extraction) Usable() bool {
	return e.Job.Known()
}

type Deps struct {
	Log     *logger.Logger
	Model   completion.Model
	Metrics *observability.Metrics
	// Enrich toggles the secondary company-context call.
	Enrich bool
}

type Extractor struct {
	log     *logger.Logger
	model   completion.Model
	metrics *observability.Metrics
	enrich  bool
}

func New(deps Deps) *Extractor {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{
		log:     log.With("service", "RequirementsExtractor"),
		model:   deps.Model,
		metrics: deps.Metrics,
		enrich:  deps.Enrich,
	}
}

type jobExtraction struct {
	JobTitle            string   `json:"job_title"`
	SeniorityLevel      string   `json:"seniority_level"`
	FunctionalArea      string   `json:"functional_area"`
	CompanyName         string   `json:"company_name,omitempty"`
	CompanyIndustry     string   `json:"company_industry,omitempty"`
	CompanyStage        string   `json:"company_stage,omitempty"`
	BusinessModel       string   `json:"business_model,omitempty"`
	InitialRequirements []string `json:"initial_requirements,omitempty"`
	GrowthContext       string   `json:"growth_context,omitempty"`
	KeyMetrics          []string `json:"key_metrics,omitempty"`
}

type companyEnrichment struct {
	MissionVision             string   `json:"mission_vision,omitempty"`
	GrowthStageDescription    string   `json:"growth_stage_description,omitempty"`
	KeyChallenges             []string `json:"key_challenges,omitempty"`
	LeadershipStyleIndicators string   `json:"leadership_style_indicators,omitempty"`
	CulturalContext           string   `json:"cultural_context,omitempty"`
}

var errEmptyMessage = errors.New("extraction: empty message")

// Extract never fails. A model failure or malformed output yields the sentinel
// pair with Degraded set and the cause attached.
func (e *Extractor) Extract(ctx context.Context, message string) intake.Outcome[Extraction] {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "intake.extraction")
	out := e.extract(ctx, strings.TrimSpace(message))

	outcome := "success"
	switch {
	case out.Degraded:
		outcome = "degraded"
	case !out.Value.Usable():
		outcome = "unusable"
	}
	span.SetAttributes(
		attribute.String("intake.outcome", outcome),
		attribute.Bool("intake.company_known", out.Value.Company.Known()),
	)
	observability.EndSpan(span, nil)
	e.metrics.ObserveStage(stageName, outcome, time.Since(start))
	return out
}

func (e *Extractor) extract(ctx context.Context, message string) intake.Outcome[Extraction] {
	fallback := Extraction{Job: intake.FallbackJobRequirements(message), Company: intake.FallbackCompanyInfo()}
	if message == "" {
		return intake.Degraded(fallback, errEmptyMessage)
	}

	p, err := prompts.Build(prompts.JobExtraction, prompts.Input{UserInput: message})
	if err != nil {
		return intake.Degraded(fallback, err)
	}
	res := completion.Structured[jobExtraction](ctx, e.model, string(prompts.JobExtraction), p.System, p.User)
	if !res.OK() {
		e.log.Warn("Requirements extraction failed, using fallback", "result", string(res.Kind), "error", res.Err())
		return intake.Degraded(fallback, res.Err())
	}

	ext := toExtraction(res.Value, message)
	if ext.Company.Known() && e.enrich {
		e.enrichCompany(ctx, ext.Company, message)
	}
	e.log.Info("Requirements extracted",
		"title", ext.Job.Title,
		"seniority", string(ext.Job.SeniorityLevel),
		"function", string(ext.Job.FunctionalArea),
		"company", ext.Company.Name,
	)
	return intake.Succeeded(ext)
}

func toExtraction(raw jobExtraction, message string) Extraction {
	job := intake.FallbackJobRequirements(message)
	if title := strings.TrimSpace(raw.JobTitle); title != "" && !isUnknown(title) {
		job.Title = title
	}
	job.SeniorityLevel = intake.ParseSeniority(raw.SeniorityLevel)
	job.FunctionalArea = intake.ParseFunctionalArea(raw.FunctionalArea)
	job.KeyMetrics = datatypes.NewJSONType(cleanList(raw.KeyMetrics))
	job.AdditionalContext = datatypes.NewJSONType(intake.ExtractionContext{
		InitialRequirements: strings.Join(cleanList(raw.InitialRequirements), "; "),
		GrowthContext:       strings.TrimSpace(raw.GrowthContext),
		RawUserInput:        message,
	})

	company := intake.FallbackCompanyInfo()
	if name := strings.TrimSpace(raw.CompanyName); name != "" && !isUnknown(name) {
		company.Name = name
		company.Industry = intake.ParseIndustry(raw.CompanyIndustry)
		company.BusinessModel = intake.ParseBusinessModel(raw.BusinessModel)
		company.Stage = intake.ParseCompanyStage(raw.CompanyStage)
		company.GrowthStageDescription = strings.TrimSpace(raw.GrowthContext)
	}
	return Extraction{Job: job, Company: company}
}

// enrichCompany fills descriptive fields in place. Failures leave the company as extracted.
func (e *Extractor) enrichCompany(ctx context.Context, company *intake.CompanyInfo, message string) {
	p, err := prompts.Build(prompts.CompanyEnrichment, prompts.Input{
		UserInput:     message,
		CompanyName:   company.Name,
		Industry:      string(company.Industry),
		Stage:         string(company.Stage),
		BusinessModel: string(company.BusinessModel),
	})
	if err != nil {
		e.log.Warn("Company enrichment prompt failed", "error", err)
		return
	}
	res := completion.Structured[companyEnrichment](ctx, e.model, string(prompts.CompanyEnrichment), p.System, p.User)
	if !res.OK() {
		e.log.Warn("Company enrichment failed, keeping extracted info", "company", company.Name, "error", res.Err())
		return
	}
	applyEnrichment(company, res.Value)
}

func applyEnrichment(company *intake.CompanyInfo, en companyEnrichment) {
	if v := strings.TrimSpace(en.MissionVision); v != "" {
		company.MissionVision = v
	}
	if v := strings.TrimSpace(en.GrowthStageDescription); v != "" && strings.TrimSpace(company.GrowthStageDescription) == "" {
		company.GrowthStageDescription = v
	}
	if challenges := cleanList(en.KeyChallenges); len(challenges) > 0 {
		company.KeyChallenges = datatypes.NewJSONType(challenges)
	}
	if v := strings.TrimSpace(en.LeadershipStyleIndicators); v != "" {
		company.LeadershipStyle = v
	}
	if v := strings.TrimSpace(en.CulturalContext); v != "" {
		company.CompanyCulture = v
	}
}

func isUnknown(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unknown", "n/a", "none", "null",
		strings.ToLower(intake.SentinelPosition), strings.ToLower(intake.SentinelCompany):
		return true
	}
	return false
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
