package questions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	domainagg "github.com/noahbkim00/executive-ai-mvp/internal/domain/aggregates"
	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/prompts"
	"github.com/noahbkim00/executive-ai-mvp/internal/observability"
	"github.com/noahbkim00/executive-ai-mvp/internal/platform/completion"
	"github.com/noahbkim00/executive-ai-mvp/internal/platform/openai/openaitest"
)

func engInput() Input {
	job := intake.FallbackJobRequirements("VP Eng at Stripe")
	job.Title = "VP of Engineering"
	job.SeniorityLevel = intake.SeniorityVP
	job.FunctionalArea = intake.FunctionEngineering
	company := intake.FallbackCompanyInfo()
	company.Name = "Stripe"
	company.Stage = intake.StageSeriesB
	return Input{Job: job, Company: company, Research: intake.EmptyResearch("Stripe")}
}

func candidates(texts ...string) map[string]any {
	qs := make([]any, 0, len(texts))
	for i, t := range texts {
		qs = append(qs, map[string]any{
			"question_id": fmt.Sprintf("q%d", i+1),
			"question":    t,
			"category":    "experience",
			"rationale":   "because",
		})
	}
	return map[string]any{"questions": qs}
}

func newGenerator(fake *openaitest.Fake, metrics *observability.Metrics, templates TemplateSource) *Generator {
	return New(Deps{
		Generation: completion.Model{Client: fake, Profile: completion.Profile{Name: "generation"}},
		Validation: completion.Model{Client: fake, Profile: completion.Profile{Name: "validation"}},
		Metrics:    metrics,
		Templates:  templates,
	})
}

// verdicts rejects questions containing any of the given markers and approves the rest.
func verdicts(reject ...string) func(string, string) (string, error) {
	return func(_, user string) (string, error) {
		for _, r := range reject {
			if strings.Contains(user, r) {
				return "INAPPROPRIATE", nil
			}
		}
		return "APPROPRIATE", nil
	}
}

func TestGenerateAcceptsValidatedCandidates(t *testing.T) {
	fake := &openaitest.Fake{
		JSON: map[string]func(string, string) (map[string]any, error){
			string(prompts.QuestionGeneration): openaitest.Returns(candidates(
				"How important is experience scaling teams through Series B?",
				"What is Stripe's current headcount?",
				"Which background matters most: infrastructure or product engineering?",
				"Why is this role open now?",
			)),
		},
		TextFn: verdicts("headcount"),
	}
	metrics := observability.New()
	out, err := newGenerator(fake, metrics, nil).Generate(context.Background(), engInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Degraded {
		t.Fatalf("unexpected degraded outcome: %v", out.Cause)
	}
	set := out.Value
	if set.Len() != 3 {
		t.Fatalf("accepted: want=3 got=%d (%+v)", set.Len(), set)
	}
	for i, q := range set {
		if q.ID != fmt.Sprintf("q%d", i+1) || q.Source() != intake.SourceGenerated {
			t.Fatalf("question %d id: got=%s", i, q.ID)
		}
		if !q.Category.Valid() {
			t.Fatalf("question %d category invalid: %s", i, q.Category)
		}
	}
	if set[0].Category != intake.CategoryLeadership || set[2].Category != intake.CategoryMotivation {
		t.Fatalf("categories: got %s / %s", set[0].Category, set[2].Category)
	}
	if fake.CountText() != 4 {
		t.Fatalf("validation calls: want=4 got=%d", fake.CountText())
	}
	if got := metrics.StageCount("generation", "success"); got != 1 {
		t.Fatalf("stage metric: got=%v", got)
	}
}

func TestGenerateBackfillsFromTemplates(t *testing.T) {
	firstTemplate := RoleTemplates(intake.FunctionEngineering, intake.SeniorityVP, intake.StageSeriesB)[0]
	fake := &openaitest.Fake{
		JSON: map[string]func(string, string) (map[string]any, error){
			string(prompts.QuestionGeneration): openaitest.Returns(candidates(
				firstTemplate,
				"What is the company's revenue?",
			)),
		},
		TextFn: verdicts("revenue"),
	}
	out, err := newGenerator(fake, nil, nil).Generate(context.Background(), engInput())
	if err != nil || out.Degraded {
		t.Fatalf("Generate: err=%v degraded=%v", err, out.Degraded)
	}
	set := out.Value
	if set.Len() != 3 {
		t.Fatalf("want 1 accepted + 2 backfilled, got %d", set.Len())
	}
	if set[0].Source() != intake.SourceGenerated {
		t.Fatalf("generated questions come first")
	}
	for _, q := range set[1:] {
		if q.Source() != intake.SourceTemplate || q.Rationale != BackfillRationale {
			t.Fatalf("backfill: got=%+v", q)
		}
		if q.Text == firstTemplate {
			t.Fatalf("backfill duplicated an accepted question")
		}
	}
	if set[1].ID != "role_1" || set[2].ID != "role_2" {
		t.Fatalf("backfill ids: got %s, %s", set[1].ID, set[2].ID)
	}
}

func TestGenerateDropsIncompleteAndFailedValidations(t *testing.T) {
	raw := candidates("How should they lead?", "What background do you want?", "Why now?")
	qs := raw["questions"].([]any)
	qs[0].(map[string]any)["rationale"] = ""
	fake := &openaitest.Fake{
		JSON: map[string]func(string, string) (map[string]any, error){
			string(prompts.QuestionGeneration): openaitest.Returns(raw),
		},
		TextFn: func(_, user string) (string, error) {
			if strings.Contains(user, "do you want") {
				return "", errors.New("validation timeout")
			}
			return "APPROPRIATE", nil
		},
	}
	out, err := newGenerator(fake, nil, nil).Generate(context.Background(), engInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if fake.CountText() != 2 {
		t.Fatalf("incomplete candidate must skip validation: calls=%d", fake.CountText())
	}
	if out.Value.Len() != 3 || out.Value[0].Text != "Why now?" {
		t.Fatalf("want 1 accepted + 2 backfilled, got %+v", out.Value)
	}
}

func TestGenerateTruncatesToMax(t *testing.T) {
	fake := &openaitest.Fake{
		JSON: map[string]func(string, string) (map[string]any, error){
			string(prompts.QuestionGeneration): openaitest.Returns(candidates("a1?", "a2?", "a3?", "a4?", "a5?", "a6?", "a7?")),
		},
		TextFn: verdicts(),
	}
	out, err := newGenerator(fake, nil, nil).Generate(context.Background(), engInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Value.Len() != 5 || out.Value[4].Text != "a5?" {
		t.Fatalf("truncation: got %+v", out.Value)
	}
}

func TestGenerateFallsBackWhenGenerationFails(t *testing.T) {
	cases := map[string]func(string, string) (map[string]any, error){
		"dependency": openaitest.Fails(errors.New("model down")),
		"empty":      openaitest.Returns(map[string]any{"questions": []any{}}),
	}
	for name, fn := range cases {
		fake := &openaitest.Fake{JSON: map[string]func(string, string) (map[string]any, error){
			string(prompts.QuestionGeneration): fn,
		}}
		metrics := observability.New()
		out, err := newGenerator(fake, metrics, nil).Generate(context.Background(), engInput())
		if err != nil {
			t.Fatalf("%s: Generate: %v", name, err)
		}
		if !out.Degraded || out.Value.Len() != 4 {
			t.Fatalf("%s: want 4 fallback questions, got degraded=%v n=%d", name, out.Degraded, out.Value.Len())
		}
		want := RoleTemplates(intake.FunctionEngineering, intake.SeniorityVP, intake.StageSeriesB)[:4]
		for i, q := range out.Value {
			if q.ID != fmt.Sprintf("fallback_%d", i+1) || q.Rationale != FallbackRationale || q.Text != want[i] {
				t.Fatalf("%s: fallback %d: got=%+v", name, i, q)
			}
		}
		if got := metrics.StageCount("generation", "degraded"); got != 1 {
			t.Fatalf("%s: degraded metric: got=%v", name, got)
		}
	}
}

func TestGenerateFailsWhenEveryTierIsEmpty(t *testing.T) {
	fake := &openaitest.Fake{JSON: map[string]func(string, string) (map[string]any, error){
		string(prompts.QuestionGeneration): openaitest.Fails(errors.New("model down")),
	}}
	none := func(intake.FunctionalArea, intake.Seniority, intake.CompanyStage) []string { return nil }
	out, err := newGenerator(fake, nil, none).Generate(context.Background(), engInput())
	if !domainagg.IsCode(err, domainagg.CodeGenerationFailure) {
		t.Fatalf("want generation_failure, got %v", err)
	}
	if out.Value.Len() != 0 {
		t.Fatalf("no questions expected on failure")
	}
}

func TestGenerateWithEmptyResearchUsesNeutralContext(t *testing.T) {
	fake := &openaitest.Fake{
		JSON: map[string]func(string, string) (map[string]any, error){
			string(prompts.QuestionGeneration): openaitest.Returns(candidates("What leadership style fits your team?")),
		},
		TextFn: verdicts(),
	}
	in := engInput()
	in.Company = intake.FallbackCompanyInfo()
	in.Research = intake.EmptyResearch(intake.SentinelCompany)
	out, err := newGenerator(fake, nil, nil).Generate(context.Background(), in)
	if err != nil || out.Value.Len() != 3 {
		t.Fatalf("want 1 generated + 2 backfilled, got n=%d err=%v", out.Value.Len(), err)
	}
	user := fake.JSONCalls[0].User
	for _, want := range []string{"Key Competitors: Not identified", "Recent Developments: Not available", "IPO Considerations: Not applicable"} {
		if !strings.Contains(user, want) {
			t.Fatalf("prompt missing %q:\n%s", want, user)
		}
	}
}

func TestParseVerdict(t *testing.T) {
	cases := map[string]bool{
		"APPROPRIATE":                 true,
		"appropriate.":                true,
		"INAPPROPRIATE":               false,
		"This is inappropriate":       false,
		"":                            false,
		"I cannot decide":             false,
	}
	for in, want := range cases {
		if got := ParseVerdict(in); got != want {
			t.Fatalf("%q: want=%v got=%v", in, want, got)
		}
	}
}
