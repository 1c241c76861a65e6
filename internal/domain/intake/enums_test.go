package intake

import (
	"math"
	"testing"
)

func TestLenientEnumParsing(t *testing.T) {
	if got := ParseSeniority("C-Suite"); got != SeniorityCSuite {
		t.Fatalf("seniority: want=c_suite got=%s", got)
	}
	if got := ParseSeniority("Senior Director"); got != SenioritySeniorDirector {
		t.Fatalf("seniority: want=senior_director got=%s", got)
	}
	if got := ParseSeniority("chief wizard"); got != SeniorityVP {
		t.Fatalf("seniority default: want=vp got=%s", got)
	}
	if got := ParseFunctionalArea("General Management"); got != FunctionGeneralManagement {
		t.Fatalf("function: got=%s", got)
	}
	if got := ParseFunctionalArea("alchemy"); got != FunctionOther {
		t.Fatalf("function default: got=%s", got)
	}
	if got := ParseIndustry("Enterprise-Software"); got != IndustryEnterpriseSoftware {
		t.Fatalf("industry: got=%s", got)
	}
	if got := ParseBusinessModel("B2B SaaS"); got != BusinessModelB2BSaaS {
		t.Fatalf("business model: got=%s", got)
	}
	if got := ParseCompanyStage("series d plus"); got != StageSeriesDPlus {
		t.Fatalf("stage: got=%s", got)
	}
	if got := ParseCompanyStage(""); got != StageUnknown {
		t.Fatalf("stage default: got=%s", got)
	}
	if got := ParseRequirementType("nice-to-have"); got != RequirementNiceToHave {
		t.Fatalf("requirement type: got=%s", got)
	}
}

func TestSentinels(t *testing.T) {
	job := FallbackJobRequirements("raw")
	if job.Known() {
		t.Fatalf("fallback job should not be known")
	}
	if job.AdditionalContext.Data().RawUserInput != "raw" {
		t.Fatalf("raw input not kept")
	}
	if FallbackCompanyInfo().Known() {
		t.Fatalf("fallback company should not be known")
	}
	if !(&CompanyInfo{Name: "Stripe"}).Known() {
		t.Fatalf("named company should be known")
	}
}

func TestClampConfidence(t *testing.T) {
	cases := map[float64]float64{-1: 0, 0.4: 0.4, 3: 1, math.NaN(): 0}
	for in, want := range cases {
		if got := ClampConfidence(in); got != want {
			t.Fatalf("clamp(%v): want=%v got=%v", in, want, got)
		}
	}
}
