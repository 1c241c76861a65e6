package research

import (
	"testing"

	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
)

func TestInsightsFromResearch(t *testing.T) {
	ipo := "preparing"
	r := intake.CompanyResearch{
		Industry:              "Financial Services",
		FundingStage:          intake.FundingSeriesB,
		CompanySize:           intake.SizeMedium,
		KeyCompetitors:        []string{"Adyen", "Square", "Google", "Checkout"},
		RegulatoryEnvironment: "Heavily regulated",
		GrowthChallenges:      []string{"Competitive differentiation"},
		LeadershipNeeds:       []string{"Growth-stage leadership"},
		IPOTimeline:           &ipo,
	}
	in := Insights(r)
	if len(in.Stage) != 3 || in.Stage[0] != "Market expansion" {
		t.Fatalf("stage: got=%v", in.Stage)
	}
	if in.Industry[0] != "Financial services regulation" {
		t.Fatalf("industry: got=%v", in.Industry)
	}
	if len(in.Competitive) != 4 || in.Competitive[3] != "Experience selling against big tech incumbents" {
		t.Fatalf("competitive: got=%v", in.Competitive)
	}
	if len(in.Regulatory) != 2 || len(in.IPO) != 3 {
		t.Fatalf("regulatory/ipo: got=%v / %v", in.Regulatory, in.IPO)
	}
	if in.Size[0] != "Mid-market leadership" {
		t.Fatalf("size: got=%v", in.Size)
	}
	if in.Growth[0] != "Competitive differentiation" || in.Leadership[0] != "Growth-stage leadership" {
		t.Fatalf("passthrough: got=%v / %v", in.Growth, in.Leadership)
	}
}

func TestInsightsFromEmptyResearch(t *testing.T) {
	in := Insights(intake.EmptyResearch("Unknown Company"))
	if in.Stage[0] != "General business leadership" || in.Size[0] != "Organization leadership" {
		t.Fatalf("defaults: got stage=%v size=%v", in.Stage, in.Size)
	}
	if in.Industry[0] != "Industry-specific experience" {
		t.Fatalf("industry default: got=%v", in.Industry)
	}
	if len(in.Competitive)+len(in.Regulatory)+len(in.IPO) != 0 {
		t.Fatalf("optional insights should be empty: %+v", in)
	}
}
