package research

import (
	"fmt"
	"strings"

	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
)

var stageInsights = map[intake.FundingStage][]string{
	intake.FundingSeed:        {"Early stage execution", "Product-market fit", "Initial team building"},
	intake.FundingSeriesA:     {"Scaling initial success", "Building systems", "Early GTM"},
	intake.FundingSeriesB:     {"Market expansion", "Operational scaling", "Team leadership"},
	intake.FundingSeriesC:     {"International expansion", "Market dominance", "IPO preparation"},
	intake.FundingSeriesD:     {"Late-stage scaling", "Acquisition strategy", "Public readiness"},
	intake.FundingSeriesEPlus: {"IPO preparation", "Public company processes", "Enterprise sales"},
	intake.FundingIPOReady:    {"Public company experience", "Regulatory compliance", "Investor relations"},
	intake.FundingPublic:      {"Public company operations", "Quarterly performance", "Board experience"},
}

var sizeInsights = map[intake.CompanySize][]string{
	intake.SizeStartup:    {"Startup environment", "Resource constraints", "Rapid change"},
	intake.SizeSmall:      {"Small company scaling", "Hands-on leadership", "Culture building"},
	intake.SizeMedium:     {"Mid-market leadership", "Process building", "Team scaling"},
	intake.SizeLarge:      {"Enterprise leadership", "Complex organizations", "Strategic planning"},
	intake.SizeEnterprise: {"Large enterprise", "Board interaction", "Global operations"},
}

// Insights derives the categorized prompt inputs for question generation.
func Insights(r intake.CompanyResearch) intake.ResearchInsights {
	return intake.ResearchInsights{
		Stage:       lookupOr(stageInsights, r.FundingStage, "General business leadership"),
		Industry:    industryInsights(r.Industry),
		Competitive: competitiveInsights(r.KeyCompetitors),
		Regulatory:  regulatoryInsights(r.RegulatoryEnvironment),
		Growth:      append([]string(nil), r.GrowthChallenges...),
		Leadership:  append([]string(nil), r.LeadershipNeeds...),
		IPO:         ipoInsights(r.IPOTimeline),
		Size:        lookupOr(sizeInsights, r.CompanySize, "Organization leadership"),
	}
}

func lookupOr[K comparable](m map[K][]string, k K, def string) []string {
	if v, ok := m[k]; ok {
		return append([]string(nil), v...)
	}
	return []string{def}
}

func industryInsights(industry string) []string {
	s := strings.ToLower(industry)
	switch {
	case containsAny(s, "tech", "software"):
		return []string{"Technical product understanding", "Developer ecosystem", "Platform scaling"}
	case containsAny(s, "fintech", "financial"):
		return []string{"Financial services regulation", "Compliance experience", "Banking partnerships"}
	case strings.Contains(s, "health"):
		return []string{"Healthcare regulation", "FDA experience", "Clinical trials"}
	default:
		return []string{"Industry-specific experience"}
	}
}

func competitiveInsights(competitors []string) []string {
	if len(competitors) == 0 {
		return nil
	}
	var out []string
	for i, c := range competitors {
		if i >= 3 {
			break
		}
		out = append(out, fmt.Sprintf("Experience competing against %s", c))
	}
	if hasBigTech(competitors) {
		out = append(out, "Experience selling against big tech incumbents")
	}
	return out
}

func regulatoryInsights(env string) []string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "", "none", "minimal":
		return nil
	}
	return []string{"Regulatory compliance experience", "Government relations"}
}

func ipoInsights(timeline *string) []string {
	if timeline == nil || strings.TrimSpace(*timeline) == "" {
		return nil
	}
	return []string{"IPO preparation experience", "Public company readiness", "SEC compliance"}
}
