package research

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/pointers"
)

// synthesis is the model's structured intelligence summary.
type synthesis struct {
	CompanyName       string   `json:"company_name,omitempty"`
	FundingStage      string   `json:"funding_stage"`
	FundingAmount     string   `json:"funding_amount,omitempty"`
	Investors         []string `json:"investors,omitempty"`
	Industry          string   `json:"industry"`
	BusinessModel     string   `json:"business_model,omitempty"`
	EmployeeCount     string   `json:"employee_count,omitempty"`
	KeyCompetitors    []string `json:"key_competitors,omitempty"`
	RecentNews        []string `json:"recent_news,omitempty"`
	LeadershipTeam    []string `json:"leadership_team,omitempty"`
	RegulatoryContext string   `json:"regulatory_context,omitempty"`
	GrowthStage       string   `json:"growth_stage,omitempty"`
	IPOStatus         string   `json:"ipo_status,omitempty"`
	ConfidenceScore   *float64 `json:"confidence_score,omitempty"`
}

var fundingStages = map[string]intake.FundingStage{
	"seed":     intake.FundingSeed,
	"series_a": intake.FundingSeriesA,
	"series_b": intake.FundingSeriesB,
	"series_c": intake.FundingSeriesC,
	"series_d": intake.FundingSeriesD,
	"series_e": intake.FundingSeriesEPlus,
	"pre_ipo":  intake.FundingIPOReady,
	"public":   intake.FundingPublic,
}

var bigTech = []string{"Google", "Microsoft", "Amazon", "Apple", "Meta", "Salesforce"}

func normalizeStage(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func toResearch(s synthesis, companyName string) intake.CompanyResearch {
	rawStage := normalizeStage(s.FundingStage)
	stage, ok := fundingStages[rawStage]
	if !ok {
		stage = intake.FundingUnknown
	}
	confidence := defaultConfidence
	if s.ConfidenceScore != nil {
		confidence = *s.ConfidenceScore
	}
	name := strings.TrimSpace(s.CompanyName)
	if name == "" {
		name = companyName
	}
	out := intake.CompanyResearch{
		CompanyName:           name,
		Industry:              strings.TrimSpace(s.Industry),
		BusinessModel:         strings.TrimSpace(s.BusinessModel),
		FundingStage:          stage,
		RawFundingStage:       rawStage,
		CompanySize:           InferCompanySize(s.EmployeeCount),
		KeyCompetitors:        clean(s.KeyCompetitors),
		RecentDevelopments:    clean(s.RecentNews),
		LeadershipTeam:        clean(s.LeadershipTeam),
		RegulatoryEnvironment: strings.TrimSpace(s.RegulatoryContext),
		IPOTimeline:           ipoTimeline(s.IPOStatus),
		Confidence:            intake.ClampConfidence(confidence),
	}
	out.LeadershipNeeds = leadershipNeeds(rawStage, out)
	out.GrowthChallenges = growthChallenges(rawStage, out)
	return out
}

func ipoTimeline(status string) *string {
	s := strings.TrimSpace(status)
	switch strings.ToLower(s) {
	case "", "unknown", "not_planned":
		return nil
	}
	return pointers.String(s)
}

var firstNumber = regexp.MustCompile(`\d[\d,]*`)

// InferCompanySize buckets a free-text employee count. Keyword ranges win;
// otherwise the first number in the text is bucketed.
func InferCompanySize(employeeCount string) intake.CompanySize {
	s := strings.ToLower(strings.TrimSpace(employeeCount))
	if s == "" {
		return intake.SizeUnknown
	}
	switch {
	case containsAny(s, "1-50", "startup", "early"):
		return intake.SizeStartup
	case containsAny(s, "50-250", "small"):
		return intake.SizeSmall
	case containsAny(s, "250-1000", "medium"):
		return intake.SizeMedium
	case containsAny(s, "1000-5000", "large"):
		return intake.SizeLarge
	case containsAny(s, "5000+", "enterprise"):
		return intake.SizeEnterprise
	}
	m := firstNumber.FindString(s)
	if m == "" {
		return intake.SizeUnknown
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return intake.SizeUnknown
	}
	switch {
	case n < 50:
		return intake.SizeStartup
	case n < 250:
		return intake.SizeSmall
	case n < 1000:
		return intake.SizeMedium
	case n < 5000:
		return intake.SizeLarge
	default:
		return intake.SizeEnterprise
	}
}

func leadershipNeeds(rawStage string, r intake.CompanyResearch) []string {
	var needs []string
	switch rawStage {
	case "series_a":
		needs = append(needs, "Early-stage scaling experience")
	case "series_b":
		needs = append(needs, "Growth-stage leadership")
	case "series_c", "series_d", "series_e":
		needs = append(needs, "Late-stage scaling experience")
	case "pre_ipo":
		needs = append(needs, "IPO preparation experience")
	case "public":
		needs = append(needs, "Public company leadership")
	}
	industry := strings.ToLower(r.Industry)
	if containsAny(industry, "fintech", "financial") {
		needs = append(needs, "Financial services experience", "Regulatory compliance background")
	}
	if strings.Contains(strings.ToLower(r.BusinessModel), "saas") {
		needs = append(needs, "SaaS scaling experience")
	}
	if hasBigTech(r.KeyCompetitors) {
		needs = append(needs, "Experience competing against big tech")
	}
	return needs
}

func growthChallenges(rawStage string, r intake.CompanyResearch) []string {
	var challenges []string
	switch rawStage {
	case "series_a", "series_b":
		challenges = append(challenges, "Scaling operations and team")
	case "series_c", "series_d":
		challenges = append(challenges, "Market expansion and competitive positioning")
	case "pre_ipo":
		challenges = append(challenges, "IPO readiness and governance")
	}
	if strings.Contains(strings.ToLower(r.Industry), "fintech") {
		challenges = append(challenges, "Regulatory compliance and partnerships")
	}
	if len(r.KeyCompetitors) > 0 {
		challenges = append(challenges, "Competitive differentiation")
	}
	return challenges
}

// Fallback infers coarse research from the company name alone.
func Fallback(companyName, roleTitle string) intake.CompanyResearch {
	industry := InferIndustry(companyName)
	return intake.CompanyResearch{
		CompanyName:        companyName,
		Industry:           industry,
		FundingStage:       intake.FundingUnknown,
		CompanySize:        intake.SizeUnknown,
		KeyCompetitors:     []string{},
		RecentDevelopments: []string{},
		GrowthChallenges:   []string{"Scaling operations", "Market competition"},
		LeadershipNeeds:    []string{fmt.Sprintf("Experience relevant to %s in %s", roleTitle, industry)},
		Confidence:         FallbackConfidence,
	}
}

// InferIndustry maps company-name substrings to a coarse industry label.
func InferIndustry(companyName string) string {
	n := strings.ToLower(companyName)
	switch {
	case containsAny(n, "tech", "ai", "software", "data", "cloud"):
		return "Technology"
	case containsAny(n, "fin", "bank", "pay", "crypto"):
		return "Financial Services"
	case containsAny(n, "health", "bio", "medical", "pharma"):
		return "Healthcare"
	case containsAny(n, "energy", "solar", "green"):
		return "Energy"
	default:
		return "General Business"
	}
}

func hasBigTech(competitors []string) bool {
	for _, c := range competitors {
		for _, b := range bigTech {
			if c == b {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
