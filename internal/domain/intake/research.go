package intake

import "math"

type FundingStage string

const (
	FundingSeed        FundingStage = "seed"
	FundingSeriesA     FundingStage = "series_a"
	FundingSeriesB     FundingStage = "series_b"
	FundingSeriesC     FundingStage = "series_c"
	FundingSeriesD     FundingStage = "series_d"
	FundingSeriesEPlus FundingStage = "series_e_plus"
	FundingIPOReady    FundingStage = "ipo_ready"
	FundingPublic      FundingStage = "public"
	FundingUnknown     FundingStage = "unknown"
)

type CompanySize string

const (
	SizeStartup    CompanySize = "startup"
	SizeSmall      CompanySize = "small"
	SizeMedium     CompanySize = "medium"
	SizeLarge      CompanySize = "large"
	SizeEnterprise CompanySize = "enterprise"
	SizeUnknown    CompanySize = "unknown"
)

// CompanyResearch is produced per question-generation cycle and never persisted.
type CompanyResearch struct {
	CompanyName           string       `json:"company_name"`
	Industry              string       `json:"industry"`
	BusinessModel         string       `json:"business_model,omitempty"`
	FundingStage          FundingStage `json:"funding_stage"`
	RawFundingStage       string       `json:"raw_funding_stage,omitempty"`
	CompanySize           CompanySize  `json:"company_size"`
	KeyCompetitors        []string     `json:"key_competitors"`
	RecentDevelopments    []string     `json:"recent_developments"`
	LeadershipTeam        []string     `json:"leadership_team,omitempty"`
	RegulatoryEnvironment string       `json:"regulatory_environment"`
	GrowthChallenges      []string     `json:"growth_challenges"`
	LeadershipNeeds       []string     `json:"leadership_needs"`
	IPOTimeline           *string      `json:"ipo_timeline,omitempty"`
	// Confidence is advisory; it never gates control flow.
	Confidence float64 `json:"research_confidence"`
}

// EmptyResearch is used when research is skipped for an unknown company.
func EmptyResearch(companyName string) CompanyResearch {
	return CompanyResearch{
		CompanyName:  companyName,
		FundingStage: FundingUnknown,
		CompanySize:  SizeUnknown,
	}
}

// ResearchInsights are categorized prompt inputs derived from CompanyResearch.
type ResearchInsights struct {
	Stage       []string `json:"stage_insights"`
	Industry    []string `json:"industry_insights"`
	Competitive []string `json:"competitive_insights"`
	Regulatory  []string `json:"regulatory_insights"`
	Growth      []string `json:"growth_insights"`
	Leadership  []string `json:"leadership_insights"`
	IPO         []string `json:"ipo_insights"`
	Size        []string `json:"size_insights"`
}

func (r ResearchInsights) Empty() bool {
	return len(r.Stage)+len(r.Industry)+len(r.Competitive)+len(r.Regulatory)+
		len(r.Growth)+len(r.Leadership)+len(r.IPO)+len(r.Size) == 0
}

// ClampConfidence bounds a confidence score to [0, 1].
func ClampConfidence(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
