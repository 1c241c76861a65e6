package questions

import (
	"strings"

	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
)

// TemplateSource returns the static questions for a role, in presentation order.
type TemplateSource func(area intake.FunctionalArea, seniority intake.Seniority, stage intake.CompanyStage) []string

type seniorityBucket string

const (
	bucketVP     seniorityBucket = "vp"
	bucketCSuite seniorityBucket = "c_suite"
)

var roleTemplates = map[intake.FunctionalArea]map[seniorityBucket][]string{
	intake.FunctionSales: {
		bucketVP: {
			"What specific experience should this VP have with your current sales motion (PLG, enterprise, hybrid)?",
			"How should they balance player-coach responsibilities - what percentage should be direct selling vs. team building?",
			"What's the most complex deal cycle they should have experience navigating in a similar market?",
		},
		bucketCSuite: {
			"What board-level metrics and reporting cadence will this person own?",
			"How should they think about international expansion - is that on your 18-month roadmap?",
			"What's their philosophy on sales team composition (hunters vs. farmers, inside vs. field)?",
		},
	},
	intake.FunctionEngineering: {
		bucketVP: {
			"How hands-on should this VP be with architecture decisions and code reviews?",
			"What's the right balance between shipping features and addressing technical debt?",
			"What experience should they have with your specific tech stack and architectural patterns?",
		},
		bucketCSuite: {
			"How will this person balance innovation with operational excellence?",
			"What's their experience building and retaining engineering teams in competitive markets?",
			"How should they approach build vs. buy decisions for your roadmap?",
		},
	},
	intake.FunctionMarketing: {
		bucketVP: {
			"What specific demand generation channels have worked for you, and where do you need expertise?",
			"How technical should this marketing leader be given your product complexity?",
			"What's the ideal background - product marketing, growth marketing, or brand marketing?",
		},
		bucketCSuite: {
			"How will this CMO work with sales leadership on pipeline and attribution?",
			"What experience should they have repositioning or rebranding a company?",
			"How important is analyst relations and PR experience for this role?",
		},
	},
	intake.FunctionProduct: {
		bucketVP: {
			"Should this VP come from a product-led growth or enterprise sales-assisted background?",
			"What specific customer research and validation methods align with your culture?",
			"How do you balance customer requests with product vision, and what experience reflects this?",
		},
		bucketCSuite: {
			"What's this CPO's role in pricing and packaging decisions?",
			"How should they approach platform vs. point solution strategy?",
			"What experience should they have with developer tools/APIs if relevant to your product?",
		},
	},
	intake.FunctionFinance: {
		bucketVP: {
			"What specific financial planning and analysis experience is crucial for your stage?",
			"How much involvement will they have with fundraising and investor relations?",
			"What systems implementation or transformation experience would be valuable?",
		},
		bucketCSuite: {
			"What IPO or exit preparation experience is relevant to your timeline?",
			"How should this CFO think about unit economics and path to profitability?",
			"What board and audit committee experience is required?",
		},
	},
	intake.FunctionOperations: {
		bucketVP: {
			"What specific operational scaling challenges are you facing (fulfillment, customer success, etc.)?",
			"How cross-functional should this role be - touching product, engineering, and go-to-market?",
			"What process improvement or transformation experience is most relevant?",
		},
		bucketCSuite: {
			"How will this COO complement the CEO's strengths and weaknesses?",
			"What P&L ownership experience should they bring?",
			"How should they approach automation and efficiency improvements?",
		},
	},
}

var cultureFitQuestions = []string{
	"Describe a leader who failed in your organization - what characteristics should we avoid?",
	"What work style and communication preferences align best with your executive team?",
	"How do you make decisions, and what decision-making style should this person have?",
}

var stageQuestions = map[string][]string{
	"series_a": {
		"What experience should they have taking a product from early adopters to mainstream market?",
		"How comfortable should they be with ambiguity and rapid pivots?",
		"What's their experience building foundational processes from scratch?",
	},
	"series_b": {
		"What scaling challenges have they successfully navigated at this stage before?",
		"How should they balance growth with unit economics and efficiency?",
		"What experience do they need building repeatable, scalable processes?",
	},
	"series_c_plus": {
		"What experience should they have preparing a company for IPO or acquisition?",
		"How have they handled the complexity of multiple product lines or markets?",
		"What's their experience with international expansion or M&A?",
	},
}

var leadershipQuestions = []string{
	"What size team will they inherit, and what reorganization experience is needed?",
	"How should they approach hiring - build internally or bring in their own team?",
	"What specific leadership challenge will test them in the first 6 months?",
}

func bucketFor(s intake.Seniority) seniorityBucket {
	if s.IsCSuite() {
		return bucketCSuite
	}
	return bucketVP
}

func stageKey(stage intake.CompanyStage) string {
	s := strings.ToLower(string(stage))
	switch {
	case strings.Contains(s, "seed"), strings.Contains(s, "series_a"):
		return "series_a"
	case strings.Contains(s, "series_b"):
		return "series_b"
	default:
		return "series_c_plus"
	}
}

// RoleTemplates returns function questions for the seniority bucket, then the
// growth-stage questions, then one culture-fit and one leadership question.
func RoleTemplates(area intake.FunctionalArea, seniority intake.Seniority, stage intake.CompanyStage) []string {
	var out []string
	out = append(out, roleTemplates[area][bucketFor(seniority)]...)
	out = append(out, stageQuestions[stageKey(stage)]...)
	out = append(out, cultureFitQuestions[0], leadershipQuestions[0])
	return out
}
