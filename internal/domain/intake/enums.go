package intake

import "strings"

type Seniority string

const (
	SeniorityVP             Seniority = "vp"
	SenioritySVP            Seniority = "svp"
	SeniorityEVP            Seniority = "evp"
	SeniorityCSuite         Seniority = "c_suite"
	SeniorityDirector       Seniority = "director"
	SenioritySeniorDirector Seniority = "senior_director"
)

var seniorities = []Seniority{
	SeniorityVP, SenioritySVP, SeniorityEVP, SeniorityCSuite, SeniorityDirector, SenioritySeniorDirector,
}

type FunctionalArea string

const (
	FunctionSales             FunctionalArea = "sales"
	FunctionMarketing         FunctionalArea = "marketing"
	FunctionEngineering       FunctionalArea = "engineering"
	FunctionProduct           FunctionalArea = "product"
	FunctionFinance           FunctionalArea = "finance"
	FunctionOperations        FunctionalArea = "operations"
	FunctionHR                FunctionalArea = "hr"
	FunctionLegal             FunctionalArea = "legal"
	FunctionStrategy          FunctionalArea = "strategy"
	FunctionGeneralManagement FunctionalArea = "general_management"
	FunctionOther             FunctionalArea = "other"
)

var functionalAreas = []FunctionalArea{
	FunctionSales, FunctionMarketing, FunctionEngineering, FunctionProduct, FunctionFinance, FunctionOperations,
	FunctionHR, FunctionLegal, FunctionStrategy, FunctionGeneralManagement, FunctionOther,
}

type Industry string

const (
	IndustryFintech            Industry = "fintech"
	IndustryHealthtech         Industry = "healthtech"
	IndustryEdtech             Industry = "edtech"
	IndustryEnterpriseSoftware Industry = "enterprise_software"
	IndustryConsumerSoftware   Industry = "consumer_software"
	IndustryEcommerce          Industry = "ecommerce"
	IndustryBiotech            Industry = "biotech"
	IndustryHardware           Industry = "hardware"
	IndustryMarketplace        Industry = "marketplace"
	IndustryMedia              Industry = "media"
	IndustryAutomotive         Industry = "automotive"
	IndustryRealEstate         Industry = "real_estate"
	IndustryEnergy             Industry = "energy"
	IndustryManufacturing      Industry = "manufacturing"
	IndustryConsulting         Industry = "consulting"
	IndustryOther              Industry = "other"
)

var industries = []Industry{
	IndustryFintech, IndustryHealthtech, IndustryEdtech, IndustryEnterpriseSoftware, IndustryConsumerSoftware,
	IndustryEcommerce, IndustryBiotech, IndustryHardware, IndustryMarketplace, IndustryMedia, IndustryAutomotive,
	IndustryRealEstate, IndustryEnergy, IndustryManufacturing, IndustryConsulting, IndustryOther,
}

type BusinessModel string

const (
	BusinessModelB2BSaaS      BusinessModel = "b2b_saas"
	BusinessModelB2CSaaS      BusinessModel = "b2c_saas"
	BusinessModelMarketplace  BusinessModel = "marketplace"
	BusinessModelEcommerce    BusinessModel = "ecommerce"
	BusinessModelEnterprise   BusinessModel = "enterprise"
	BusinessModelConsumer     BusinessModel = "consumer"
	BusinessModelFreemium     BusinessModel = "freemium"
	BusinessModelSubscription BusinessModel = "subscription"
	BusinessModelTransaction  BusinessModel = "transaction"
	BusinessModelAdvertising  BusinessModel = "advertising"
	BusinessModelOther        BusinessModel = "other"
)

var businessModels = []BusinessModel{
	BusinessModelB2BSaaS, BusinessModelB2CSaaS, BusinessModelMarketplace, BusinessModelEcommerce,
	BusinessModelEnterprise, BusinessModelConsumer, BusinessModelFreemium, BusinessModelSubscription,
	BusinessModelTransaction, BusinessModelAdvertising, BusinessModelOther,
}

type CompanyStage string

const (
	StageSeed          CompanyStage = "seed"
	StageSeriesA       CompanyStage = "series_a"
	StageSeriesB       CompanyStage = "series_b"
	StageSeriesC       CompanyStage = "series_c"
	StageSeriesDPlus   CompanyStage = "series_d_plus"
	StagePreIPO        CompanyStage = "pre_ipo"
	StagePublic        CompanyStage = "public"
	StagePrivateEquity CompanyStage = "private_equity"
	StageBootstrapped  CompanyStage = "bootstrapped"
	StageUnknown       CompanyStage = "unknown"
)

var companyStages = []CompanyStage{
	StageSeed, StageSeriesA, StageSeriesB, StageSeriesC, StageSeriesDPlus, StagePreIPO, StagePublic,
	StagePrivateEquity, StageBootstrapped, StageUnknown,
}

type RequirementType string

const (
	RequirementMustHave    RequirementType = "must_have"
	RequirementNiceToHave  RequirementType = "nice_to_have"
	RequirementDealBreaker RequirementType = "deal_breaker"
)

var requirementTypes = []RequirementType{RequirementMustHave, RequirementNiceToHave, RequirementDealBreaker}

// normalizeEnum lowercases and folds separators so "C-Suite" and "c suite" both read as "c_suite".
func normalizeEnum(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", "_", " ", "_", "/", "_").Replace(s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

func lookup[T ~string](raw string, values []T, def T) T {
	key := normalizeEnum(raw)
	for _, v := range values {
		if string(v) == key {
			return v
		}
	}
	return def
}

// ParseSeniority never fails; unrecognized values read as vp.
func ParseSeniority(raw string) Seniority {
	return lookup(raw, seniorities, SeniorityVP)
}

func ParseFunctionalArea(raw string) FunctionalArea {
	return lookup(raw, functionalAreas, FunctionOther)
}

func ParseIndustry(raw string) Industry {
	return lookup(raw, industries, IndustryOther)
}

func ParseBusinessModel(raw string) BusinessModel {
	return lookup(raw, businessModels, BusinessModelOther)
}

func ParseCompanyStage(raw string) CompanyStage {
	return lookup(raw, companyStages, StageUnknown)
}

func ParseRequirementType(raw string) RequirementType {
	return lookup(raw, requirementTypes, RequirementMustHave)
}

// IsCSuite reports whether the seniority maps to the c_suite template bucket.
func (s Seniority) IsCSuite() bool {
	return s == SeniorityCSuite || s == SeniorityEVP
}
