package intake

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SentinelPosition = "Unknown Position"
	SentinelCompany  = "Unknown Company"
)

type ExperienceRequirement struct {
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Type        RequirementType `json:"requirement_type"`
	YearsNeeded *int            `json:"years_needed,omitempty"`
}

type CulturalRequirement struct {
	Aspect      string          `json:"aspect"`
	Description string          `json:"description"`
	Type        RequirementType `json:"requirement_type"`
}

type CompensationRange struct {
	BaseMin        *int   `json:"base_min,omitempty"`
	BaseMax        *int   `json:"base_max,omitempty"`
	EquityIncluded bool   `json:"equity_included"`
	BonusStructure string `json:"bonus_structure,omitempty"`
	Currency       string `json:"currency"`
}

// ExtractionContext keeps the raw provenance of an extraction.
type ExtractionContext struct {
	InitialRequirements string `json:"initial_requirements,omitempty"`
	GrowthContext       string `json:"growth_context,omitempty"`
	RawUserInput        string `json:"raw_user_input,omitempty"`
}

type JobRequirements struct {
	ID                     uuid.UUID                                  `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID         uuid.UUID                                  `gorm:"type:uuid;not null;uniqueIndex" json:"conversation_id"`
	Title                  string                                     `gorm:"column:title;not null" json:"title"`
	SeniorityLevel         Seniority                                  `gorm:"column:seniority_level;type:varchar(32);not null" json:"seniority_level"`
	FunctionalArea         FunctionalArea                             `gorm:"column:functional_area;type:varchar(32);not null" json:"functional_area"`
	ReportingStructure     *string                                    `gorm:"column:reporting_structure" json:"reporting_structure,omitempty"`
	TeamSize               *string                                    `gorm:"column:team_size" json:"team_size,omitempty"`
	ExperienceRequirements datatypes.JSONType[[]ExperienceRequirement] `gorm:"column:experience_requirements" json:"experience_requirements"`
	CulturalRequirements   datatypes.JSONType[[]CulturalRequirement]   `gorm:"column:cultural_requirements" json:"cultural_requirements"`
	Compensation           datatypes.JSONType[*CompensationRange]      `gorm:"column:compensation" json:"compensation"`
	KeyMetrics             datatypes.JSONType[[]string]               `gorm:"column:key_metrics" json:"key_metrics"`
	DealBreakers           datatypes.JSONType[[]string]               `gorm:"column:deal_breakers" json:"deal_breakers"`
	AdditionalContext      datatypes.JSONType[ExtractionContext]      `gorm:"column:additional_context" json:"additional_context"`
	CreatedAt              time.Time                                  `gorm:"not null;index" json:"created_at"`
	UpdatedAt              time.Time                                  `gorm:"not null;index" json:"updated_at"`
}

func (JobRequirements) TableName() string { return "job_requirements" }

func (j *JobRequirements) BeforeCreate(*gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// Known reports whether extraction found an actual role title.
func (j *JobRequirements) Known() bool {
	if j == nil {
		return false
	}
	t := strings.TrimSpace(j.Title)
	return t != "" && t != SentinelPosition
}

type CompanyInfo struct {
	ID                     uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID         uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex" json:"conversation_id"`
	Name                   string                      `gorm:"column:name;not null" json:"name"`
	Industry               Industry                    `gorm:"column:industry;type:varchar(32);not null" json:"industry"`
	BusinessModel          BusinessModel               `gorm:"column:business_model;type:varchar(32);not null" json:"business_model"`
	Stage                  CompanyStage                `gorm:"column:stage;type:varchar(32);not null" json:"stage"`
	MissionVision          string                      `gorm:"column:mission_vision;type:text" json:"mission_vision,omitempty"`
	CoreValues             datatypes.JSONType[[]string] `gorm:"column:core_values" json:"core_values"`
	CompanyCulture         string                      `gorm:"column:company_culture;type:text" json:"company_culture,omitempty"`
	GrowthStageDescription string                      `gorm:"column:growth_stage_description;type:text" json:"growth_stage_description,omitempty"`
	KeyChallenges          datatypes.JSONType[[]string] `gorm:"column:key_challenges" json:"key_challenges"`
	RecentMilestones       datatypes.JSONType[[]string] `gorm:"column:recent_milestones" json:"recent_milestones"`
	WorkModel              string                      `gorm:"column:work_model" json:"work_model,omitempty"`
	HeadquartersLocation   string                      `gorm:"column:headquarters_location" json:"headquarters_location,omitempty"`
	TeamLocations          datatypes.JSONType[[]string] `gorm:"column:team_locations" json:"team_locations"`
	LeadershipStyle        string                      `gorm:"column:leadership_style;type:text" json:"leadership_style,omitempty"`
	ReportingCulture       string                      `gorm:"column:reporting_culture;type:text" json:"reporting_culture,omitempty"`
	AdditionalContext      string                      `gorm:"column:additional_context;type:text" json:"additional_context,omitempty"`
	CreatedAt              time.Time                   `gorm:"not null;index" json:"created_at"`
	UpdatedAt              time.Time                   `gorm:"not null;index" json:"updated_at"`
}

func (CompanyInfo) TableName() string { return "company_info" }

func (c *CompanyInfo) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Known reports whether extraction found an actual company name.
func (c *CompanyInfo) Known() bool {
	if c == nil {
		return false
	}
	n := strings.TrimSpace(c.Name)
	return n != "" && n != SentinelCompany
}

// FallbackJobRequirements is the sentinel job used when extraction fails.
func FallbackJobRequirements(rawInput string) *JobRequirements {
	return &JobRequirements{
		Title:                  SentinelPosition,
		SeniorityLevel:         SeniorityVP,
		FunctionalArea:         FunctionOther,
		ExperienceRequirements: datatypes.NewJSONType([]ExperienceRequirement{}),
		CulturalRequirements:   datatypes.NewJSONType([]CulturalRequirement{}),
		Compensation:           datatypes.NewJSONType[*CompensationRange](nil),
		KeyMetrics:             datatypes.NewJSONType([]string{}),
		DealBreakers:           datatypes.NewJSONType([]string{}),
		AdditionalContext:      datatypes.NewJSONType(ExtractionContext{RawUserInput: rawInput}),
	}
}

// FallbackCompanyInfo is the sentinel company used when extraction fails.
func FallbackCompanyInfo() *CompanyInfo {
	return &CompanyInfo{
		Name:             SentinelCompany,
		Industry:         IndustryOther,
		BusinessModel:    BusinessModelOther,
		Stage:            StageUnknown,
		CoreValues:       datatypes.NewJSONType([]string{}),
		KeyChallenges:    datatypes.NewJSONType([]string{}),
		RecentMilestones: datatypes.NewJSONType([]string{}),
		TeamLocations:    datatypes.NewJSONType([]string{}),
	}
}
