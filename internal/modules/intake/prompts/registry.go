// Package prompts holds the versioned system/user templates for every intake model call.
package prompts

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

type Name string

const (
	JobExtraction      Name = "job_extraction"
	CompanyEnrichment  Name = "company_enrichment"
	ResearchSynthesis  Name = "research_synthesis"
	QuestionGeneration Name = "question_generation"
	QuestionValidation Name = "question_validation"
)

// Input is a superset of the fields any intake prompt renders.
// Missing fields render empty strings.
type Input struct {
	UserInput string

	// Company
	CompanyName   string
	Industry      string
	Stage         string
	BusinessModel string

	// Research
	SearchResults         string
	FundingStage          string
	CompanySize           string
	Competitors           string
	RecentDevelopments    string
	RegulatoryEnvironment string

	// Role
	JobTitle       string
	SeniorityLevel string
	FunctionalArea string

	// Insights
	StageInsights       string
	IndustryInsights    string
	CompetitiveInsights string
	LeadershipNeeds     string
	IPOInsights         string

	// Validation
	Question string
}

type Validator func(Input) error

type Spec struct {
	Name    Name
	Version int
	// Plain strings or text/template sources over Input.
	System     string
	User       string
	Validators []Validator
}

type Prompt struct {
	Name    string
	Version int
	System  string
	User    string
}

func (p Prompt) Fingerprint() string {
	h := sha256.Sum256([]byte(
		strings.TrimSpace(p.Name) + "|" +
			strconv.Itoa(p.Version) + "|" +
			strings.TrimSpace(p.System) + "|" +
			strings.TrimSpace(p.User),
	))
	return hex.EncodeToString(h[:])
}

type compiled struct {
	spec   Spec
	system *template.Template
	user   *template.Template
}

var registry = map[Name]compiled{}

func compile(s Spec) (compiled, error) {
	if strings.TrimSpace(string(s.Name)) == "" {
		return compiled{}, fmt.Errorf("missing prompt name")
	}
	if s.Version <= 0 {
		return compiled{}, fmt.Errorf("invalid version for %s", s.Name)
	}
	sysT, err := template.New("system").Option("missingkey=zero").Parse(s.System)
	if err != nil {
		return compiled{}, fmt.Errorf("%s system template parse: %w", s.Name, err)
	}
	userT, err := template.New("user").Option("missingkey=zero").Parse(s.User)
	if err != nil {
		return compiled{}, fmt.Errorf("%s user template parse: %w", s.Name, err)
	}
	return compiled{spec: s, system: sysT, user: userT}, nil
}

func register(s Spec) {
	c, err := compile(s)
	if err != nil {
		panic(err)
	}
	registry[s.Name] = c
}

// Build renders a registered prompt.
func Build(name Name, in Input) (Prompt, error) {
	c, ok := registry[name]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", string(name))
	}
	for _, v := range c.spec.Validators {
		if v == nil {
			continue
		}
		if err := v(in); err != nil {
			return Prompt{}, fmt.Errorf("%s: %w", string(name), err)
		}
	}
	system, err := render(c.system, in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s: %w", string(name), err)
	}
	user, err := render(c.user, in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s: %w", string(name), err)
	}
	return Prompt{Name: string(name), Version: c.spec.Version, System: system, User: user}, nil
}

func render(t *template.Template, in Input) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, in); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}

func requireField(label string, get func(Input) string) Validator {
	return func(in Input) error {
		if strings.TrimSpace(get(in)) == "" {
			return fmt.Errorf("missing %s", label)
		}
		return nil
	}
}

// List renders items as a comma list, or "None identified" when empty.
func List(items []string) string {
	var kept []string
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return "None identified"
	}
	return strings.Join(kept, ", ")
}
