package questions

import (
	"strings"

	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
)

var categoryKeywords = []struct {
	category intake.Category
	words    []string
}{
	{intake.CategoryLeadership, []string{"lead", "team", "manage", "culture"}},
	{intake.CategoryExperience, []string{"experience", "background", "track record"}},
	{intake.CategoryCompensation, []string{"salary", "compensation", "equity"}},
	{intake.CategoryExpertise, []string{"technical", "stack", "architecture"}},
	{intake.CategoryMotivation, []string{"why", "motivation", "goal"}},
}

// Categorize assigns the first category whose keywords appear in text; culture otherwise.
func Categorize(text string) intake.Category {
	lower := strings.ToLower(text)
	for _, c := range categoryKeywords {
		for _, w := range c.words {
			if strings.Contains(lower, w) {
				return c.category
			}
		}
	}
	return intake.CategoryCulture
}
