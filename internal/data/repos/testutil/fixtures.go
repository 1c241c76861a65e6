package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
)

func SeedConversation(tb testing.TB, ctx context.Context, tx *gorm.DB, message string) *intake.Conversation {
	tb.Helper()
	c := intake.NewConversation(message, time.Now().UTC())
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed conversation: %v", err)
	}
	return c
}

// SampleQuestions returns n generated questions with ids q1..qn.
func SampleQuestions(n int) intake.QuestionSet {
	texts := []string{
		"How should this leader build and manage the team?",
		"What past experience is essential for this role?",
		"What technical architecture decisions will they own?",
		"Why is this role opening now?",
		"What compensation and equity range is approved?",
	}
	out := make(intake.QuestionSet, 0, n)
	for i := 0; i < n; i++ {
		text := texts[i%len(texts)]
		out = append(out, intake.Question{
			ID:        fmt.Sprintf("q%d", i+1),
			Text:      text,
			Category:  intake.CategoryCulture,
			Rationale: "fixture",
		})
	}
	return out
}

func SampleJob(message string) *intake.JobRequirements {
	job := intake.FallbackJobRequirements(message)
	job.Title = "VP of Engineering"
	job.FunctionalArea = intake.FunctionEngineering
	return job
}

func SampleCompany() *intake.CompanyInfo {
	c := intake.FallbackCompanyInfo()
	c.Name = "Stripe"
	c.Industry = intake.IndustryFintech
	c.Stage = intake.StageSeriesDPlus
	return c
}
