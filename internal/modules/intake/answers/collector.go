// Package answers turns a user message into the answer transition for the pending question.
package answers

import (
	"fmt"
	"strings"
	"time"

	domainagg "github.com/noahbkim00/executive-ai-mvp/internal/domain/aggregates"
	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
)

type Collector struct {
	now func() time.Time
}

func New(now func() time.Time) *Collector {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Collector{now: now}
}

// Collect resolves the question at the current index and builds the transition
// that records message against it. It does not touch the store.
func (c *Collector) Collect(conv *intake.Conversation, message string) (intake.AnswerTransition, error) {
	const op = "Intake.Answers.Collect"
	if conv == nil {
		return intake.AnswerTransition{}, domainagg.Validation(op, "missing conversation")
	}
	if conv.Phase != intake.PhaseQuestioning {
		return intake.AnswerTransition{}, domainagg.InvalidState(op, fmt.Sprintf("conversation is %s, not questioning", conv.Phase))
	}
	q, ok := conv.CurrentQuestion()
	if !ok {
		return intake.AnswerTransition{}, domainagg.InvalidState(op,
			fmt.Sprintf("question index %d out of range for %d stored questions", conv.CurrentQuestionIndex, conv.Meta().Questions.Len()))
	}
	text := strings.TrimSpace(message)
	if text == "" {
		return intake.AnswerTransition{}, domainagg.Validation(op, "answer must not be empty")
	}
	return intake.AnswerTransition{
		ExpectedVersion: conv.Version,
		QuestionIndex:   conv.CurrentQuestionIndex,
		QuestionID:      q.ID,
		QuestionText:    q.Text,
		Response:        text,
		Complete:        conv.IsFinalAnswer(),
		At:              c.now(),
	}, nil
}
