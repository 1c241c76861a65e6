package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
)

type JobSummary struct {
	Title          string                `json:"title"`
	SeniorityLevel intake.Seniority      `json:"seniority_level"`
	FunctionalArea intake.FunctionalArea `json:"functional_area"`
	KeyMetrics     []string              `json:"key_metrics,omitempty"`
}

type CompanySummary struct {
	Name          string               `json:"name"`
	Industry      intake.Industry      `json:"industry"`
	BusinessModel intake.BusinessModel `json:"business_model"`
	Stage         intake.CompanyStage  `json:"stage"`
}

// ConversationView is a read-only picture of a conversation.
type ConversationView struct {
	ConversationID uuid.UUID                    `json:"conversation_id"`
	Phase          intake.Phase                 `json:"phase"`
	Status         intake.Status                `json:"status"`
	Progress       Progress                     `json:"progress"`
	InitialMessage string                       `json:"initial_message"`
	Questions      intake.QuestionSet           `json:"questions"`
	Answers        intake.AnswerLog             `json:"answers"`
	NextQuestion   *NextQuestion                `json:"next_question,omitempty"`
	Job            *JobSummary                  `json:"job,omitempty"`
	Company        *CompanySummary              `json:"company,omitempty"`
	Generation     *intake.GenerationProvenance `json:"generation,omitempty"`
	CreatedAt      time.Time                    `json:"created_at"`
	UpdatedAt      time.Time                    `json:"updated_at"`
}

// Describe loads a conversation with its requirements and answers. It never mutates state.
func (o *Orchestrator) Describe(ctx context.Context, conversationID uuid.UUID) (ConversationView, error) {
	snap, err := o.conversations.Snapshot(ctx, conversationID)
	if err != nil {
		return ConversationView{}, err
	}
	conv := snap.Conversation
	meta := conv.Meta()
	view := ConversationView{
		ConversationID: conv.ID,
		Phase:          conv.Phase,
		Status:         conv.Status,
		Progress:       ProgressOf(conv),
		InitialMessage: meta.InitialMessage,
		Questions:      meta.Questions,
		Answers:        meta.Answers,
		NextQuestion:   presentQuestion(conv, introNext).NextQuestion,
		Generation:     meta.Generation,
		CreatedAt:      conv.CreatedAt,
		UpdatedAt:      conv.UpdatedAt,
	}
	if view.Questions == nil {
		view.Questions = intake.QuestionSet{}
	}
	if view.Answers == nil {
		view.Answers = intake.AnswerLog{}
	}
	if snap.Job != nil {
		view.Job = &JobSummary{
			Title:          snap.Job.Title,
			SeniorityLevel: snap.Job.SeniorityLevel,
			FunctionalArea: snap.Job.FunctionalArea,
			KeyMetrics:     snap.Job.KeyMetrics.Data(),
		}
	}
	if snap.Company != nil {
		view.Company = &CompanySummary{
			Name:          snap.Company.Name,
			Industry:      snap.Company.Industry,
			BusinessModel: snap.Company.BusinessModel,
			Stage:         snap.Company.Stage,
		}
	}
	return view, nil
}
