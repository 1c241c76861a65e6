package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
)

var ConversationAggregateContract = Contract{
	Name:             "Intake.ConversationAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns atomic phase/question-progress/metadata consistency for intake conversations; writes are version-checked.",
}

// ConversationAggregate owns intake conversation progression invariants.
//
// Every write carries the version the caller read. A write against a newer stored
// version fails with CodeConflict and persists nothing.
//
// Write method failures should return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeInvalidState, CodeInvariantViolation, CodeRetryable, CodeInternal.
type ConversationAggregate interface {
	Aggregate

	// Create persists a new INITIAL conversation.
	Create(ctx context.Context, in CreateConversationInput) (*intake.Conversation, error)

	// Get loads the live conversation row.
	Get(ctx context.Context, id uuid.UUID) (*intake.Conversation, error)

	// Snapshot loads the conversation with its requirements, company and answer rows.
	Snapshot(ctx context.Context, id uuid.UUID) (ConversationSnapshot, error)

	// BeginQuestioning atomically stores extracted requirements, company info and the question set,
	// and moves the conversation INITIAL -> QUESTIONING.
	BeginQuestioning(ctx context.Context, in BeginQuestioningInput) (*intake.Conversation, error)

	// RecordAnswer atomically appends one response row, advances the question index and,
	// on the final answer, moves the conversation to COMPLETED.
	RecordAnswer(ctx context.Context, in RecordAnswerInput) (RecordAnswerResult, error)
}

type CreateConversationInput struct {
	InitialMessage string
	CreatedAt      time.Time
}

type BeginQuestioningInput struct {
	ConversationID uuid.UUID
	Job            *intake.JobRequirements
	Company        *intake.CompanyInfo
	Transition     intake.QuestioningTransition
}

type RecordAnswerInput struct {
	ConversationID uuid.UUID
	Transition     intake.AnswerTransition
}

type RecordAnswerResult struct {
	Conversation *intake.Conversation
	Response     *intake.QuestionResponse
}

type ConversationSnapshot struct {
	Conversation *intake.Conversation
	Job          *intake.JobRequirements
	Company      *intake.CompanyInfo
	Responses    []*intake.QuestionResponse
}
