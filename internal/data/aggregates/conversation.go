package aggregates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noahbkim00/executive-ai-mvp/internal/data/repos"
	domainagg "github.com/noahbkim00/executive-ai-mvp/internal/domain/aggregates"
	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/dbctx"
)

const conversationTable = "conversation"

type ConversationAggregateDeps struct {
	Base BaseDeps

	Conversations repos.ConversationRepo
	Responses     repos.QuestionResponseRepo
	Jobs          repos.JobRequirementsRepo
	Companies     repos.CompanyInfoRepo

	Now func() time.Time
}

type conversationAggregate struct {
	deps ConversationAggregateDeps
}

func NewConversationAggregate(deps ConversationAggregateDeps) domainagg.ConversationAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &conversationAggregate{deps: deps}
}

func (a *conversationAggregate) Contract() domainagg.Contract {
	return domainagg.ConversationAggregateContract
}

func (a *conversationAggregate) reposConfigured() bool {
	return a.deps.Conversations != nil && a.deps.Responses != nil && a.deps.Jobs != nil && a.deps.Companies != nil
}

func (a *conversationAggregate) Create(ctx context.Context, in domainagg.CreateConversationInput) (*intake.Conversation, error) {
	const op = "Intake.Conversation.Create"
	if !a.reposConfigured() {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "conversation aggregate repos not configured", nil)
	}
	at := in.CreatedAt.UTC()
	if in.CreatedAt.IsZero() {
		at = a.deps.Now()
	}
	conv := intake.NewConversation(strings.TrimSpace(in.InitialMessage), at)
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		_, err := a.deps.Conversations.Create(dbc, conv)
		return err
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (a *conversationAggregate) Get(ctx context.Context, id uuid.UUID) (*intake.Conversation, error) {
	const op = "Intake.Conversation.Get"
	if id == uuid.Nil {
		return nil, domainagg.Validation(op, "missing conversation_id")
	}
	conv, err := a.load(dbctx.Context{Ctx: ctx}, op, id)
	if err != nil {
		return nil, MapError(op, err)
	}
	return conv, nil
}

func (a *conversationAggregate) Snapshot(ctx context.Context, id uuid.UUID) (domainagg.ConversationSnapshot, error) {
	const op = "Intake.Conversation.Snapshot"
	var out domainagg.ConversationSnapshot
	conv, err := a.Get(ctx, id)
	if err != nil {
		return out, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	job, err := a.deps.Jobs.GetByConversation(dbc, id)
	if err != nil {
		return out, MapError(op, err)
	}
	company, err := a.deps.Companies.GetByConversation(dbc, id)
	if err != nil {
		return out, MapError(op, err)
	}
	responses, err := a.deps.Responses.ListByConversation(dbc, id)
	if err != nil {
		return out, MapError(op, err)
	}
	out = domainagg.ConversationSnapshot{
		Conversation: conv,
		Job:          job,
		Company:      company,
		Responses:    responses,
	}
	return out, nil
}

func (a *conversationAggregate) BeginQuestioning(ctx context.Context, in domainagg.BeginQuestioningInput) (*intake.Conversation, error) {
	const op = "Intake.Conversation.BeginQuestioning"
	if in.ConversationID == uuid.Nil {
		return nil, domainagg.Validation(op, "missing conversation_id")
	}
	if in.Job == nil || in.Company == nil {
		return nil, domainagg.Validation(op, "job requirements and company info are required")
	}
	if in.Transition.At.IsZero() {
		in.Transition.At = a.deps.Now()
	}

	var out *intake.Conversation
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		conv, err := a.load(dbc, op, in.ConversationID)
		if err != nil {
			return err
		}
		if err := RequirePhase(conv.Phase, intake.PhaseInitial); err != nil {
			return err
		}
		if err := RequireVersionMatch(conv.Version, in.Transition.ExpectedVersion); err != nil {
			return err
		}
		if err := conv.ApplyQuestioning(in.Transition); err != nil {
			return err
		}

		job := *in.Job
		job.ID = uuid.Nil
		job.ConversationID = conv.ID
		job.CreatedAt, job.UpdatedAt = in.Transition.At, in.Transition.At
		if _, err := a.deps.Jobs.Create(dbc, &job); err != nil {
			return err
		}
		company := *in.Company
		company.ID = uuid.Nil
		company.ConversationID = conv.ID
		company.CreatedAt, company.UpdatedAt = in.Transition.At, in.Transition.At
		if _, err := a.deps.Companies.Create(dbc, &company); err != nil {
			return err
		}

		if err := a.commit(dbc, conv, in.Transition.ExpectedVersion); err != nil {
			return err
		}
		out = conv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *conversationAggregate) RecordAnswer(ctx context.Context, in domainagg.RecordAnswerInput) (domainagg.RecordAnswerResult, error) {
	const op = "Intake.Conversation.RecordAnswer"
	var out domainagg.RecordAnswerResult
	if in.ConversationID == uuid.Nil {
		return out, domainagg.Validation(op, "missing conversation_id")
	}
	if strings.TrimSpace(in.Transition.Response) == "" {
		return out, domainagg.Validation(op, "answer must not be empty")
	}
	if in.Transition.At.IsZero() {
		in.Transition.At = a.deps.Now()
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		conv, err := a.load(dbc, op, in.ConversationID)
		if err != nil {
			return err
		}
		if err := RequirePhase(conv.Phase, intake.PhaseQuestioning); err != nil {
			return err
		}
		if err := RequireVersionMatch(conv.Version, in.Transition.ExpectedVersion); err != nil {
			return err
		}
		stored, err := a.deps.Responses.CountByConversation(dbc, conv.ID)
		if err != nil {
			return err
		}
		if int(stored) != conv.CurrentQuestionIndex {
			return InvariantError(fmt.Sprintf("%d responses stored at question index %d", stored, conv.CurrentQuestionIndex))
		}

		rec, err := conv.ApplyAnswer(in.Transition)
		if err != nil {
			return err
		}
		row, err := a.deps.Responses.Create(dbc, intake.NewQuestionResponse(conv.ID, rec))
		if err != nil {
			return err
		}
		if err := a.commit(dbc, conv, in.Transition.ExpectedVersion); err != nil {
			return err
		}
		out = domainagg.RecordAnswerResult{Conversation: conv, Response: row}
		return nil
	})
	return out, err
}

func (a *conversationAggregate) load(dbc dbctx.Context, op string, id uuid.UUID) (*intake.Conversation, error) {
	conv, err := a.deps.Conversations.GetByID(dbc, id)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && (conv == nil || conv.ID == uuid.Nil)) {
		return nil, domainagg.NotFound(op, fmt.Sprintf("conversation not found: %s", id.String()))
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// commit writes the transitioned row iff nobody else bumped the version since it was read.
func (a *conversationAggregate) commit(dbc dbctx.Context, conv *intake.Conversation, expectedVersion int) error {
	if err := conv.CheckInvariants(); err != nil {
		return err
	}
	ok, err := a.deps.Base.CASGuard.UpdateByVersion(dbc, conversationTable, conv.ID, expectedVersion, map[string]any{
		"phase":                  string(conv.Phase),
		"status":                 string(conv.Status),
		"current_question_index": conv.CurrentQuestionIndex,
		"total_questions":        conv.TotalQuestions,
		"metadata":               conv.Metadata,
		"version":                expectedVersion + 1,
		"updated_at":             conv.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if err := RequireCASSuccess(ok, "conversation changed while writing"); err != nil {
		return err
	}
	conv.Version = expectedVersion + 1
	return nil
}
