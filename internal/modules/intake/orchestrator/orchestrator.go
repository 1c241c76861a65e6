// Package orchestrator is the conversation state machine.
//
// Every inbound message is dispatched on the stored phase, never on a phase the
// caller claims. Each committed transition is a single versioned write; stages
// that call the model or search run outside any transaction.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	domainagg "github.com/noahbkim00/executive-ai-mvp/internal/domain/aggregates"
	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/answers"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/extraction"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/questions"
	"github.com/noahbkim00/executive-ai-mvp/internal/observability"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
	"github.com/noahbkim00/executive-ai-mvp/internal/realtime"
	"github.com/noahbkim00/executive-ai-mvp/internal/realtime/bus"
)

type Extractor interface {
	Extract(ctx context.Context, message string) intake.Outcome[extraction.Extraction]
}

type Researcher interface {
	Research(ctx context.Context, companyName, roleTitle string) intake.Outcome[intake.CompanyResearch]
}

type Generator interface {
	Generate(ctx context.Context, in questions.Input) (intake.Outcome[intake.QuestionSet], error)
}

type Deps struct {
	Log           *logger.Logger
	Conversations domainagg.ConversationAggregate
	Extractor     Extractor
	Researcher    Researcher
	Generator     Generator
	Answers       *answers.Collector
	Bus           bus.Bus
	Metrics       *observability.Metrics
	// ResearchEnabled gates company research; when false research is skipped as for an unknown company.
	ResearchEnabled bool
	Now             func() time.Time
}

type phaseHandler func(ctx context.Context, conv *intake.Conversation, message string) (Response, error)

type Orchestrator struct {
	log             *logger.Logger
	conversations   domainagg.ConversationAggregate
	extractor       Extractor
	researcher      Researcher
	generator       Generator
	answers         *answers.Collector
	bus             bus.Bus
	metrics         *observability.Metrics
	researchEnabled bool
	now             func() time.Time

	handlers map[intake.Phase]phaseHandler
}

func New(deps Deps) (*Orchestrator, error) {
	if deps.Conversations == nil || deps.Extractor == nil || deps.Researcher == nil || deps.Generator == nil {
		return nil, fmt.Errorf("orchestrator: conversations, extractor, researcher and generator are required")
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	collector := deps.Answers
	if collector == nil {
		collector = answers.New(now)
	}
	b := deps.Bus
	if b == nil {
		b = bus.Noop{}
	}
	o := &Orchestrator{
		log:             log.With("service", "ConversationOrchestrator"),
		conversations:   deps.Conversations,
		extractor:       deps.Extractor,
		researcher:      deps.Researcher,
		generator:       deps.Generator,
		answers:         collector,
		bus:             b,
		metrics:         deps.Metrics,
		researchEnabled: deps.ResearchEnabled,
		now:             now,
	}
	o.handlers = map[intake.Phase]phaseHandler{
		intake.PhaseInitial:     o.runInitial,
		intake.PhaseQuestioning: o.runAnswer,
		intake.PhaseCompleted:   o.presentSummary,
	}
	return o, nil
}

// ProcessExtraction handles a message on the extraction surface. A nil id starts
// a new conversation; otherwise the message is routed by the stored phase.
func (o *Orchestrator) ProcessExtraction(ctx context.Context, conversationID *uuid.UUID, message string) (Response, error) {
	const op = "Intake.Orchestrator.ProcessExtraction"
	ctx, span := observability.StartSpan(ctx, "intake.process_extraction")
	var conv *intake.Conversation
	var err error
	if conversationID == nil || *conversationID == uuid.Nil {
		conv, err = o.conversations.Create(ctx, domainagg.CreateConversationInput{InitialMessage: message, CreatedAt: o.now()})
		if err != nil {
			observability.EndSpan(span, err)
			return Response{}, err
		}
		o.publish(ctx, realtime.EventConversationCreated, conv)
	} else {
		conv, err = o.conversations.Get(ctx, *conversationID)
		if err != nil {
			observability.EndSpan(span, err)
			return Response{}, err
		}
	}
	span.SetAttributes(
		attribute.String("intake.conversation_id", conv.ID.String()),
		attribute.String("intake.phase", string(conv.Phase)),
	)
	resp, err := o.dispatch(ctx, op, conv, message)
	observability.EndSpan(span, err)
	return resp, err
}

// ProcessAnswer records message against the pending question. The stored phase must be QUESTIONING.
func (o *Orchestrator) ProcessAnswer(ctx context.Context, conversationID uuid.UUID, message string) (Response, error) {
	const op = "Intake.Orchestrator.ProcessAnswer"
	ctx, span := observability.StartSpan(ctx, "intake.process_answer",
		attribute.String("intake.conversation_id", conversationID.String()))
	conv, err := o.conversations.Get(ctx, conversationID)
	if err != nil {
		observability.EndSpan(span, err)
		return Response{}, err
	}
	if conv.Phase != intake.PhaseQuestioning {
		err = &Error{ConversationID: conv.ID, Err: domainagg.InvalidState(op, fmt.Sprintf("conversation is %s, not questioning", conv.Phase))}
		observability.EndSpan(span, err)
		return Response{}, err
	}
	resp, err := o.dispatch(ctx, op, conv, message)
	observability.EndSpan(span, err)
	return resp, err
}

func (o *Orchestrator) dispatch(ctx context.Context, op string, conv *intake.Conversation, message string) (Response, error) {
	h, ok := o.handlers[conv.Phase]
	if !ok {
		return Response{}, &Error{ConversationID: conv.ID, Err: domainagg.InvalidState(op, fmt.Sprintf("no handler for phase %q", conv.Phase))}
	}
	resp, err := h(ctx, conv, message)
	if err != nil {
		o.log.Warn("Conversation step failed", "conversation_id", conv.ID, "phase", string(conv.Phase), "error", err)
		return Response{}, &Error{ConversationID: conv.ID, Err: err}
	}
	return resp, nil
}

func (o *Orchestrator) publish(ctx context.Context, t realtime.EventType, conv *intake.Conversation) {
	if err := o.bus.Publish(ctx, realtime.EventFor(t, conv, o.now())); err != nil {
		o.log.Warn("Conversation event publish failed", "conversation_id", conv.ID, "type", string(t), "error", err)
	}
}
