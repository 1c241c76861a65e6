package orchestrator

import (
	"context"

	domainagg "github.com/noahbkim00/executive-ai-mvp/internal/domain/aggregates"
	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/questions"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/research"
	"github.com/noahbkim00/executive-ai-mvp/internal/realtime"
)

// runInitial runs extraction, research and generation, then commits the
// INITIAL -> QUESTIONING transition in one write.
func (o *Orchestrator) runInitial(ctx context.Context, conv *intake.Conversation, message string) (Response, error) {
	ext := o.extractor.Extract(ctx, message)
	if !ext.Value.Usable() {
		o.log.Info("Extraction found no role, asking for clarification",
			"conversation_id", conv.ID, "degraded", ext.Degraded)
		return clarification(conv), nil
	}
	job, company := ext.Value.Job, ext.Value.Company

	prov := intake.GenerationProvenance{ExtractionDegraded: ext.Degraded}
	var found intake.CompanyResearch
	if company.Known() && o.researchEnabled {
		res := o.researcher.Research(ctx, company.Name, job.Title)
		found = res.Value
		prov.ResearchDegraded = res.Degraded
	} else {
		found = intake.EmptyResearch(company.Name)
		prov.ResearchSkipped = true
	}
	prov.ResearchConfidence = found.Confidence

	gen, err := o.generator.Generate(ctx, questions.Input{
		Job:      job,
		Company:  company,
		Research: found,
		Insights: research.Insights(found),
	})
	if err != nil {
		return Response{}, err
	}
	set := gen.Value
	for _, q := range set {
		switch q.Source() {
		case intake.SourceGenerated:
			prov.Generated++
		case intake.SourceTemplate:
			prov.Backfilled++
		case intake.SourceFallback:
			prov.Fallback = true
		}
	}

	updated, err := o.conversations.BeginQuestioning(ctx, domainagg.BeginQuestioningInput{
		ConversationID: conv.ID,
		Job:            job,
		Company:        company,
		Transition: intake.QuestioningTransition{
			ExpectedVersion: conv.Version,
			Questions:       set,
			Provenance:      prov,
			At:              o.now(),
		},
	})
	if err != nil {
		return Response{}, err
	}
	o.metrics.IncTransition(string(intake.PhaseInitial), string(intake.PhaseQuestioning))
	o.publish(ctx, realtime.EventQuestioningStarted, updated)
	o.log.Info("Questioning started",
		"conversation_id", updated.ID,
		"questions", updated.TotalQuestions,
		"fallback", prov.Fallback,
		"research_confidence", prov.ResearchConfidence,
	)
	return presentQuestion(updated, introFirst), nil
}

// runAnswer records one answer and either presents the next question or completes.
func (o *Orchestrator) runAnswer(ctx context.Context, conv *intake.Conversation, message string) (Response, error) {
	tr, err := o.answers.Collect(conv, message)
	if err != nil {
		return Response{}, err
	}
	res, err := o.conversations.RecordAnswer(ctx, domainagg.RecordAnswerInput{ConversationID: conv.ID, Transition: tr})
	if err != nil {
		return Response{}, err
	}
	updated := res.Conversation
	if updated.Phase == intake.PhaseCompleted {
		o.metrics.IncTransition(string(intake.PhaseQuestioning), string(intake.PhaseCompleted))
		o.publish(ctx, realtime.EventConversationDone, updated)
		o.log.Info("Conversation completed", "conversation_id", updated.ID, "answers", updated.CurrentQuestionIndex)
		return completion(updated), nil
	}
	o.publish(ctx, realtime.EventAnswerRecorded, updated)
	return presentQuestion(updated, introNext), nil
}

// presentSummary re-presents the completion message without mutating anything.
func (o *Orchestrator) presentSummary(_ context.Context, conv *intake.Conversation, _ string) (Response, error) {
	return completion(conv), nil
}
