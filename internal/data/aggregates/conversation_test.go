package aggregates_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noahbkim00/executive-ai-mvp/internal/data/aggregates"
	aggtest "github.com/noahbkim00/executive-ai-mvp/internal/data/aggregates/testutil"
	"github.com/noahbkim00/executive-ai-mvp/internal/data/repos"
	repotest "github.com/noahbkim00/executive-ai-mvp/internal/data/repos/testutil"
	domainagg "github.com/noahbkim00/executive-ai-mvp/internal/domain/aggregates"
	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
)

type harness struct {
	db    *gorm.DB
	agg   domainagg.ConversationAggregate
	hooks *aggtest.HooksRecorder
}

func newHarness(t *testing.T, runner aggregates.TxRunner) harness {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	hooks := &aggtest.HooksRecorder{}
	agg := aggregates.NewConversationAggregate(aggregates.ConversationAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:     db,
			Log:    log,
			Runner: runner,
			Hooks:  hooks,
		},
		Conversations: repos.NewConversationRepo(db, log),
		Responses:     repos.NewQuestionResponseRepo(db, log),
		Jobs:          repos.NewJobRequirementsRepo(db, log),
		Companies:     repos.NewCompanyInfoRepo(db, log),
	})
	return harness{db: db, agg: agg, hooks: hooks}
}

func (h harness) questioning(t *testing.T, n int) *intake.Conversation {
	t.Helper()
	ctx := context.Background()
	conv, err := h.agg.Create(ctx, domainagg.CreateConversationInput{InitialMessage: "VP Eng for Stripe"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	conv, err = h.agg.BeginQuestioning(ctx, domainagg.BeginQuestioningInput{
		ConversationID: conv.ID,
		Job:            repotest.SampleJob("VP Eng for Stripe"),
		Company:        repotest.SampleCompany(),
		Transition: intake.QuestioningTransition{
			ExpectedVersion: conv.Version,
			Questions:       repotest.SampleQuestions(n),
			Provenance:      intake.GenerationProvenance{Generated: n},
		},
	})
	if err != nil {
		t.Fatalf("BeginQuestioning: %v", err)
	}
	return conv
}

func answerInput(conv *intake.Conversation, text string) domainagg.RecordAnswerInput {
	q, _ := conv.CurrentQuestion()
	return domainagg.RecordAnswerInput{
		ConversationID: conv.ID,
		Transition: intake.AnswerTransition{
			ExpectedVersion: conv.Version,
			QuestionIndex:   conv.CurrentQuestionIndex,
			QuestionID:      q.ID,
			Response:        text,
			Complete:        conv.CurrentQuestionIndex+1 == conv.TotalQuestions,
		},
	}
}

func countRows(t *testing.T, db *gorm.DB, model any, convID uuid.UUID) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Where("conversation_id = ?", convID).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestConversationAggregateCreateAndGet(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	conv, err := h.agg.Create(ctx, domainagg.CreateConversationInput{InitialMessage: "  hello  "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := h.agg.Get(ctx, conv.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Phase != intake.PhaseInitial || got.Version != conv.Version {
		t.Fatalf("unexpected row: phase=%s version=%d", got.Phase, got.Version)
	}
	if got.Meta().InitialMessage != "hello" {
		t.Fatalf("initial message: got=%q", got.Meta().InitialMessage)
	}

	_, err = h.agg.Get(ctx, uuid.New())
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("missing conversation: want not_found got=%v", err)
	}
	_, err = h.agg.Get(ctx, uuid.Nil)
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("nil id: want validation got=%v", err)
	}
}

func TestConversationAggregateBeginQuestioning(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	conv := h.questioning(t, 3)

	if conv.Phase != intake.PhaseQuestioning || conv.TotalQuestions != 3 || conv.CurrentQuestionIndex != 0 {
		t.Fatalf("unexpected state: %+v", conv)
	}
	snap, err := h.agg.Snapshot(ctx, conv.ID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Job == nil || snap.Job.Title != "VP of Engineering" {
		t.Fatalf("job not stored: %+v", snap.Job)
	}
	if snap.Company == nil || snap.Company.Name != "Stripe" {
		t.Fatalf("company not stored: %+v", snap.Company)
	}
	if snap.Conversation.Meta().Questions.Len() != 3 {
		t.Fatalf("questions not stored: %d", snap.Conversation.Meta().Questions.Len())
	}
	if len(snap.Responses) != 0 {
		t.Fatalf("no responses expected, got=%d", len(snap.Responses))
	}

	_, err = h.agg.BeginQuestioning(ctx, domainagg.BeginQuestioningInput{
		ConversationID: conv.ID,
		Job:            repotest.SampleJob("again"),
		Company:        repotest.SampleCompany(),
		Transition: intake.QuestioningTransition{
			ExpectedVersion: conv.Version,
			Questions:       repotest.SampleQuestions(2),
		},
	})
	if !domainagg.IsCode(err, domainagg.CodeInvalidState) {
		t.Fatalf("second begin: want invalid_state got=%v", err)
	}
	if n := countRows(t, h.db, &intake.JobRequirements{}, conv.ID); n != 1 {
		t.Fatalf("job rows: want=1 got=%d", n)
	}
}

func TestConversationAggregateAnswersToCompletion(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	conv := h.questioning(t, 2)

	res, err := h.agg.RecordAnswer(ctx, answerInput(conv, "Scale the platform team"))
	if err != nil {
		t.Fatalf("first answer: %v", err)
	}
	conv = res.Conversation
	if conv.Phase != intake.PhaseQuestioning || conv.CurrentQuestionIndex != 1 {
		t.Fatalf("after first answer: phase=%s idx=%d", conv.Phase, conv.CurrentQuestionIndex)
	}
	if res.Response == nil || res.Response.QuestionIndex != 0 || res.Response.QuestionID != "q1" {
		t.Fatalf("response row: %+v", res.Response)
	}

	res, err = h.agg.RecordAnswer(ctx, answerInput(conv, "Payments infrastructure"))
	if err != nil {
		t.Fatalf("final answer: %v", err)
	}
	conv = res.Conversation
	if conv.Phase != intake.PhaseCompleted || conv.Status != intake.StatusCompleted {
		t.Fatalf("not completed: phase=%s status=%s", conv.Phase, conv.Status)
	}

	stored, err := h.agg.Get(ctx, conv.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.CurrentQuestionIndex != 2 || stored.Meta().Answers.Len() != 2 || stored.Meta().CompletedAt == nil {
		t.Fatalf("stored state: idx=%d answers=%d", stored.CurrentQuestionIndex, stored.Meta().Answers.Len())
	}
	if err := stored.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}

	_, err = h.agg.RecordAnswer(ctx, answerInput(stored, "late"))
	if !domainagg.IsCode(err, domainagg.CodeInvalidState) {
		t.Fatalf("answer after completion: want invalid_state got=%v", err)
	}
}

func TestConversationAggregateRejectsAnswerBeforeQuestioning(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	conv, err := h.agg.Create(ctx, domainagg.CreateConversationInput{InitialMessage: "hi"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = h.agg.RecordAnswer(ctx, domainagg.RecordAnswerInput{
		ConversationID: conv.ID,
		Transition:     intake.AnswerTransition{ExpectedVersion: conv.Version, Response: "x"},
	})
	if !domainagg.IsCode(err, domainagg.CodeInvalidState) {
		t.Fatalf("want invalid_state got=%v", err)
	}

	_, err = h.agg.RecordAnswer(ctx, domainagg.RecordAnswerInput{
		ConversationID: conv.ID,
		Transition:     intake.AnswerTransition{ExpectedVersion: conv.Version, Response: "   "},
	})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("blank answer: want validation got=%v", err)
	}
}

// Two submissions prepared from the same read: exactly one lands.
func TestConversationAggregateLostUpdateFromSameSnapshot(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	conv := h.questioning(t, 3)

	first := answerInput(conv, "answer A")
	second := answerInput(conv, "answer B")

	if _, err := h.agg.RecordAnswer(ctx, first); err != nil {
		t.Fatalf("first answer: %v", err)
	}
	_, err := h.agg.RecordAnswer(ctx, second)
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("second answer: want conflict got=%v", err)
	}

	stored, err := h.agg.Get(ctx, conv.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.CurrentQuestionIndex != 1 || stored.Version != conv.Version+1 {
		t.Fatalf("state: idx=%d version=%d", stored.CurrentQuestionIndex, stored.Version)
	}
	if n := countRows(t, h.db, &intake.QuestionResponse{}, conv.ID); n != 1 {
		t.Fatalf("response rows: want=1 got=%d", n)
	}
	if got := h.hooks.Statuses("Intake.Conversation.RecordAnswer"); len(got) < 2 || got[len(got)-1] != string(domainagg.CodeConflict) {
		t.Fatalf("hook statuses: %v", got)
	}
	if len(h.hooks.Conflicts) != 1 {
		t.Fatalf("conflict hooks: %v", h.hooks.Conflicts)
	}
}

func TestConversationAggregateConcurrentAnswers(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	conv := h.questioning(t, 3)

	const writers = 4
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.agg.RecordAnswer(ctx, answerInput(conv, "concurrent answer"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case domainagg.IsCode(err, domainagg.CodeConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}(i)
	}
	wg.Wait()

	if len(others) > 0 {
		t.Fatalf("unexpected errors: %v", others)
	}
	if successes != 1 || conflicts != writers-1 {
		t.Fatalf("successes=%d conflicts=%d", successes, conflicts)
	}
	if n := countRows(t, h.db, &intake.QuestionResponse{}, conv.ID); n != 1 {
		t.Fatalf("response rows: want=1 got=%d", n)
	}
}

func TestConversationAggregateStaleIndexIsInvalidState(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	conv := h.questioning(t, 3)

	in := answerInput(conv, "skipping ahead")
	in.Transition.QuestionIndex = 2
	in.Transition.QuestionID = ""
	_, err := h.agg.RecordAnswer(ctx, in)
	if !domainagg.IsCode(err, domainagg.CodeInvalidState) {
		t.Fatalf("want invalid_state got=%v", err)
	}
	if n := countRows(t, h.db, &intake.QuestionResponse{}, conv.ID); n != 0 {
		t.Fatalf("response rows: want=0 got=%d", n)
	}
}

func TestConversationAggregateRollsBackOnCommitFailure(t *testing.T) {
	db := repotest.DB(t)
	log := repotest.Logger(t)
	runner := &aggtest.FaultyTxRunner{DB: db}
	agg := aggregates.NewConversationAggregate(aggregates.ConversationAggregateDeps{
		Base:          aggregates.BaseDeps{DB: db, Log: log, Runner: runner},
		Conversations: repos.NewConversationRepo(db, log),
		Responses:     repos.NewQuestionResponseRepo(db, log),
		Jobs:          repos.NewJobRequirementsRepo(db, log),
		Companies:     repos.NewCompanyInfoRepo(db, log),
		Now:           func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	ctx := context.Background()

	conv, err := agg.Create(ctx, domainagg.CreateConversationInput{InitialMessage: "CFO for Acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	runner.FailAfterBody = errors.New("connection reset")
	_, err = agg.BeginQuestioning(ctx, domainagg.BeginQuestioningInput{
		ConversationID: conv.ID,
		Job:            repotest.SampleJob("CFO for Acme"),
		Company:        repotest.SampleCompany(),
		Transition: intake.QuestioningTransition{
			ExpectedVersion: conv.Version,
			Questions:       repotest.SampleQuestions(2),
		},
	})
	if err == nil {
		t.Fatalf("expected injected failure")
	}
	if runner.RollbackCalls != 1 {
		t.Fatalf("rollback calls: want=1 got=%d", runner.RollbackCalls)
	}

	stored, err := agg.Get(ctx, conv.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Phase != intake.PhaseInitial || stored.Version != conv.Version {
		t.Fatalf("partial write leaked: phase=%s version=%d", stored.Phase, stored.Version)
	}
	if n := countRows(t, db, &intake.JobRequirements{}, conv.ID); n != 0 {
		t.Fatalf("job rows leaked: %d", n)
	}
	if n := countRows(t, db, &intake.CompanyInfo{}, conv.ID); n != 0 {
		t.Fatalf("company rows leaked: %d", n)
	}
}
