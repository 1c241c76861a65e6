package intake

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func threeQuestions() QuestionSet {
	return QuestionSet{
		{ID: "q1", Text: "How will this leader build the team?", Category: CategoryLeadership, Rationale: "a"},
		{ID: "q2", Text: "What background matters most?", Category: CategoryExperience, Rationale: "b"},
		{ID: "role_1", Text: "Why now?", Category: CategoryMotivation, Rationale: "c"},
	}
}

func questioning(t *testing.T) *Conversation {
	t.Helper()
	c := NewConversation("VP Eng at Stripe", time.Unix(0, 0))
	if err := c.ApplyQuestioning(QuestioningTransition{Questions: threeQuestions(), At: time.Unix(1, 0)}); err != nil {
		t.Fatalf("ApplyQuestioning: %v", err)
	}
	return c
}

func answer(c *Conversation, text string) (AnswerRecord, error) {
	return c.ApplyAnswer(AnswerTransition{
		QuestionIndex: c.CurrentQuestionIndex,
		Response:      text,
		Complete:      c.IsFinalAnswer(),
		At:            time.Unix(2, 0),
	})
}

func TestApplyQuestioningSetsTotals(t *testing.T) {
	c := questioning(t)
	if c.Phase != PhaseQuestioning || c.Status != StatusActive {
		t.Fatalf("phase/status: got %s/%s", c.Phase, c.Status)
	}
	if c.TotalQuestions != 3 || c.CurrentQuestionIndex != 0 {
		t.Fatalf("progress: got %d/%d", c.CurrentQuestionIndex, c.TotalQuestions)
	}
	meta := c.Meta()
	if meta.InitialMessage != "VP Eng at Stripe" {
		t.Fatalf("initial message lost: %q", meta.InitialMessage)
	}
	if meta.QuestionsGeneratedAt == nil || meta.Generation == nil {
		t.Fatalf("expected generation timestamps and provenance")
	}
	q, ok := c.CurrentQuestion()
	if !ok || q.ID != "q1" {
		t.Fatalf("current question: want=q1 got=%+v", q)
	}
}

func TestApplyQuestioningRejectsNonInitial(t *testing.T) {
	c := questioning(t)
	err := c.ApplyQuestioning(QuestioningTransition{Questions: threeQuestions()})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}
}

func TestApplyQuestioningRejectsEmptySet(t *testing.T) {
	c := NewConversation("x", time.Now())
	if err := c.ApplyQuestioning(QuestioningTransition{}); !errors.Is(err, ErrInvariant) {
		t.Fatalf("want ErrInvariant, got %v", err)
	}
	if c.Phase != PhaseInitial {
		t.Fatalf("phase changed on failure: %s", c.Phase)
	}
}

func TestApplyAnswerAdvancesAndCompletes(t *testing.T) {
	c := questioning(t)
	for i := 0; i < 3; i++ {
		rec, err := answer(c, "answer")
		if err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if rec.QuestionIndex != i {
			t.Fatalf("record index: want=%d got=%d", i, rec.QuestionIndex)
		}
	}
	if c.Phase != PhaseCompleted || c.Status != StatusCompleted {
		t.Fatalf("phase/status: got %s/%s", c.Phase, c.Status)
	}
	if c.CurrentQuestionIndex != c.TotalQuestions {
		t.Fatalf("index: want=%d got=%d", c.TotalQuestions, c.CurrentQuestionIndex)
	}
	meta := c.Meta()
	if meta.CompletedAt == nil {
		t.Fatalf("expected completion timestamp")
	}
	if meta.Answers.Len() != 3 || meta.Answers[2].QuestionText != "Why now?" {
		t.Fatalf("answers not denormalized: %+v", meta.Answers)
	}
}

func TestApplyAnswerRejectsStaleIndex(t *testing.T) {
	c := questioning(t)
	if _, err := answer(c, "first"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	_, err := c.ApplyAnswer(AnswerTransition{QuestionIndex: 0, Response: "again", At: time.Now()})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}
	if c.CurrentQuestionIndex != 1 || c.Meta().Answers.Len() != 1 {
		t.Fatalf("stale answer mutated state: idx=%d answers=%d", c.CurrentQuestionIndex, c.Meta().Answers.Len())
	}
}

func TestApplyAnswerRejectsWrongCompletionFlag(t *testing.T) {
	c := questioning(t)
	_, err := c.ApplyAnswer(AnswerTransition{QuestionIndex: 0, Response: "x", Complete: true, At: time.Now()})
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("want ErrInvariant, got %v", err)
	}
}

func TestApplyAnswerRequiresQuestioning(t *testing.T) {
	c := NewConversation("x", time.Now())
	if _, err := answer(c, "x"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}
}

func TestCheckInvariants(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Conversation)
		ok     bool
	}{
		{"valid", func(*Conversation) {}, true},
		{"index above total", func(c *Conversation) { c.CurrentQuestionIndex = 4 }, false},
		{"negative index", func(c *Conversation) { c.CurrentQuestionIndex = -1 }, false},
		{"total mismatch", func(c *Conversation) { c.TotalQuestions = 2 }, false},
		{"error phase stored", func(c *Conversation) { c.Phase = PhaseError }, false},
		{"completed early", func(c *Conversation) { c.Phase = PhaseCompleted }, false},
	}
	for _, tc := range cases {
		c := questioning(t)
		tc.mutate(c)
		err := c.CheckInvariants()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvariant) {
			t.Fatalf("%s: want ErrInvariant, got %v", tc.name, err)
		}
	}
}

func TestMetaIsACopy(t *testing.T) {
	c := questioning(t)
	meta := c.Meta()
	meta.Questions[0].Text = "mutated"
	if q, _ := c.CurrentQuestion(); q.Text == "mutated" {
		t.Fatalf("Meta leaked internal slice")
	}
}

func TestQuestionRoundTripPreservesFields(t *testing.T) {
	c := questioning(t)
	raw, err := json.Marshal(c.Metadata)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back ConversationMetadata
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for i, q := range threeQuestions() {
		got := back.Questions[i]
		if got.ID != q.ID || got.Text != q.Text || got.Category != q.Category {
			t.Fatalf("question %d: want=%+v got=%+v", i, q, got)
		}
	}
}

func TestQuestionSource(t *testing.T) {
	cases := map[string]QuestionSource{
		"q1":         SourceGenerated,
		"role_2":     SourceTemplate,
		"fallback_3": SourceFallback,
	}
	for id, want := range cases {
		if got := (Question{ID: id}).Source(); got != want {
			t.Fatalf("%s: want=%s got=%s", id, want, got)
		}
	}
}
