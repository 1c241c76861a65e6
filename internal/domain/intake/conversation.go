package intake

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Phase string

const (
	PhaseInitial     Phase = "initial"
	PhaseQuestioning Phase = "questioning"
	PhaseCompleted   Phase = "completed"
	// PhaseError is reported to callers only; it is never stored.
	PhaseError Phase = "error"
)

func (p Phase) Persistable() bool {
	return p == PhaseInitial || p == PhaseQuestioning || p == PhaseCompleted
}

type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

var (
	// ErrInvalidTransition is returned when the stored phase or question index does not admit the operation.
	ErrInvalidTransition = errors.New("invalid conversation transition")
	// ErrInvariant is returned when a transition would leave the record inconsistent.
	ErrInvariant = errors.New("conversation invariant violated")
)

// GenerationProvenance records how the question set was produced.
type GenerationProvenance struct {
	Generated          int     `json:"generated"`
	Backfilled         int     `json:"backfilled"`
	Fallback           bool    `json:"fallback"`
	ExtractionDegraded bool    `json:"extraction_degraded,omitempty"`
	ResearchSkipped    bool    `json:"research_skipped,omitempty"`
	ResearchDegraded   bool    `json:"research_degraded,omitempty"`
	ResearchConfidence float64 `json:"research_confidence"`
}

// ConversationMetadata is the typed JSON document carried on the conversation row.
type ConversationMetadata struct {
	InitialMessage       string                `json:"initial_message,omitempty"`
	Questions            QuestionSet           `json:"questions,omitempty"`
	Answers              AnswerLog             `json:"answers,omitempty"`
	QuestionsGeneratedAt *time.Time            `json:"questions_generated_at,omitempty"`
	CompletedAt          *time.Time            `json:"completed_at,omitempty"`
	Generation           *GenerationProvenance `json:"generation,omitempty"`
}

func (m ConversationMetadata) Clone() ConversationMetadata {
	out := m
	out.Questions = m.Questions.Clone()
	out.Answers = m.Answers.Clone()
	if m.Generation != nil {
		g := *m.Generation
		out.Generation = &g
	}
	return out
}

type Conversation struct {
	ID                   uuid.UUID                                `gorm:"type:uuid;primaryKey" json:"id"`
	Phase                Phase                                    `gorm:"column:phase;type:varchar(32);not null;default:'initial';index" json:"phase"`
	Status               Status                                   `gorm:"column:status;type:varchar(32);not null;default:'active';index" json:"status"`
	CurrentQuestionIndex int                                      `gorm:"column:current_question_index;not null;default:0" json:"current_question_index"`
	TotalQuestions       int                                      `gorm:"column:total_questions;not null;default:0" json:"total_questions"`
	Metadata             datatypes.JSONType[ConversationMetadata] `gorm:"column:metadata" json:"metadata"`
	Version              int                                      `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt            time.Time                                `gorm:"not null;index" json:"created_at"`
	UpdatedAt            time.Time                                `gorm:"not null;index" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversation" }

func (c *Conversation) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Phase == "" {
		c.Phase = PhaseInitial
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
	return nil
}

// NewConversation returns an INITIAL conversation seeded with the user's first message.
func NewConversation(initialMessage string, now time.Time) *Conversation {
	return &Conversation{
		ID:        uuid.New(),
		Phase:     PhaseInitial,
		Status:    StatusActive,
		Metadata:  datatypes.NewJSONType(ConversationMetadata{InitialMessage: initialMessage}),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Meta returns a private copy of the metadata document.
func (c *Conversation) Meta() ConversationMetadata {
	if c == nil {
		return ConversationMetadata{}
	}
	return c.Metadata.Data().Clone()
}

func (c *Conversation) setMeta(m ConversationMetadata) {
	c.Metadata = datatypes.NewJSONType(m)
}

// Clone returns a copy that shares no slices with c.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.setMeta(c.Meta())
	return &out
}

// CurrentQuestion returns the question awaiting an answer.
func (c *Conversation) CurrentQuestion() (Question, bool) {
	if c == nil || c.Phase != PhaseQuestioning {
		return Question{}, false
	}
	return c.Meta().Questions.At(c.CurrentQuestionIndex)
}

// QuestioningTransition moves an INITIAL conversation into QUESTIONING with a fixed question set.
type QuestioningTransition struct {
	ExpectedVersion int
	Questions       QuestionSet
	Provenance      GenerationProvenance
	At              time.Time
}

// AnswerTransition records one answer against the question at QuestionIndex.
// Complete must be true exactly when the answer is to the final question.
type AnswerTransition struct {
	ExpectedVersion int
	QuestionIndex   int
	QuestionID      string
	QuestionText    string
	Response        string
	Complete        bool
	At              time.Time
}

func (t AnswerTransition) Record() AnswerRecord {
	return AnswerRecord{
		QuestionIndex: t.QuestionIndex,
		QuestionID:    t.QuestionID,
		QuestionText:  t.QuestionText,
		Response:      t.Response,
		AnsweredAt:    t.At,
	}
}

func (c *Conversation) ApplyQuestioning(t QuestioningTransition) error {
	if c.Phase != PhaseInitial {
		return fmt.Errorf("%w: cannot start questioning from %s", ErrInvalidTransition, c.Phase)
	}
	if t.Questions.Len() == 0 {
		return fmt.Errorf("%w: empty question set", ErrInvariant)
	}
	at := t.At
	prov := t.Provenance
	meta := c.Meta()
	meta.Questions = t.Questions.Clone()
	meta.Answers = nil
	meta.QuestionsGeneratedAt = &at
	meta.Generation = &prov
	c.setMeta(meta)
	c.Phase = PhaseQuestioning
	c.Status = StatusActive
	c.TotalQuestions = t.Questions.Len()
	c.CurrentQuestionIndex = 0
	c.UpdatedAt = at
	return c.CheckInvariants()
}

func (c *Conversation) ApplyAnswer(t AnswerTransition) (AnswerRecord, error) {
	if c.Phase != PhaseQuestioning {
		return AnswerRecord{}, fmt.Errorf("%w: cannot answer in phase %s", ErrInvalidTransition, c.Phase)
	}
	if t.QuestionIndex != c.CurrentQuestionIndex {
		return AnswerRecord{}, fmt.Errorf("%w: answer for index %d but current is %d", ErrInvalidTransition, t.QuestionIndex, c.CurrentQuestionIndex)
	}
	meta := c.Meta()
	q, ok := meta.Questions.At(c.CurrentQuestionIndex)
	if !ok {
		return AnswerRecord{}, fmt.Errorf("%w: question index %d out of range", ErrInvalidTransition, c.CurrentQuestionIndex)
	}
	if t.QuestionID != "" && t.QuestionID != q.ID {
		return AnswerRecord{}, fmt.Errorf("%w: answer targets %q but current question is %q", ErrInvalidTransition, t.QuestionID, q.ID)
	}
	next := c.CurrentQuestionIndex + 1
	if t.Complete != (next == c.TotalQuestions) {
		return AnswerRecord{}, fmt.Errorf("%w: completion flag %v at index %d of %d", ErrInvariant, t.Complete, next, c.TotalQuestions)
	}
	rec := t.Record()
	rec.QuestionID = q.ID
	rec.QuestionText = q.Text
	meta.Answers = append(meta.Answers, rec)
	c.CurrentQuestionIndex = next
	if t.Complete {
		at := t.At
		c.Phase = PhaseCompleted
		c.Status = StatusCompleted
		meta.CompletedAt = &at
	}
	c.setMeta(meta)
	c.UpdatedAt = t.At
	return rec, c.CheckInvariants()
}

// IsFinalAnswer reports whether answering the current question completes the conversation.
func (c *Conversation) IsFinalAnswer() bool {
	return c != nil && c.Phase == PhaseQuestioning && c.CurrentQuestionIndex+1 == c.TotalQuestions
}

// CheckInvariants validates the phase/index/metadata relationships of a stored conversation.
func (c *Conversation) CheckInvariants() error {
	if !c.Phase.Persistable() {
		return fmt.Errorf("%w: phase %q cannot be stored", ErrInvariant, c.Phase)
	}
	if c.CurrentQuestionIndex < 0 || c.CurrentQuestionIndex > c.TotalQuestions {
		return fmt.Errorf("%w: index %d outside [0,%d]", ErrInvariant, c.CurrentQuestionIndex, c.TotalQuestions)
	}
	meta := c.Metadata.Data()
	switch c.Phase {
	case PhaseInitial:
		if c.TotalQuestions != 0 || c.CurrentQuestionIndex != 0 {
			return fmt.Errorf("%w: initial conversation has questions", ErrInvariant)
		}
	case PhaseQuestioning:
		if c.TotalQuestions == 0 || c.TotalQuestions != meta.Questions.Len() {
			return fmt.Errorf("%w: total %d does not match %d stored questions", ErrInvariant, c.TotalQuestions, meta.Questions.Len())
		}
		if c.CurrentQuestionIndex >= c.TotalQuestions {
			return fmt.Errorf("%w: questioning conversation has no open question", ErrInvariant)
		}
	case PhaseCompleted:
		if c.TotalQuestions != meta.Questions.Len() || c.CurrentQuestionIndex != c.TotalQuestions {
			return fmt.Errorf("%w: completed conversation has unanswered questions", ErrInvariant)
		}
	}
	if c.Phase != PhaseInitial && meta.Answers.Len() != c.CurrentQuestionIndex {
		return fmt.Errorf("%w: %d answers recorded at index %d", ErrInvariant, meta.Answers.Len(), c.CurrentQuestionIndex)
	}
	return nil
}
