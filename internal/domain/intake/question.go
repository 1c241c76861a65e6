package intake

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryLeadership   Category = "leadership"
	CategoryExperience   Category = "experience"
	CategoryCompensation Category = "compensation"
	CategoryExpertise    Category = "expertise"
	CategoryMotivation   Category = "motivation"
	CategoryCulture      Category = "culture"
)

// Categories lists every category in keyword-match priority order.
var Categories = []Category{
	CategoryLeadership, CategoryExperience, CategoryCompensation, CategoryExpertise, CategoryMotivation, CategoryCulture,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// QuestionSource is derived from the question id prefix.
type QuestionSource string

const (
	SourceGenerated QuestionSource = "generated"
	SourceTemplate  QuestionSource = "template"
	SourceFallback  QuestionSource = "fallback"
)

const (
	TemplateIDPrefix = "role_"
	FallbackIDPrefix = "fallback_"
)

type Question struct {
	ID        string   `json:"question_id"`
	Text      string   `json:"question"`
	Category  Category `json:"category"`
	Rationale string   `json:"rationale"`
}

func (q Question) Source() QuestionSource {
	switch {
	case strings.HasPrefix(q.ID, FallbackIDPrefix):
		return SourceFallback
	case strings.HasPrefix(q.ID, TemplateIDPrefix):
		return SourceTemplate
	default:
		return SourceGenerated
	}
}

// QuestionSet is the ordered, fixed list of questions for one questioning phase.
type QuestionSet []Question

func (s QuestionSet) Len() int { return len(s) }

func (s QuestionSet) At(i int) (Question, bool) {
	if i < 0 || i >= len(s) {
		return Question{}, false
	}
	return s[i], true
}

func (s QuestionSet) Clone() QuestionSet {
	if s == nil {
		return nil
	}
	out := make(QuestionSet, len(s))
	copy(out, s)
	return out
}

// AnswerRecord is one answer as stored in the conversation metadata.
type AnswerRecord struct {
	QuestionIndex int       `json:"question_index"`
	QuestionID    string    `json:"question_id"`
	QuestionText  string    `json:"question_text"`
	Response      string    `json:"response"`
	AnsweredAt    time.Time `json:"answered_at"`
}

type AnswerLog []AnswerRecord

func (l AnswerLog) Len() int { return len(l) }

func (l AnswerLog) Clone() AnswerLog {
	if l == nil {
		return nil
	}
	out := make(AnswerLog, len(l))
	copy(out, l)
	return out
}

// QuestionResponse is the durable, append-only answer row.
type QuestionResponse struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_question_response_turn,priority:1" json:"conversation_id"`
	QuestionIndex  int       `gorm:"column:question_index;not null;uniqueIndex:idx_question_response_turn,priority:2" json:"question_index"`
	QuestionID     string    `gorm:"column:question_id;not null" json:"question_id"`
	QuestionText   string    `gorm:"column:question_text;type:text;not null" json:"question_text"`
	Response       string    `gorm:"column:response;type:text;not null" json:"response"`
	CreatedAt      time.Time `gorm:"not null;index" json:"created_at"`
}

func (QuestionResponse) TableName() string { return "question_response" }

func (r *QuestionResponse) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// NewQuestionResponse denormalizes an answer record into a response row.
func NewQuestionResponse(conversationID uuid.UUID, a AnswerRecord) *QuestionResponse {
	return &QuestionResponse{
		ID:             uuid.New(),
		ConversationID: conversationID,
		QuestionIndex:  a.QuestionIndex,
		QuestionID:     a.QuestionID,
		QuestionText:   a.QuestionText,
		Response:       a.Response,
		CreatedAt:      a.AnsweredAt,
	}
}
