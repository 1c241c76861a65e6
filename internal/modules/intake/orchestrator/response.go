package orchestrator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
)

const (
	introFirst = "Let me ask you some questions to better understand your needs."
	introNext  = "Thank you for that information. Here's my next question:"

	clarificationMessage = "I'd be glad to help with your executive search. To get started, could you tell me the title of the role you're hiring for and the company it's for? For example: \"We're looking for a VP of Engineering at Acme.\""
)

type Progress struct {
	Phase              intake.Phase `json:"phase"`
	CurrentQuestion    int          `json:"current_question"`
	TotalQuestions     int          `json:"total_questions"`
	ProgressPercentage float64      `json:"progress_percentage"`
}

type NextQuestion struct {
	QuestionID string          `json:"question_id"`
	Question   string          `json:"question"`
	Category   intake.Category `json:"category"`
	Number     int             `json:"number"`
	Total      int             `json:"total"`
}

// Response is the payload returned for every processed message.
type Response struct {
	ConversationID  uuid.UUID     `json:"conversation_id"`
	Phase           intake.Phase  `json:"phase"`
	Status          intake.Status `json:"status"`
	ResponseContent string        `json:"response_content"`
	Progress        Progress      `json:"progress"`
	NextQuestion    *NextQuestion `json:"next_question,omitempty"`
	IsComplete      bool          `json:"is_complete"`
}

// ProgressOf reports progress with a 0-100 percentage, 0 when there are no questions.
func ProgressOf(conv *intake.Conversation) Progress {
	p := Progress{
		Phase:           conv.Phase,
		CurrentQuestion: conv.CurrentQuestionIndex,
		TotalQuestions:  conv.TotalQuestions,
	}
	if conv.TotalQuestions > 0 {
		p.ProgressPercentage = float64(conv.CurrentQuestionIndex) / float64(conv.TotalQuestions) * 100
	}
	return p
}

func base(conv *intake.Conversation) Response {
	return Response{
		ConversationID: conv.ID,
		Phase:          conv.Phase,
		Status:         conv.Status,
		Progress:       ProgressOf(conv),
		IsComplete:     conv.Phase == intake.PhaseCompleted,
	}
}

func clarification(conv *intake.Conversation) Response {
	r := base(conv)
	r.ResponseContent = clarificationMessage
	return r
}

func presentQuestion(conv *intake.Conversation, intro string) Response {
	r := base(conv)
	q, ok := conv.CurrentQuestion()
	if !ok {
		return r
	}
	n := conv.CurrentQuestionIndex + 1
	r.ResponseContent = fmt.Sprintf("%s\n\nQuestion %d of %d: %s", intro, n, conv.TotalQuestions, q.Text)
	r.NextQuestion = &NextQuestion{
		QuestionID: q.ID,
		Question:   q.Text,
		Category:   q.Category,
		Number:     n,
		Total:      conv.TotalQuestions,
	}
	return r
}

func completion(conv *intake.Conversation) Response {
	r := base(conv)
	r.ResponseContent = CompletionMessage(conv.TotalQuestions)
	return r
}

func CompletionMessage(answered int) string {
	return fmt.Sprintf("Thank you for providing all that valuable information! I now have a comprehensive understanding of your requirements after answering %d questions. Your background search has begun, and we will notify you when we have identified potential candidates that match your specific needs.", answered)
}
