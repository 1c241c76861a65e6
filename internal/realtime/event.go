// Package realtime carries conversation progress events to subscribers.
package realtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
)

type EventType string

const (
	EventConversationCreated EventType = "conversation.created"
	EventQuestioningStarted  EventType = "conversation.questioning_started"
	EventAnswerRecorded      EventType = "conversation.answer_recorded"
	EventConversationDone    EventType = "conversation.completed"
)

// ConversationEvent is published after a conversation transition commits.
type ConversationEvent struct {
	Type            EventType     `json:"type"`
	ConversationID  uuid.UUID     `json:"conversation_id"`
	Phase           intake.Phase  `json:"phase"`
	Status          intake.Status `json:"status"`
	CurrentQuestion int           `json:"current_question"`
	TotalQuestions  int           `json:"total_questions"`
	Version         int           `json:"version"`
	At              time.Time     `json:"at"`
}

// EventFor snapshots conv after a committed transition.
func EventFor(t EventType, conv *intake.Conversation, at time.Time) ConversationEvent {
	return ConversationEvent{
		Type:            t,
		ConversationID:  conv.ID,
		Phase:           conv.Phase,
		Status:          conv.Status,
		CurrentQuestion: conv.CurrentQuestionIndex,
		TotalQuestions:  conv.TotalQuestions,
		Version:         conv.Version,
		At:              at,
	}
}
