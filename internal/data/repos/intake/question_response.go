package intake

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/dbctx"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
)

type QuestionResponseRepo interface {
	Create(dbc dbctx.Context, row *domain.QuestionResponse) (*domain.QuestionResponse, error)
	ListByConversation(dbc dbctx.Context, conversationID uuid.UUID) ([]*domain.QuestionResponse, error)
	CountByConversation(dbc dbctx.Context, conversationID uuid.UUID) (int64, error)
}

type questionResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionResponseRepo(db *gorm.DB, log *logger.Logger) QuestionResponseRepo {
	return &questionResponseRepo{db: db, log: log.With("repo", "QuestionResponseRepo")}
}

func (r *questionResponseRepo) Create(dbc dbctx.Context, row *domain.QuestionResponse) (*domain.QuestionResponse, error) {
	if row == nil || row.ConversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *questionResponseRepo) ListByConversation(dbc dbctx.Context, conversationID uuid.UUID) ([]*domain.QuestionResponse, error) {
	if conversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	var out []*domain.QuestionResponse
	if err := dbc.DB(r.db).
		Model(&domain.QuestionResponse{}).
		Where("conversation_id = ?", conversationID).
		Order("question_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionResponseRepo) CountByConversation(dbc dbctx.Context, conversationID uuid.UUID) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&domain.QuestionResponse{}).
		Where("conversation_id = ?", conversationID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
