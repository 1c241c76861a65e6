package intake

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/dbctx"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
)

type ConversationRepo interface {
	Create(dbc dbctx.Context, row *domain.Conversation) (*domain.Conversation, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Conversation, error)
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: log.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) Create(dbc dbctx.Context, row *domain.Conversation) (*domain.Conversation, error) {
	if row == nil {
		return nil, fmt.Errorf("missing conversation")
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// GetByID returns gorm.ErrRecordNotFound when the row does not exist.
func (r *conversationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Conversation, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	var out domain.Conversation
	if err := dbc.DB(r.db).
		Where("id = ?", id).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
