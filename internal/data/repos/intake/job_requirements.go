package intake

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/dbctx"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
)

type JobRequirementsRepo interface {
	Create(dbc dbctx.Context, row *domain.JobRequirements) (*domain.JobRequirements, error)
	// GetByConversation returns nil, nil when no row exists.
	GetByConversation(dbc dbctx.Context, conversationID uuid.UUID) (*domain.JobRequirements, error)
}

type jobRequirementsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRequirementsRepo(db *gorm.DB, log *logger.Logger) JobRequirementsRepo {
	return &jobRequirementsRepo{db: db, log: log.With("repo", "JobRequirementsRepo")}
}

func (r *jobRequirementsRepo) Create(dbc dbctx.Context, row *domain.JobRequirements) (*domain.JobRequirements, error) {
	if row == nil || row.ConversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *jobRequirementsRepo) GetByConversation(dbc dbctx.Context, conversationID uuid.UUID) (*domain.JobRequirements, error) {
	var out domain.JobRequirements
	err := dbc.DB(r.db).
		Where("conversation_id = ?", conversationID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
