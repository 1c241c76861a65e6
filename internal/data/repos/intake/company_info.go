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

type CompanyInfoRepo interface {
	Create(dbc dbctx.Context, row *domain.CompanyInfo) (*domain.CompanyInfo, error)
	// GetByConversation returns nil, nil when no row exists.
	GetByConversation(dbc dbctx.Context, conversationID uuid.UUID) (*domain.CompanyInfo, error)
}

type companyInfoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyInfoRepo(db *gorm.DB, log *logger.Logger) CompanyInfoRepo {
	return &companyInfoRepo{db: db, log: log.With("repo", "CompanyInfoRepo")}
}

func (r *companyInfoRepo) Create(dbc dbctx.Context, row *domain.CompanyInfo) (*domain.CompanyInfo, error) {
	if row == nil || row.ConversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *companyInfoRepo) GetByConversation(dbc dbctx.Context, conversationID uuid.UUID) (*domain.CompanyInfo, error) {
	var out domain.CompanyInfo
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
