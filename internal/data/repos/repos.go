package repos

import (
	"gorm.io/gorm"

	"github.com/noahbkim00/executive-ai-mvp/internal/data/repos/intake"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
)

type ConversationRepo = intake.ConversationRepo
type QuestionResponseRepo = intake.QuestionResponseRepo
type JobRequirementsRepo = intake.JobRequirementsRepo
type CompanyInfoRepo = intake.CompanyInfoRepo

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return intake.NewConversationRepo(db, baseLog)
}
func NewQuestionResponseRepo(db *gorm.DB, baseLog *logger.Logger) QuestionResponseRepo {
	return intake.NewQuestionResponseRepo(db, baseLog)
}
func NewJobRequirementsRepo(db *gorm.DB, baseLog *logger.Logger) JobRequirementsRepo {
	return intake.NewJobRequirementsRepo(db, baseLog)
}
func NewCompanyInfoRepo(db *gorm.DB, baseLog *logger.Logger) CompanyInfoRepo {
	return intake.NewCompanyInfoRepo(db, baseLog)
}
