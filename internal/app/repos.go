package app

import (
	"gorm.io/gorm"

	"github.com/noahbkim00/executive-ai-mvp/internal/data/repos"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
)

type Repos struct {
	Conversation     repos.ConversationRepo
	QuestionResponse repos.QuestionResponseRepo
	JobRequirements  repos.JobRequirementsRepo
	CompanyInfo      repos.CompanyInfoRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Conversation:     repos.NewConversationRepo(db, log),
		QuestionResponse: repos.NewQuestionResponseRepo(db, log),
		JobRequirements:  repos.NewJobRequirementsRepo(db, log),
		CompanyInfo:      repos.NewCompanyInfoRepo(db, log),
	}
}
