package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&intake.Conversation{},
		&intake.QuestionResponse{},
		&intake.JobRequirements{},
		&intake.CompanyInfo{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
