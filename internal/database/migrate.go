package database

import (
	"gorm.io/gorm"

	"github.com/noah-isme/gema-classroom-api/internal/models"
)

// Migrate creates or updates the tables backing the classroom models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Class{},
		&models.Student{},
		&models.Enrollment{},
		&models.Test{},
		&models.Question{},
		&models.Assignment{},
		&models.StudentAssignment{},
		&models.VocabularyCategory{},
		&models.ActivityLog{},
	)
}
