package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-classroom-api/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Class{},
		&models.Student{},
		&models.Enrollment{},
		&models.Test{},
		&models.Question{},
		&models.Assignment{},
		&models.StudentAssignment{},
		&models.VocabularyCategory{},
		&models.ActivityLog{},
	))
	return db
}

func newTestValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func seedStudent(t *testing.T, db *gorm.DB, classID uint, name string) models.Student {
	t.Helper()
	student := models.Student{Name: name, Email: strings.ToLower(name) + "@example.com"}
	require.NoError(t, db.Create(&student).Error)
	require.NoError(t, db.Create(&models.Enrollment{
		ClassID:   classID,
		StudentID: student.ID,
		Status:    models.EnrollmentStatusActive,
		JoinedAt:  time.Now(),
	}).Error)
	return student
}

func seedClassroom(t *testing.T, db *gorm.DB, names ...string) (models.Class, models.Test) {
	t.Helper()
	class := models.Class{Name: "Year 7 Maths"}
	require.NoError(t, db.Create(&class).Error)
	for _, name := range names {
		seedStudent(t, db, class.ID, name)
	}

	test := models.Test{
		Title:   "Fractions quiz",
		ClassID: class.ID,
		Questions: []models.Question{
			{Prompt: "1/2 + 1/4?", Points: 6, Position: 1},
			{Prompt: "3/4 - 1/4?", Points: 4, Position: 2},
		},
	}
	require.NoError(t, db.Create(&test).Error)
	return class, test
}

func stringPtr(v string) *string {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}
