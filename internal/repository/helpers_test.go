package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-classroom-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
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

func seedClassWithStudents(t *testing.T, db *gorm.DB, names ...string) (models.Class, []models.Student) {
	t.Helper()
	class := models.Class{Name: "Class " + t.Name()}
	require.NoError(t, db.Create(&class).Error)

	students := make([]models.Student, 0, len(names))
	for _, name := range names {
		student := models.Student{Name: name, Email: strings.ToLower(name) + "@example.com"}
		require.NoError(t, db.Create(&student).Error)
		require.NoError(t, db.Create(&models.Enrollment{
			ClassID:   class.ID,
			StudentID: student.ID,
			Status:    models.EnrollmentStatusActive,
			JoinedAt:  time.Now(),
		}).Error)
		students = append(students, student)
	}
	return class, students
}

func seedAssignment(t *testing.T, db *gorm.DB, classID uint) models.Assignment {
	t.Helper()
	test := models.Test{Title: "Fractions quiz", ClassID: classID}
	require.NoError(t, db.Create(&test).Error)
	assignment := models.Assignment{TestID: test.ID, ClassID: classID, Title: test.Title}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

func studentIDs(students []models.Student) []uint {
	ids := make([]uint, 0, len(students))
	for _, student := range students {
		ids = append(ids, student.ID)
	}
	return ids
}
