package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-classroom-api/internal/models"
)

// EnrollmentRepository reads and maintains class rosters.
type EnrollmentRepository interface {
	ListActiveStudentIDs(ctx context.Context, classID uint) ([]uint, error)
	ListActiveStudents(ctx context.Context, classID uint) ([]models.Student, error)
	Enroll(ctx context.Context, enrollment *models.Enrollment) error
	Withdraw(ctx context.Context, classID, studentID uint, at time.Time) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs an enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) ListActiveStudentIDs(ctx context.Context, classID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("class_id = ? AND status = ?", classID, models.EnrollmentStatusActive).
		Order("student_id ASC").
		Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *enrollmentRepository) ListActiveStudents(ctx context.Context, classID uint) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.WithContext(ctx).Model(&models.Student{}).
		Joins("JOIN enrollments ON enrollments.student_id = students.id").
		Where("enrollments.class_id = ? AND enrollments.status = ?", classID, models.EnrollmentStatusActive).
		Order("students.name ASC").
		Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

// Enroll inserts the enrollment or reactivates an existing row for the same class and student.
func (r *enrollmentRepository) Enroll(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "class_id"}, {Name: "student_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":     enrollment.Status,
				"joined_at":  enrollment.JoinedAt,
				"left_at":    nil,
				"updated_at": enrollment.JoinedAt,
			}),
		}).
		Create(enrollment).Error
}

func (r *enrollmentRepository) Withdraw(ctx context.Context, classID, studentID uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("class_id = ? AND student_id = ? AND status = ?", classID, studentID, models.EnrollmentStatusActive).
		Updates(map[string]interface{}{
			"status":     models.EnrollmentStatusLeft,
			"left_at":    at,
			"updated_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
