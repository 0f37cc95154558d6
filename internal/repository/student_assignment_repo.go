package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-classroom-api/internal/models"
)

const defaultFanoutBatchSize = 200

// StudentAssignmentRepository persists per-student assignment records.
type StudentAssignmentRepository interface {
	CreateMissing(ctx context.Context, assignmentID uint, studentIDs []uint) (int, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.StudentAssignment, error)
	CountByStatus(ctx context.Context, assignmentID uint) (map[string]int64, error)
	GetByID(ctx context.Context, id uint) (models.StudentAssignment, error)
	Update(ctx context.Context, record *models.StudentAssignment) error
}

type studentAssignmentRepository struct {
	db        *gorm.DB
	batchSize int
}

// NewStudentAssignmentRepository instantiates the repository. batchSize bounds the rows per insert statement.
func NewStudentAssignmentRepository(db *gorm.DB, batchSize int) StudentAssignmentRepository {
	if batchSize <= 0 {
		batchSize = defaultFanoutBatchSize
	}
	return &studentAssignmentRepository{db: db, batchSize: batchSize}
}

// CreateMissing inserts an "assigned" record for every student that does not have one for the
// assignment yet and returns how many rows were inserted. The whole call runs in one transaction;
// rows lost to a concurrent insert of the same pair are skipped by the unique index, not counted.
func (r *studentAssignmentRepository) CreateMissing(ctx context.Context, assignmentID uint, studentIDs []uint) (int, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}

	created := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []uint
		if err := tx.Model(&models.StudentAssignment{}).
			Where("assignment_id = ?", assignmentID).
			Pluck("student_id", &existing).Error; err != nil {
			return err
		}

		seen := make(map[uint]struct{}, len(existing)+len(studentIDs))
		for _, id := range existing {
			seen[id] = struct{}{}
		}

		rows := make([]models.StudentAssignment, 0, len(studentIDs))
		for _, studentID := range studentIDs {
			if studentID == 0 {
				continue
			}
			if _, ok := seen[studentID]; ok {
				continue
			}
			seen[studentID] = struct{}{}
			rows = append(rows, models.StudentAssignment{
				AssignmentID: assignmentID,
				StudentID:    studentID,
				Status:       models.StudentAssignmentStatusAssigned,
			})
		}

		if len(rows) == 0 {
			return nil
		}

		result := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
				DoNothing: true,
			}).
			CreateInBatches(&rows, r.batchSize)
		if result.Error != nil {
			return result.Error
		}

		created = int(result.RowsAffected)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}

func (r *studentAssignmentRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.StudentAssignment, error) {
	var records []models.StudentAssignment
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("assignment_id = ?", assignmentID).
		Order("student_id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *studentAssignmentRepository) CountByStatus(ctx context.Context, assignmentID uint) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.StudentAssignment{}).
		Select("status, COUNT(*) AS total").
		Where("assignment_id = ?", assignmentID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}

	return counts, nil
}

func (r *studentAssignmentRepository) GetByID(ctx context.Context, id uint) (models.StudentAssignment, error) {
	var record models.StudentAssignment
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return models.StudentAssignment{}, err
	}

	return record, nil
}

func (r *studentAssignmentRepository) Update(ctx context.Context, record *models.StudentAssignment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(record).Error
}
