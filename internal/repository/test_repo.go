package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-classroom-api/internal/models"
)

// TestRepository provides access to test templates and their questions.
type TestRepository interface {
	GetByID(ctx context.Context, id uint) (models.Test, error)
	ListByClass(ctx context.Context, classID *uint) ([]models.Test, error)
	Create(ctx context.Context, test *models.Test) error
}

type testRepository struct {
	db *gorm.DB
}

// NewTestRepository constructs a test repository.
func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) withQuestions(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC").Order("id ASC")
	})
}

func (r *testRepository) GetByID(ctx context.Context, id uint) (models.Test, error) {
	var test models.Test
	if err := r.withQuestions(ctx).First(&test, id).Error; err != nil {
		return models.Test{}, err
	}

	return test, nil
}

func (r *testRepository) ListByClass(ctx context.Context, classID *uint) ([]models.Test, error) {
	query := r.withQuestions(ctx).Model(&models.Test{})
	if classID != nil {
		query = query.Where("class_id = ?", *classID)
	}

	var tests []models.Test
	if err := query.Order("created_at DESC").Order("id DESC").Find(&tests).Error; err != nil {
		return nil, err
	}

	return tests, nil
}

// Create stores the test together with its questions.
func (r *testRepository) Create(ctx context.Context, test *models.Test) error {
	return r.db.WithContext(ctx).Create(test).Error
}
