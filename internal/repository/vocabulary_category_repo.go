package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-classroom-api/internal/models"
)

// VocabularyCategoryRepository defines persistence operations for vocabulary categories.
type VocabularyCategoryRepository interface {
	List(ctx context.Context, search string) ([]models.VocabularyCategory, error)
	GetByID(ctx context.Context, id uint) (models.VocabularyCategory, error)
	ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error)
	Create(ctx context.Context, category *models.VocabularyCategory) error
	Update(ctx context.Context, category *models.VocabularyCategory) error
	Delete(ctx context.Context, id uint) error
}

type vocabularyCategoryRepository struct {
	db *gorm.DB
}

// NewVocabularyCategoryRepository instantiates a GORM-backed repository.
func NewVocabularyCategoryRepository(db *gorm.DB) VocabularyCategoryRepository {
	return &vocabularyCategoryRepository{db: db}
}

func (r *vocabularyCategoryRepository) List(ctx context.Context, search string) ([]models.VocabularyCategory, error) {
	query := r.db.WithContext(ctx).Model(&models.VocabularyCategory{})
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var categories []models.VocabularyCategory
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *vocabularyCategoryRepository) GetByID(ctx context.Context, id uint) (models.VocabularyCategory, error) {
	var category models.VocabularyCategory
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return models.VocabularyCategory{}, err
	}

	return category, nil
}

// ExistsByName reports whether another category already uses name. excludeID skips the record
// being updated; pass 0 when creating.
func (r *vocabularyCategoryRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.VocabularyCategory{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *vocabularyCategoryRepository) Create(ctx context.Context, category *models.VocabularyCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *vocabularyCategoryRepository) Update(ctx context.Context, category *models.VocabularyCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *vocabularyCategoryRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.VocabularyCategory{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
