package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-classroom-api/internal/dto"
	"github.com/noah-isme/gema-classroom-api/internal/models"
	"github.com/noah-isme/gema-classroom-api/internal/repository"
)

var (
	// ErrVocabularyCategoryNotFound indicates the requested category does not exist.
	ErrVocabularyCategoryNotFound = errors.New("vocabulary category not found")
	// ErrVocabularyCategoryNameTaken indicates another category already uses the name.
	ErrVocabularyCategoryNameTaken = errors.New("vocabulary category name already taken")
)

// VocabularyCategoryService manages vocabulary categories.
type VocabularyCategoryService interface {
	List(ctx context.Context, search string) ([]dto.VocabularyCategoryResponse, error)
	Get(ctx context.Context, id uint) (dto.VocabularyCategoryResponse, error)
	Create(ctx context.Context, payload dto.VocabularyCategoryRequest) (dto.VocabularyCategoryResponse, error)
	Update(ctx context.Context, id uint, payload dto.VocabularyCategoryRequest) (dto.VocabularyCategoryResponse, error)
	Delete(ctx context.Context, id uint) error
}

type vocabularyCategoryService struct {
	repo      repository.VocabularyCategoryRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewVocabularyCategoryService constructs the vocabulary category service.
func NewVocabularyCategoryService(repo repository.VocabularyCategoryRepository, validate *validator.Validate, logger zerolog.Logger) VocabularyCategoryService {
	return &vocabularyCategoryService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "vocabulary_category_service").Logger(),
	}
}

func (s *vocabularyCategoryService) List(ctx context.Context, search string) ([]dto.VocabularyCategoryResponse, error) {
	categories, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, err
	}

	return dto.NewVocabularyCategoryResponseSlice(categories), nil
}

func (s *vocabularyCategoryService) Get(ctx context.Context, id uint) (dto.VocabularyCategoryResponse, error) {
	category, err := s.load(ctx, id)
	if err != nil {
		return dto.VocabularyCategoryResponse{}, err
	}

	return dto.NewVocabularyCategoryResponse(category), nil
}

func (s *vocabularyCategoryService) Create(ctx context.Context, payload dto.VocabularyCategoryRequest) (dto.VocabularyCategoryResponse, error) {
	category := models.VocabularyCategory{}
	if err := s.apply(ctx, &category, payload); err != nil {
		return dto.VocabularyCategoryResponse{}, err
	}

	if err := s.repo.Create(ctx, &category); err != nil {
		return dto.VocabularyCategoryResponse{}, nameConflict(err)
	}

	s.logger.Info().Uint("category_id", category.ID).Msg("vocabulary category created")
	return dto.NewVocabularyCategoryResponse(category), nil
}

func (s *vocabularyCategoryService) Update(ctx context.Context, id uint, payload dto.VocabularyCategoryRequest) (dto.VocabularyCategoryResponse, error) {
	category, err := s.load(ctx, id)
	if err != nil {
		return dto.VocabularyCategoryResponse{}, err
	}

	if err := s.apply(ctx, &category, payload); err != nil {
		return dto.VocabularyCategoryResponse{}, err
	}

	if err := s.repo.Update(ctx, &category); err != nil {
		return dto.VocabularyCategoryResponse{}, nameConflict(err)
	}

	return dto.NewVocabularyCategoryResponse(category), nil
}

func (s *vocabularyCategoryService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVocabularyCategoryNotFound
		}
		return err
	}
	return nil
}

func (s *vocabularyCategoryService) load(ctx context.Context, id uint) (models.VocabularyCategory, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.VocabularyCategory{}, ErrVocabularyCategoryNotFound
		}
		return models.VocabularyCategory{}, err
	}
	return category, nil
}

// apply validates the payload and copies it onto category. Name uniqueness ignores category itself.
func (s *vocabularyCategoryService) apply(ctx context.Context, category *models.VocabularyCategory, payload dto.VocabularyCategoryRequest) error {
	payload.Name = plainText(s.sanitizer, payload.Name)
	if payload.ColorCode != nil {
		trimmed := strings.TrimSpace(*payload.ColorCode)
		payload.ColorCode = &trimmed
	}

	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	taken, err := s.repo.ExistsByName(ctx, payload.Name, category.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrVocabularyCategoryNameTaken
	}

	category.Name = payload.Name
	category.ColorCode = payload.ColorCode
	if category.ColorCode != nil && *category.ColorCode == "" {
		category.ColorCode = nil
	}
	return nil
}

// nameConflict reports a unique-index violation that slipped past ExistsByName as a taken name.
func nameConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrVocabularyCategoryNameTaken
	}
	return err
}
