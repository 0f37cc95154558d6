package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-classroom-api/internal/dto"
	"github.com/noah-isme/gema-classroom-api/internal/models"
	"github.com/noah-isme/gema-classroom-api/internal/repository"
)

// ErrTestNotFound indicates the requested test does not exist.
var ErrTestNotFound = errors.New("test not found")

// TestService manages test templates.
type TestService interface {
	Create(ctx context.Context, payload dto.TestCreateRequest) (dto.TestResponse, error)
	Get(ctx context.Context, id uint) (dto.TestResponse, error)
	List(ctx context.Context, classID uint) ([]dto.TestResponse, error)
}

type testService struct {
	tests     repository.TestRepository
	classes   repository.ClassRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewTestService constructs the test service.
func NewTestService(tests repository.TestRepository, classes repository.ClassRepository, validate *validator.Validate, logger zerolog.Logger) TestService {
	return &testService{
		tests:     tests,
		classes:   classes,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "test_service").Logger(),
	}
}

func (s *testService) Create(ctx context.Context, payload dto.TestCreateRequest) (dto.TestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TestResponse{}, err
	}

	if _, err := s.classes.GetByID(ctx, payload.ClassID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResponse{}, ErrClassNotFound
		}
		return dto.TestResponse{}, err
	}

	test := models.Test{
		Title:       plainText(s.sanitizer, payload.Title),
		Description: plainText(s.sanitizer, payload.Description),
		ClassID:     payload.ClassID,
		Questions:   make([]models.Question, 0, len(payload.Questions)),
	}

	for i, question := range payload.Questions {
		options := question.Options
		if options == nil {
			options = []string{}
		}
		encoded, err := json.Marshal(options)
		if err != nil {
			return dto.TestResponse{}, err
		}

		test.Questions = append(test.Questions, models.Question{
			Prompt:   plainText(s.sanitizer, question.Prompt),
			Points:   question.Points,
			Position: i + 1,
			Options:  datatypes.JSON(encoded),
		})
	}

	if err := s.tests.Create(ctx, &test); err != nil {
		return dto.TestResponse{}, err
	}

	s.logger.Info().Uint("test_id", test.ID).Uint("class_id", test.ClassID).Int("questions", len(test.Questions)).Msg("test created")

	return dto.NewTestResponse(test), nil
}

func (s *testService) Get(ctx context.Context, id uint) (dto.TestResponse, error) {
	test, err := s.tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResponse{}, ErrTestNotFound
		}
		return dto.TestResponse{}, err
	}

	return dto.NewTestResponse(test), nil
}

func (s *testService) List(ctx context.Context, classID uint) ([]dto.TestResponse, error) {
	var filter *uint
	if classID > 0 {
		filter = &classID
	}

	tests, err := s.tests.ListByClass(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewTestResponseSlice(tests), nil
}
