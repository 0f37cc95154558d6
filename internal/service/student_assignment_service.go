package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-classroom-api/internal/dto"
	"github.com/noah-isme/gema-classroom-api/internal/models"
	"github.com/noah-isme/gema-classroom-api/internal/repository"
)

var (
	// ErrStudentAssignmentNotFound indicates the requested student assignment does not exist.
	ErrStudentAssignmentNotFound = errors.New("student assignment not found")
	// ErrInvalidStatusTransition indicates the requested status cannot follow the current one.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrScoreRequired indicates grading was requested without a score.
	ErrScoreRequired = errors.New("score is required when grading")
	// ErrScoreOutOfRange indicates the score exceeds the test's total points.
	ErrScoreOutOfRange = errors.New("score exceeds the test's total points")
)

var studentAssignmentTransitions = map[string][]string{
	models.StudentAssignmentStatusAssigned:   {models.StudentAssignmentStatusInProgress, models.StudentAssignmentStatusSubmitted},
	models.StudentAssignmentStatusInProgress: {models.StudentAssignmentStatusSubmitted},
	models.StudentAssignmentStatusSubmitted:  {models.StudentAssignmentStatusGraded},
}

// StudentAssignmentService moves student assignments through their lifecycle.
type StudentAssignmentService interface {
	UpdateStatus(ctx context.Context, id uint, payload dto.StudentAssignmentStatusRequest) (dto.StudentAssignmentResponse, error)
}

type studentAssignmentService struct {
	records     repository.StudentAssignmentRepository
	assignments repository.AssignmentRepository
	tests       repository.TestRepository
	cache       progressCache
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewStudentAssignmentService constructs the student assignment service.
func NewStudentAssignmentService(
	records repository.StudentAssignmentRepository,
	assignments repository.AssignmentRepository,
	tests repository.TestRepository,
	cache *redis.Client,
	validate *validator.Validate,
	logger zerolog.Logger,
) StudentAssignmentService {
	serviceLogger := logger.With().Str("component", "student_assignment_service").Logger()
	return &studentAssignmentService{
		records:     records,
		assignments: assignments,
		tests:       tests,
		cache:       newProgressCache(cache, 0, serviceLogger),
		validator:   validate,
		logger:      serviceLogger,
		now:         time.Now,
	}
}

func (s *studentAssignmentService) UpdateStatus(ctx context.Context, id uint, payload dto.StudentAssignmentStatusRequest) (dto.StudentAssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentAssignmentResponse{}, err
	}

	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentAssignmentResponse{}, ErrStudentAssignmentNotFound
		}
		return dto.StudentAssignmentResponse{}, err
	}

	if !canTransition(record.Status, payload.Status) {
		return dto.StudentAssignmentResponse{}, ErrInvalidStatusTransition
	}

	now := s.now().UTC()
	switch payload.Status {
	case models.StudentAssignmentStatusInProgress:
		record.StartedAt = &now
	case models.StudentAssignmentStatusSubmitted:
		if record.StartedAt == nil {
			record.StartedAt = &now
		}
		record.SubmittedAt = &now
	case models.StudentAssignmentStatusGraded:
		if err := s.validateScore(ctx, record.AssignmentID, payload.Score); err != nil {
			return dto.StudentAssignmentResponse{}, err
		}
		score := *payload.Score
		record.Score = &score
		record.GradedAt = &now
	}
	record.Status = payload.Status

	if err := s.records.Update(ctx, &record); err != nil {
		return dto.StudentAssignmentResponse{}, err
	}

	s.cache.invalidate(ctx, record.AssignmentID)
	s.logger.Info().
		Uint("student_assignment_id", record.ID).
		Uint("assignment_id", record.AssignmentID).
		Str("status", record.Status).
		Msg("student assignment status updated")

	return dto.NewStudentAssignmentResponse(record), nil
}

func (s *studentAssignmentService) validateScore(ctx context.Context, assignmentID uint, score *float64) error {
	if score == nil {
		return ErrScoreRequired
	}
	if *score < 0 {
		return ErrScoreOutOfRange
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	test, err := s.tests.GetByID(ctx, assignment.TestID)
	if err != nil {
		return err
	}

	if total := test.TotalPoints(); total > 0 && *score > total {
		return ErrScoreOutOfRange
	}
	return nil
}

func canTransition(from, to string) bool {
	for _, allowed := range studentAssignmentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
