package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-classroom-api/internal/dto"
	"github.com/noah-isme/gema-classroom-api/internal/models"
	"github.com/noah-isme/gema-classroom-api/internal/repository"
)

var (
	// ErrAssignmentNotFound indicates the requested assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrInvalidDueDate indicates the due date could not be parsed or is not in the future.
	ErrInvalidDueDate = errors.New("due date must be a future RFC3339 timestamp")
)

// AssignmentService exposes the assignment use cases built on top of the factory.
type AssignmentService interface {
	AssignTest(ctx context.Context, testID uint, payload dto.AssignTestRequest, actor ActivityActor) (dto.AssignTestResponse, error)
	Sync(ctx context.Context, id uint, actor ActivityActor) (dto.AssignmentSyncResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	List(ctx context.Context, req dto.AssignmentListRequest) (dto.AssignmentListResponse, error)
	Progress(ctx context.Context, id uint) (dto.AssignmentProgressResponse, error)
	ListStudentAssignments(ctx context.Context, id uint) ([]dto.StudentAssignmentResponse, error)
}

type assignmentService struct {
	tests              repository.TestRepository
	assignments        repository.AssignmentRepository
	studentAssignments repository.StudentAssignmentRepository
	factory            AssignmentFactory
	events             AssignmentEventPublisher
	activity           ActivityRecorder
	cache              progressCache
	validator          *validator.Validate
	sanitizer          *bluemonday.Policy
	logger             zerolog.Logger
	now                func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(
	tests repository.TestRepository,
	assignments repository.AssignmentRepository,
	studentAssignments repository.StudentAssignmentRepository,
	factory AssignmentFactory,
	events AssignmentEventPublisher,
	activity ActivityRecorder,
	cache *redis.Client,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger zerolog.Logger,
) AssignmentService {
	serviceLogger := logger.With().Str("component", "assignment_service").Logger()
	return &assignmentService{
		tests:              tests,
		assignments:        assignments,
		studentAssignments: studentAssignments,
		factory:            factory,
		events:             events,
		activity:           activity,
		cache:              newProgressCache(cache, cacheTTL, serviceLogger),
		validator:          validate,
		sanitizer:          bluemonday.StrictPolicy(),
		logger:             serviceLogger,
		now:                time.Now,
	}
}

func (s *assignmentService) AssignTest(ctx context.Context, testID uint, payload dto.AssignTestRequest, actor ActivityActor) (dto.AssignTestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignTestResponse{}, err
	}

	opts, err := s.buildOptions(payload)
	if err != nil {
		return dto.AssignTestResponse{}, err
	}

	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignTestResponse{}, ErrTestNotFound
		}
		return dto.AssignTestResponse{}, err
	}

	assignment, err := s.factory.CreateFromTest(ctx, test, opts)
	if err != nil {
		return dto.AssignTestResponse{}, err
	}

	created, err := s.factory.CreateStudentAssignments(ctx, assignment)
	if err != nil {
		s.logger.Error().
			Err(err).
			Uint("assignment_id", assignment.ID).
			Msg("assignment stored without student records; retry with sync")
		return dto.AssignTestResponse{}, &AssignmentFanoutError{AssignmentID: assignment.ID, Err: err}
	}

	s.cache.invalidate(ctx, assignment.ID)
	s.publish(ctx, assignment, created)
	s.record(ctx, actor, AssignmentPublishedEventType, assignment.ID, map[string]interface{}{
		"test_id":  assignment.TestID,
		"class_id": assignment.ClassID,
		"created":  created,
	})

	return dto.AssignTestResponse{
		Assignment:                dto.NewAssignmentResponse(assignment),
		StudentAssignmentsCreated: created,
	}, nil
}

func (s *assignmentService) Sync(ctx context.Context, id uint, actor ActivityActor) (dto.AssignmentSyncResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentSyncResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentSyncResponse{}, err
	}

	created, err := s.factory.CreateStudentAssignments(ctx, assignment)
	if err != nil {
		return dto.AssignmentSyncResponse{}, err
	}

	if created > 0 {
		s.cache.invalidate(ctx, assignment.ID)
		s.publish(ctx, assignment, created)
	}
	s.record(ctx, actor, "assignment.synced", assignment.ID, map[string]interface{}{"created": created})

	return dto.AssignmentSyncResponse{AssignmentID: assignment.ID, Created: created}, nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) List(ctx context.Context, req dto.AssignmentListRequest) (dto.AssignmentListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AssignmentListResponse{}, err
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	filter := repository.AssignmentFilter{
		Search:   strings.TrimSpace(req.Search),
		Sort:     req.Sort,
		Page:     page,
		PageSize: pageSize,
	}
	if req.ClassID > 0 {
		filter.ClassID = &req.ClassID
	}
	if req.TestID > 0 {
		filter.TestID = &req.TestID
	}

	assignments, total, err := s.assignments.ListWithFilter(ctx, filter)
	if err != nil {
		return dto.AssignmentListResponse{}, err
	}

	return dto.AssignmentListResponse{
		Items:      dto.NewAssignmentResponseSlice(assignments),
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
		Search:     filter.Search,
	}, nil
}

func (s *assignmentService) Progress(ctx context.Context, id uint) (dto.AssignmentProgressResponse, error) {
	if cached, ok := s.cache.get(ctx, id); ok {
		cached.CacheHit = true
		return cached, nil
	}

	if _, err := s.assignments.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentProgressResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentProgressResponse{}, err
	}

	counts, err := s.studentAssignments.CountByStatus(ctx, id)
	if err != nil {
		return dto.AssignmentProgressResponse{}, err
	}

	response := dto.AssignmentProgressResponse{
		AssignmentID: id,
		Counts:       make(map[string]int64, len(models.StudentAssignmentStatuses)),
		GeneratedAt:  s.now().UTC(),
	}
	for _, status := range models.StudentAssignmentStatuses {
		response.Counts[status] = counts[status]
		response.Total += counts[status]
	}
	if response.Total > 0 {
		response.CompletionRate = float64(response.Counts[models.StudentAssignmentStatusGraded]) / float64(response.Total)
	}

	s.cache.set(ctx, response)

	return response, nil
}

func (s *assignmentService) ListStudentAssignments(ctx context.Context, id uint) ([]dto.StudentAssignmentResponse, error) {
	if _, err := s.assignments.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	records, err := s.studentAssignments.ListByAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentAssignmentResponseSlice(records), nil
}

func (s *assignmentService) buildOptions(payload dto.AssignTestRequest) (AssignmentOptions, error) {
	var opts AssignmentOptions

	if payload.DueDate != nil && strings.TrimSpace(*payload.DueDate) != "" {
		due, err := time.Parse(time.RFC3339, strings.TrimSpace(*payload.DueDate))
		if err != nil {
			return AssignmentOptions{}, fmt.Errorf("%w: %v", ErrInvalidDueDate, err)
		}
		if !due.After(s.now()) {
			return AssignmentOptions{}, ErrInvalidDueDate
		}
		due = due.UTC()
		opts.DueDate = &due
	}

	if payload.Instructions != nil {
		opts.Instructions = plainText(s.sanitizer, *payload.Instructions)
	}

	return opts, nil
}

func (s *assignmentService) publish(ctx context.Context, assignment models.Assignment, created int) {
	if s.events == nil {
		return
	}

	event := AssignmentEvent{
		Type:         AssignmentPublishedEventType,
		AssignmentID: assignment.ID,
		ClassID:      assignment.ClassID,
		TestID:       assignment.TestID,
		Created:      created,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("assignment_id", assignment.ID).Msg("failed to publish assignment event")
	}
}

func (s *assignmentService) record(ctx context.Context, actor ActivityActor, action string, assignmentID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	entityID := assignmentID
	if _, err := s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: "assignment",
		EntityID:   &entityID,
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Uint("assignment_id", assignmentID).Msg("failed to record assignment activity")
	}
}
