package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-classroom-api/internal/models"
	"github.com/noah-isme/gema-classroom-api/internal/observability"
	"github.com/noah-isme/gema-classroom-api/internal/repository"
)

// AssignmentOptions carries the optional settings applied when an assignment is created from a test.
type AssignmentOptions struct {
	// DueDate is stored as-is; nil means the assignment has no deadline.
	DueDate *time.Time
	// Instructions is stored verbatim; empty when not provided.
	Instructions string
}

// AssignmentFactory turns tests into assignments and fans assignments out to enrolled students.
type AssignmentFactory interface {
	// CreateFromTest persists a new assignment for the test's class.
	CreateFromTest(ctx context.Context, test models.Test, opts AssignmentOptions) (models.Assignment, error)
	// CreateStudentAssignments creates one record per actively enrolled student that does not have one
	// yet and returns how many were created by this call.
	CreateStudentAssignments(ctx context.Context, assignment models.Assignment) (int, error)
}

type assignmentFactory struct {
	tests              repository.TestRepository
	assignments        repository.AssignmentRepository
	enrollments        repository.EnrollmentRepository
	studentAssignments repository.StudentAssignmentRepository
	logger             zerolog.Logger
	tracer             trace.Tracer
	now                func() time.Time
}

// NewAssignmentFactory builds the default factory backed by the given repositories.
func NewAssignmentFactory(
	tests repository.TestRepository,
	assignments repository.AssignmentRepository,
	enrollments repository.EnrollmentRepository,
	studentAssignments repository.StudentAssignmentRepository,
	logger zerolog.Logger,
) AssignmentFactory {
	return &assignmentFactory{
		tests:              tests,
		assignments:        assignments,
		enrollments:        enrollments,
		studentAssignments: studentAssignments,
		logger:             logger.With().Str("component", "assignment_factory").Logger(),
		tracer:             otel.Tracer("github.com/noah-isme/gema-classroom-api/internal/service/assignment_factory"),
		now:                time.Now,
	}
}

func (f *assignmentFactory) CreateFromTest(ctx context.Context, test models.Test, opts AssignmentOptions) (models.Assignment, error) {
	spanCtx, span := f.tracer.Start(ctx, "assignments.create_from_test", trace.WithAttributes(
		attribute.Int64("test.id", int64(test.ID)),
	))
	defer span.End()

	assignment, err := f.createFromTest(spanCtx, test, opts)
	if err != nil {
		f.fail(span, "create_from_test", err)
		return models.Assignment{}, err
	}

	span.SetAttributes(attribute.Int64("assignment.id", int64(assignment.ID)))
	observability.AssignmentsCreated().Inc()
	f.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("test_id", assignment.TestID).
		Uint("class_id", assignment.ClassID).
		Msg("assignment created from test")

	return assignment, nil
}

func (f *assignmentFactory) createFromTest(ctx context.Context, test models.Test, opts AssignmentOptions) (models.Assignment, error) {
	if test.ID == 0 {
		return models.Assignment{}, invalidInput("test must be an existing record", nil)
	}

	stored, err := f.tests.GetByID(ctx, test.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, invalidInput("test does not exist", err)
		}
		return models.Assignment{}, dependencyFailure("failed to load test", err)
	}

	if stored.ClassID == 0 {
		return models.Assignment{}, invalidInput("test is not attached to a class", nil)
	}

	assignment := models.Assignment{
		TestID:       stored.ID,
		ClassID:      stored.ClassID,
		Title:        stored.Title,
		Instructions: opts.Instructions,
	}
	if opts.DueDate != nil {
		due := *opts.DueDate
		assignment.DueDate = &due
	}

	if err := f.assignments.Create(ctx, &assignment); err != nil {
		return models.Assignment{}, persistenceFailure("failed to store assignment", err)
	}

	return assignment, nil
}

func (f *assignmentFactory) CreateStudentAssignments(ctx context.Context, assignment models.Assignment) (int, error) {
	spanCtx, span := f.tracer.Start(ctx, "assignments.create_student_assignments", trace.WithAttributes(
		attribute.Int64("assignment.id", int64(assignment.ID)),
	))
	defer span.End()

	started := f.now()
	created, err := f.createStudentAssignments(spanCtx, assignment)
	if err != nil {
		f.fail(span, "create_student_assignments", err)
		return 0, err
	}
	observability.FanoutDuration().Observe(f.now().Sub(started).Seconds())

	span.SetAttributes(attribute.Int("student_assignments.created", created))
	observability.StudentAssignmentsCreated().Add(float64(created))
	f.logger.Info().
		Uint("assignment_id", assignment.ID).
		Int("created", created).
		Msg("student assignments generated")

	return created, nil
}

func (f *assignmentFactory) createStudentAssignments(ctx context.Context, assignment models.Assignment) (int, error) {
	if assignment.ID == 0 {
		return 0, invalidInput("assignment must be an existing record", nil)
	}

	stored, err := f.assignments.GetByID(ctx, assignment.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, invalidInput("assignment does not exist", err)
		}
		return 0, persistenceFailure("failed to load assignment", err)
	}

	studentIDs, err := f.enrollments.ListActiveStudentIDs(ctx, stored.ClassID)
	if err != nil {
		return 0, dependencyFailure("failed to resolve enrolled students", err)
	}

	if len(studentIDs) == 0 {
		return 0, nil
	}

	created, err := f.studentAssignments.CreateMissing(ctx, stored.ID, studentIDs)
	if err != nil {
		return 0, persistenceFailure("failed to store student assignments", err)
	}

	return created, nil
}

func (f *assignmentFactory) fail(span trace.Span, operation string, err error) {
	kind := FailureKindOf(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, string(kind))
	observability.AssignmentFailures().WithLabelValues(operation, string(kind)).Inc()

	event := f.logger.Warn()
	if kind != FailureInvalidInput {
		event = f.logger.Error()
	}
	event.Err(err).Str("operation", operation).Str("kind", string(kind)).Msg("assignment factory failure")
}
