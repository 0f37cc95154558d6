package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-classroom-api/internal/dto"
	"github.com/noah-isme/gema-classroom-api/internal/models"
	"github.com/noah-isme/gema-classroom-api/internal/repository"
)

var (
	// ErrClassNotFound indicates the requested class does not exist.
	ErrClassNotFound = errors.New("class not found")
	// ErrStudentNotFound indicates the requested student does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrStudentEmailTaken indicates another student already registered the email.
	ErrStudentEmailTaken = errors.New("student email already registered")
	// ErrEnrollmentNotFound indicates the student is not actively enrolled in the class.
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

// RosterService manages classes, students, and enrollments.
type RosterService interface {
	CreateClass(ctx context.Context, payload dto.ClassCreateRequest) (dto.ClassResponse, error)
	CreateStudent(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error)
	Enroll(ctx context.Context, classID uint, payload dto.EnrollmentRequest) (dto.EnrollmentResponse, error)
	Withdraw(ctx context.Context, classID, studentID uint) error
	ListStudents(ctx context.Context, classID uint) ([]dto.StudentResponse, error)
}

type rosterService struct {
	classes     repository.ClassRepository
	students    repository.StudentRepository
	enrollments repository.EnrollmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewRosterService constructs the roster service.
func NewRosterService(classes repository.ClassRepository, students repository.StudentRepository, enrollments repository.EnrollmentRepository, validate *validator.Validate, logger zerolog.Logger) RosterService {
	return &rosterService{
		classes:     classes,
		students:    students,
		enrollments: enrollments,
		validator:   validate,
		logger:      logger.With().Str("component", "roster_service").Logger(),
		now:         time.Now,
	}
}

func (s *rosterService) CreateClass(ctx context.Context, payload dto.ClassCreateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class := models.Class{Name: strings.TrimSpace(payload.Name)}
	if err := s.classes.Create(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class), nil
}

func (s *rosterService) CreateStudent(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	exists, err := s.students.ExistsByEmail(ctx, email)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	if exists {
		return dto.StudentResponse{}, ErrStudentEmailTaken
	}

	student := models.Student{Name: strings.TrimSpace(payload.Name), Email: email}
	if err := s.students.Create(ctx, &student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.StudentResponse{}, ErrStudentEmailTaken
		}
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

func (s *rosterService) Enroll(ctx context.Context, classID uint, payload dto.EnrollmentRequest) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	if err := s.ensureClass(ctx, classID); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	if _, err := s.students.GetByID(ctx, payload.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrStudentNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	enrollment := models.Enrollment{
		ClassID:   classID,
		StudentID: payload.StudentID,
		Status:    models.EnrollmentStatusActive,
		JoinedAt:  s.now().UTC(),
	}
	if err := s.enrollments.Enroll(ctx, &enrollment); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	s.logger.Info().Uint("class_id", classID).Uint("student_id", payload.StudentID).Msg("student enrolled")

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *rosterService) Withdraw(ctx context.Context, classID, studentID uint) error {
	if err := s.enrollments.Withdraw(ctx, classID, studentID, s.now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("class_id", classID).Uint("student_id", studentID).Msg("student withdrawn")
	return nil
}

func (s *rosterService) ListStudents(ctx context.Context, classID uint) ([]dto.StudentResponse, error) {
	if err := s.ensureClass(ctx, classID); err != nil {
		return nil, err
	}

	students, err := s.enrollments.ListActiveStudents(ctx, classID)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}

func (s *rosterService) ensureClass(ctx context.Context, classID uint) error {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	return nil
}
