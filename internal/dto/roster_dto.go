package dto

import (
	"time"

	"github.com/noah-isme/gema-classroom-api/internal/models"
)

// ClassCreateRequest describes the payload for creating a class.
type ClassCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// ClassResponse serializes a class.
type ClassResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// StudentCreateRequest describes the payload for registering a student.
type StudentCreateRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// StudentResponse serializes a student.
type StudentResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EnrollmentRequest enrolls an existing student into a class.
type EnrollmentRequest struct {
	StudentID uint `json:"student_id" validate:"required"`
}

// EnrollmentResponse serializes an enrollment.
type EnrollmentResponse struct {
	ClassID   uint       `json:"class_id"`
	StudentID uint       `json:"student_id"`
	Status    string     `json:"status"`
	JoinedAt  time.Time  `json:"joined_at"`
	LeftAt    *time.Time `json:"left_at,omitempty"`
}

// NewClassResponse converts a model into a DTO.
func NewClassResponse(model models.Class) ClassResponse {
	return ClassResponse{ID: model.ID, Name: model.Name, CreatedAt: model.CreatedAt}
}

// NewStudentResponse converts a model into a DTO.
func NewStudentResponse(model models.Student) StudentResponse {
	return StudentResponse{ID: model.ID, Name: model.Name, Email: model.Email}
}

// NewStudentResponseSlice converts a slice of models into DTOs.
func NewStudentResponseSlice(students []models.Student) []StudentResponse {
	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, NewStudentResponse(student))
	}
	return responses
}

// NewEnrollmentResponse converts a model into a DTO.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ClassID:   model.ClassID,
		StudentID: model.StudentID,
		Status:    string(model.Status),
		JoinedAt:  model.JoinedAt,
		LeftAt:    model.LeftAt,
	}
}
