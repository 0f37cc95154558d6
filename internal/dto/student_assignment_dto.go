package dto

import (
	"time"

	"github.com/noah-isme/gema-classroom-api/internal/models"
)

// StudentAssignmentStatusRequest moves a student assignment to its next state.
type StudentAssignmentStatusRequest struct {
	Status string   `json:"status" validate:"required,oneof=in_progress submitted graded"`
	Score  *float64 `json:"score" validate:"omitempty,gte=0"`
}

// StudentAssignmentResponse serializes a student's attempt record.
type StudentAssignmentResponse struct {
	ID           uint       `json:"id"`
	AssignmentID uint       `json:"assignment_id"`
	StudentID    uint       `json:"student_id"`
	StudentName  string     `json:"student_name,omitempty"`
	Status       string     `json:"status"`
	Score        *float64   `json:"score"`
	StartedAt    *time.Time `json:"started_at"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	GradedAt     *time.Time `json:"graded_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewStudentAssignmentResponse converts a model into a DTO.
func NewStudentAssignmentResponse(model models.StudentAssignment) StudentAssignmentResponse {
	return StudentAssignmentResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		StudentName:  model.Student.Name,
		Status:       model.Status,
		Score:        model.Score,
		StartedAt:    model.StartedAt,
		SubmittedAt:  model.SubmittedAt,
		GradedAt:     model.GradedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewStudentAssignmentResponseSlice converts a slice of models into DTOs.
func NewStudentAssignmentResponseSlice(records []models.StudentAssignment) []StudentAssignmentResponse {
	responses := make([]StudentAssignmentResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewStudentAssignmentResponse(record))
	}
	return responses
}
