package dto

import (
	"time"

	"github.com/noah-isme/gema-classroom-api/internal/models"
)

// AssignTestRequest describes the payload for assigning a test to its class.
type AssignTestRequest struct {
	DueDate      *string `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Instructions *string `json:"instructions" validate:"omitempty,max=5000"`
}

// AssignmentListRequest captures filters for listing assignments.
type AssignmentListRequest struct {
	ClassID  uint   `validate:"omitempty"`
	TestID   uint   `validate:"omitempty"`
	Search   string `validate:"omitempty,max=100"`
	Sort     string `validate:"omitempty,max=32"`
	Page     int    `validate:"omitempty,min=1"`
	PageSize int    `validate:"omitempty,min=1,max=100"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID           uint       `json:"id"`
	TestID       uint       `json:"test_id"`
	ClassID      uint       `json:"class_id"`
	Title        string     `json:"title"`
	DueDate      *time.Time `json:"due_date"`
	Instructions string     `json:"instructions"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AssignTestResponse reports the created assignment and the size of its fan-out.
type AssignTestResponse struct {
	Assignment                AssignmentResponse `json:"assignment"`
	StudentAssignmentsCreated int                `json:"student_assignments_created"`
}

// AssignmentSyncResponse reports how many student records a re-sync added.
type AssignmentSyncResponse struct {
	AssignmentID uint `json:"assignment_id"`
	Created      int  `json:"created"`
}

// AssignmentListResponse wraps paginated assignments.
type AssignmentListResponse struct {
	Items      []AssignmentResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
	Search     string               `json:"search,omitempty"`
}

// AssignmentProgressResponse summarises student assignment states for one assignment.
type AssignmentProgressResponse struct {
	AssignmentID   uint             `json:"assignment_id"`
	Total          int64            `json:"total"`
	Counts         map[string]int64 `json:"counts"`
	CompletionRate float64          `json:"completion_rate"`
	GeneratedAt    time.Time        `json:"generated_at"`
	CacheHit       bool             `json:"cache_hit"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:           model.ID,
		TestID:       model.TestID,
		ClassID:      model.ClassID,
		Title:        model.Title,
		DueDate:      model.DueDate,
		Instructions: model.Instructions,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
