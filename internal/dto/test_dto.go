package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/gema-classroom-api/internal/models"
)

// QuestionRequest describes a single question in a test payload.
type QuestionRequest struct {
	Prompt  string   `json:"prompt" validate:"required,min=1,max=5000"`
	Points  float64  `json:"points" validate:"gte=0,lte=1000"`
	Options []string `json:"options" validate:"omitempty,max=10,dive,required,max=500"`
}

// TestCreateRequest describes the payload for creating a test template.
type TestCreateRequest struct {
	Title       string            `json:"title" validate:"required,min=3,max=255"`
	Description string            `json:"description" validate:"omitempty,max=5000"`
	ClassID     uint              `json:"class_id" validate:"required"`
	Questions   []QuestionRequest `json:"questions" validate:"required,min=1,max=200,dive"`
}

// QuestionResponse serializes a question.
type QuestionResponse struct {
	ID       uint     `json:"id"`
	Prompt   string   `json:"prompt"`
	Points   float64  `json:"points"`
	Position int      `json:"position"`
	Options  []string `json:"options"`
}

// TestResponse serializes a test template with its questions.
type TestResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	ClassID     uint               `json:"class_id"`
	TotalPoints float64            `json:"total_points"`
	Questions   []QuestionResponse `json:"questions"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// NewTestResponse converts a model into a DTO.
func NewTestResponse(model models.Test) TestResponse {
	questions := make([]QuestionResponse, 0, len(model.Questions))
	for _, question := range model.Questions {
		options := []string{}
		if len(question.Options) > 0 {
			_ = json.Unmarshal(question.Options, &options)
		}
		questions = append(questions, QuestionResponse{
			ID:       question.ID,
			Prompt:   question.Prompt,
			Points:   question.Points,
			Position: question.Position,
			Options:  options,
		})
	}

	return TestResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		ClassID:     model.ClassID,
		TotalPoints: model.TotalPoints(),
		Questions:   questions,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewTestResponseSlice converts a slice of models into DTOs.
func NewTestResponseSlice(tests []models.Test) []TestResponse {
	responses := make([]TestResponse, 0, len(tests))
	for _, test := range tests {
		responses = append(responses, NewTestResponse(test))
	}
	return responses
}
