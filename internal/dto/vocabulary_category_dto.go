package dto

import (
	"time"

	"github.com/noah-isme/gema-classroom-api/internal/models"
)

// VocabularyCategoryRequest is used for both creating and updating a category.
type VocabularyCategoryRequest struct {
	Name      string  `json:"name" validate:"required,max=255"`
	ColorCode *string `json:"color_code" validate:"omitempty,max=7"`
}

// VocabularyCategoryResponse serializes a vocabulary category.
type VocabularyCategoryResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	ColorCode *string   `json:"color_code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewVocabularyCategoryResponse converts a model into a DTO.
func NewVocabularyCategoryResponse(model models.VocabularyCategory) VocabularyCategoryResponse {
	return VocabularyCategoryResponse{
		ID:        model.ID,
		Name:      model.Name,
		ColorCode: model.ColorCode,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewVocabularyCategoryResponseSlice converts a slice of models into DTOs.
func NewVocabularyCategoryResponseSlice(categories []models.VocabularyCategory) []VocabularyCategoryResponse {
	responses := make([]VocabularyCategoryResponse, 0, len(categories))
	for _, category := range categories {
		responses = append(responses, NewVocabularyCategoryResponse(category))
	}
	return responses
}
