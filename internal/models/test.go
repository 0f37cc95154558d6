package models

import (
	"time"

	"gorm.io/datatypes"
)

// Test is a reusable quiz or exam template written for a class.
type Test struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	ClassID     uint       `gorm:"not null;index" json:"class_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Questions   []Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
}

// TotalPoints sums the points of every question on the test.
func (t Test) TotalPoints() float64 {
	var total float64
	for _, question := range t.Questions {
		total += question.Points
	}
	return total
}

// Question is a single prompt on a test.
type Question struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TestID    uint           `gorm:"not null;index" json:"test_id"`
	Prompt    string         `gorm:"type:text;not null" json:"prompt"`
	Points    float64        `gorm:"not null" json:"points"`
	Position  int            `gorm:"not null" json:"position"`
	Options   datatypes.JSON `gorm:"type:json" json:"options"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
