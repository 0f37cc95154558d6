package models

import "time"

// Assignment is a scheduled instantiation of a test for the test's class.
type Assignment struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	TestID       uint       `gorm:"not null;index" json:"test_id"`
	ClassID      uint       `gorm:"not null;index" json:"class_id"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	DueDate      *time.Time `json:"due_date"`
	Instructions string     `gorm:"type:text" json:"instructions"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsPastDue returns true when the assignment has a deadline and it has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	if a.DueDate == nil {
		return false
	}
	return reference.After(*a.DueDate)
}
