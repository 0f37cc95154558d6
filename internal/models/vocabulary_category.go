package models

import "time"

// VocabularyCategory groups vocabulary entries under a named, optionally coloured label.
type VocabularyCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;index:idx_vocabulary_categories_name_lower,unique,expression:LOWER(name)" json:"name"`
	ColorCode *string   `gorm:"size:7" json:"color_code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
