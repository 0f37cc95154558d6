package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive      EnrollmentStatus = "ACTIVE"
	EnrollmentStatusTransferred EnrollmentStatus = "TRANSFERRED"
	EnrollmentStatusLeft        EnrollmentStatus = "LEFT"
)

// Enrollment captures a student's registration to a class.
type Enrollment struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	ClassID   uint             `gorm:"not null;uniqueIndex:idx_enrollment_class_student" json:"class_id"`
	StudentID uint             `gorm:"not null;uniqueIndex:idx_enrollment_class_student" json:"student_id"`
	Status    EnrollmentStatus `gorm:"size:16;not null;index" json:"status"`
	JoinedAt  time.Time        `gorm:"not null" json:"joined_at"`
	LeftAt    *time.Time       `json:"left_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Student   Student          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsActive reports whether the student currently belongs to the class.
func (e Enrollment) IsActive() bool {
	return e.Status == EnrollmentStatusActive
}
