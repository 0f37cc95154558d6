package models

import "time"

const (
	// StudentAssignmentStatusAssigned is the initial state created by the fan-out.
	StudentAssignmentStatusAssigned = "assigned"
	// StudentAssignmentStatusInProgress indicates the student opened the attempt.
	StudentAssignmentStatusInProgress = "in_progress"
	// StudentAssignmentStatusSubmitted indicates the attempt was handed in.
	StudentAssignmentStatusSubmitted = "submitted"
	// StudentAssignmentStatusGraded indicates the attempt has a final score.
	StudentAssignmentStatusGraded = "graded"
)

// StudentAssignmentStatuses lists every status in lifecycle order.
var StudentAssignmentStatuses = []string{
	StudentAssignmentStatusAssigned,
	StudentAssignmentStatusInProgress,
	StudentAssignmentStatusSubmitted,
	StudentAssignmentStatusGraded,
}

// StudentAssignment is one student's attempt record for an assignment.
type StudentAssignment struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_student_assignment_pair" json:"assignment_id"`
	StudentID    uint       `gorm:"not null;uniqueIndex:idx_student_assignment_pair;index" json:"student_id"`
	Status       string     `gorm:"size:32;not null;default:assigned" json:"status"`
	Score        *float64   `json:"score"`
	StartedAt    *time.Time `json:"started_at"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	GradedAt     *time.Time `json:"graded_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Assignment   Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student      Student    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsGraded reports whether the attempt has a final score.
func (s StudentAssignment) IsGraded() bool {
	return s.Status == StudentAssignmentStatusGraded
}
