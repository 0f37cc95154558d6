package service

import (
	"errors"
	"fmt"
)

// FailureKind classifies why an assignment factory operation failed.
type FailureKind string

const (
	// FailureInvalidInput means the test or assignment handed to the factory is absent or unpersisted.
	FailureInvalidInput FailureKind = "invalid_input"
	// FailurePersistence means storage rejected a read or write of factory-owned records.
	FailurePersistence FailureKind = "persistence_failure"
	// FailureDependency means a collaborator lookup (tests, enrollments) failed.
	FailureDependency FailureKind = "dependency_failure"
)

// Sentinels matched by errors.Is against *AssignmentError.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrPersistenceFailure = errors.New("persistence failure")
	ErrDependencyFailure  = errors.New("dependency failure")
)

// AssignmentError is the typed failure returned by AssignmentFactory operations.
type AssignmentError struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (e *AssignmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AssignmentError) Unwrap() error {
	return e.Err
}

// Is lets callers use errors.Is(err, ErrInvalidInput) and friends.
func (e *AssignmentError) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Kind == FailureInvalidInput
	case ErrPersistenceFailure:
		return e.Kind == FailurePersistence
	case ErrDependencyFailure:
		return e.Kind == FailureDependency
	default:
		return false
	}
}

func invalidInput(message string, err error) *AssignmentError {
	return &AssignmentError{Kind: FailureInvalidInput, Message: message, Err: err}
}

func persistenceFailure(message string, err error) *AssignmentError {
	return &AssignmentError{Kind: FailurePersistence, Message: message, Err: err}
}

func dependencyFailure(message string, err error) *AssignmentError {
	return &AssignmentError{Kind: FailureDependency, Message: message, Err: err}
}

// FailureKindOf extracts the failure kind from err, or "" when err is not an *AssignmentError.
func FailureKindOf(err error) FailureKind {
	var assignmentErr *AssignmentError
	if errors.As(err, &assignmentErr) {
		return assignmentErr.Kind
	}
	return ""
}

// AssignmentFanoutError reports an assignment that was stored while its student records were not.
// POST /assignments/:id/sync repeats the fan-out for AssignmentID.
type AssignmentFanoutError struct {
	AssignmentID uint
	Err          error
}

func (e *AssignmentFanoutError) Error() string {
	return fmt.Sprintf("assignment %d stored without student records: %v", e.AssignmentID, e.Err)
}

func (e *AssignmentFanoutError) Unwrap() error {
	return e.Err
}
