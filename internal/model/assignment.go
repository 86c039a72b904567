package model

import "time"

// AssignmentStatus is the lifecycle state of an Assignment.
type AssignmentStatus string

const (
	AssignmentStatusPending    AssignmentStatus = "PENDING"
	AssignmentStatusInProgress AssignmentStatus = "IN_PROGRESS"
	AssignmentStatusCompleted AssignmentStatus = "COMPLETED"
	AssignmentStatusExpired   AssignmentStatus = "EXPIRED"
	AssignmentStatusCancelled AssignmentStatus = "CANCELLED"
)

// TestTakerKind distinguishes who the assignment was issued to. The core
// never branches on it; it is carried for the external catalog/reporting
// collaborators.
type TestTakerKind string

// Assignment is the persisted shape of the aggregate root.
// Behavior (state transitions, invariants) lives on domain.Assignment in
// internal/domain; this struct is the plain data the repository loads and
// saves.
type Assignment struct {
	ID            string
	TemplateID    string
	TestTakerID   string
	TestTakerKind TestTakerKind
	DueAt         *time.Time
	Status        AssignmentStatus
	Notes         string
}
