package model

import "time"

// SessionStatus is the lifecycle state of a Session.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
	SessionStatusCancelled  SessionStatus = "CANCELLED"
	SessionStatusExpired    SessionStatus = "EXPIRED"
)

// Session is the persisted shape of the aggregate's child entity.
// Rubric/Template snapshots are captured at start time so later catalog
// edits can't retroactively change scoring.
type Session struct {
	ID                string
	AssignmentID      string
	Status            SessionStatus
	CurrentAbility    float64
	StandardError     *float64
	QuestionsAnswered int
	StartedAt         time.Time
	ExpiresAt         time.Time
	CompletedAt       *time.Time
	RubricSnapshot    Rubric
	TemplateSnapshot  TemplateSnapshot
	Responses         []Response
}

// TemplateSnapshot freezes the subset of Template fields the session needs
// for scoring/reporting after the start of the session.
type TemplateSnapshot struct {
	TemplateID string
	Name       string
}
