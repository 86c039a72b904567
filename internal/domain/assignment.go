// Package domain implements the Session Aggregate: Assignment is the
// aggregate root, Session its child, Response the grandchild — children are
// held by value so every mutation routes through a root method rather than
// being handed out for external mutation. Grounded on the original's
// AssignedAssessment / AssessmentSession / AssessmentResponse dataclasses
// (app/domain/entities.py).
package domain

import (
	"strings"
	"time"

	"github.com/langtest/catengine/common/id"
	"github.com/langtest/catengine/internal/domainerr"
	"github.com/langtest/catengine/internal/model"
)

// Assignment is the aggregate root. Session is nil until StartSession is
// first called; once set, it is replaced in place by every subsequent root
// method rather than handed out for external mutation.
type Assignment struct {
	model.Assignment
	Session *model.Session
}

// New wraps a freshly loaded persisted Assignment (and, if one exists, its
// most recent Session) into the aggregate.
func New(a model.Assignment, session *model.Session) *Assignment {
	return &Assignment{Assignment: a, Session: session}
}

// CanStart reports whether this assignment is eligible to begin a session:
// pending or already in progress (resume path), and not past its due date.
func (a *Assignment) CanStart(now time.Time) bool {
	if a.IsExpired(now) {
		return false
	}
	switch a.Status {
	case model.AssignmentStatusPending, model.AssignmentStatusInProgress:
		return true
	default:
		return false
	}
}

// IsExpired reports whether the assignment's due date has passed.
func (a *Assignment) IsExpired(now time.Time) bool {
	return a.DueAt != nil && now.After(*a.DueAt)
}

// HasActiveSession reports whether the current session, if any, is still
// IN_PROGRESS.
func (a *Assignment) HasActiveSession() bool {
	return a.Session != nil && a.Session.Status == model.SessionStatusInProgress
}

// PendingResponse returns the session's pending (unsubmitted) response, if
// any. A session only ever has one response awaiting an answer at a time,
// so there is never more than one candidate.
func (a *Assignment) PendingResponse() (model.Response, bool) {
	if a.Session == nil {
		return model.Response{}, false
	}
	for _, r := range a.Session.Responses {
		if r.IsPending() {
			return r, true
		}
	}
	return model.Response{}, false
}

// SubmittedResponses returns every response in the session that has been
// scored, in presentation order.
func (a *Assignment) SubmittedResponses() []model.Response {
	if a.Session == nil {
		return nil
	}
	out := make([]model.Response, 0, len(a.Session.Responses))
	for _, r := range a.Session.Responses {
		if !r.IsPending() {
			out = append(out, r)
		}
	}
	return out
}

// AnsweredItemIDs returns the set of item IDs already presented in this
// session, used by the selector to exclude repeats.
func (a *Assignment) AnsweredItemIDs() map[string]bool {
	out := map[string]bool{}
	if a.Session == nil {
		return out
	}
	for _, r := range a.Session.Responses {
		out[r.ItemID] = true
	}
	return out
}

// CurrentAbility returns the session's running theta estimate, or 0 if no
// session exists yet.
func (a *Assignment) CurrentAbility() float64 {
	if a.Session == nil {
		return 0
	}
	return a.Session.CurrentAbility
}

// StandardError returns the session's running SE, or nil if not yet
// estimated.
func (a *Assignment) StandardError() *float64 {
	if a.Session == nil {
		return nil
	}
	return a.Session.StandardError
}

// QuestionsAnswered returns the count of scored responses in the session.
func (a *Assignment) QuestionsAnswered() int {
	if a.Session == nil {
		return 0
	}
	return a.Session.QuestionsAnswered
}

// StartSession begins a new adaptive session and moves the assignment to
// IN_PROGRESS.
//
// Fails with InvalidState if the assignment cannot start (see CanStart) or
// already has an active session; it never returns the existing session
// (callers that want the resume behavior should check HasActiveSession
// first and skip calling StartSession). A cancelled session does not block
// a new start.
func (a *Assignment) StartSession(now time.Time, expiresAt time.Time, startingAbility float64, rubric model.Rubric, tmpl model.TemplateSnapshot) (*model.Session, error) {
	if !a.CanStart(now) {
		return nil, domainerr.New(domainerr.InvalidState, "assignment cannot start a session in its current state")
	}
	if a.HasActiveSession() {
		return nil, domainerr.New(domainerr.InvalidState, "assignment already has an active session")
	}

	session := &model.Session{
		ID:               id.New(),
		AssignmentID:     a.ID,
		Status:           model.SessionStatusInProgress,
		CurrentAbility:   startingAbility,
		QuestionsAnswered: 0,
		StartedAt:        now,
		ExpiresAt:        expiresAt,
		RubricSnapshot:   rubric,
		TemplateSnapshot: tmpl,
	}
	a.Session = session
	a.Status = model.AssignmentStatusInProgress
	return session, nil
}

// PresentQuestion appends a newly presented item as a pending response on
// the current session. Fails with InvalidState if there is no in-progress
// session, or with InvalidInput if one is already pending (the previous
// response must be submitted before the next question is presented).
func (a *Assignment) PresentQuestion(now time.Time, responseID, itemID string) (model.Response, error) {
	if a.Session == nil || a.Session.Status != model.SessionStatusInProgress {
		return model.Response{}, domainerr.New(domainerr.InvalidState, "no in-progress session to present a question on")
	}
	if _, ok := a.PendingResponse(); ok {
		return model.Response{}, domainerr.New(domainerr.InvalidInput, "a response is already pending")
	}

	r := model.Response{
		ID:          responseID,
		SessionID:   a.Session.ID,
		ItemID:      itemID,
		PresentedAt: now,
	}
	a.Session.Responses = append(a.Session.Responses, r)
	return r, nil
}

// CanAcceptAnswer reports whether the session can currently accept a
// SubmitResponse call: in progress, not time-expired, with a pending
// response.
func (a *Assignment) CanAcceptAnswer(now time.Time) bool {
	if a.Session == nil || a.Session.Status != model.SessionStatusInProgress {
		return false
	}
	if now.After(a.Session.ExpiresAt) {
		return false
	}
	_, ok := a.PendingResponse()
	return ok
}

// SubmitResponse scores and records the test-taker's answer against the
// pending response, per the original's case-insensitive trimmed-string
// comparison (app/domain/services/cat_service.py::score_response). Fails
// with InvalidState if the session cannot accept an answer right now, or
// InvalidInput if the submitted data carries no selected_option.
func (a *Assignment) SubmitResponse(now time.Time, data model.ResponseData, timeTaken *int, correctAnswer string) (model.Response, error) {
	if !a.CanAcceptAnswer(now) {
		return model.Response{}, domainerr.New(domainerr.InvalidState, "session cannot accept an answer right now").WithType(domainerr.TypeInvalidSessionState)
	}
	selected, ok := data.SelectedOption()
	if !ok || strings.TrimSpace(selected) == "" {
		return model.Response{}, domainerr.New(domainerr.InvalidInput, "response is missing a selected_option")
	}
	if strings.TrimSpace(correctAnswer) == "" {
		return model.Response{}, domainerr.New(domainerr.InvalidInput, "item has no correct answer configured")
	}

	isCorrect := strings.EqualFold(strings.TrimSpace(selected), strings.TrimSpace(correctAnswer))
	score := 0.0
	if isCorrect {
		score = 1.0
	}

	idx := -1
	for i, r := range a.Session.Responses {
		if r.IsPending() {
			idx = i
			break
		}
	}
	if idx == -1 {
		return model.Response{}, domainerr.New(domainerr.InvalidState, "no pending response to submit against")
	}

	submittedAt := now
	a.Session.Responses[idx].Data = data
	a.Session.Responses[idx].IsCorrect = &isCorrect
	a.Session.Responses[idx].RawScore = &score
	a.Session.Responses[idx].SubmittedAt = &submittedAt
	a.Session.Responses[idx].TimeTaken = timeTaken
	a.Session.QuestionsAnswered++

	return a.Session.Responses[idx], nil
}

// UpdateAbilityEstimate records a freshly computed theta/SE on the session.
func (a *Assignment) UpdateAbilityEstimate(theta, se float64) error {
	if a.Session == nil {
		return domainerr.New(domainerr.InvalidState, "no session to update")
	}
	a.Session.CurrentAbility = theta
	a.Session.StandardError = &se
	return nil
}

// CompleteAssessment transitions the session (and the assignment) to
// COMPLETED.
func (a *Assignment) CompleteAssessment(now time.Time) error {
	if a.Session == nil || a.Session.Status != model.SessionStatusInProgress {
		return domainerr.New(domainerr.InvalidState, "no in-progress session to complete")
	}
	a.Session.Status = model.SessionStatusCompleted
	a.Session.CompletedAt = &now
	a.Status = model.AssignmentStatusCompleted
	return nil
}

// ExpireSession transitions an overdue session to EXPIRED without touching
// scoring state.
func (a *Assignment) ExpireSession(now time.Time) error {
	if a.Session == nil {
		return domainerr.New(domainerr.InvalidState, "no session to expire")
	}
	a.Session.Status = model.SessionStatusExpired
	a.Session.CompletedAt = &now
	a.Status = model.AssignmentStatusExpired
	return nil
}

// CancelSession transitions a session to CANCELLED. Only the session's own
// status changes; the assignment may still be restarted against a fresh
// session afterward.
func (a *Assignment) CancelSession(now time.Time) error {
	if a.Session == nil {
		return domainerr.New(domainerr.InvalidState, "no session to cancel")
	}
	a.Session.Status = model.SessionStatusCancelled
	a.Session.CompletedAt = &now
	return nil
}

// IsTerminated reports whether the session has already reached a terminal
// status (completed, expired, or cancelled), meaning no further answers can
// be submitted against it.
func (a *Assignment) IsTerminated() bool {
	if a.Session == nil {
		return false
	}
	switch a.Session.Status {
	case model.SessionStatusCompleted, model.SessionStatusExpired, model.SessionStatusCancelled:
		return true
	default:
		return false
	}
}

// HasReachedMinQuestions reports whether enough questions have been scored
// to permit early termination on precision grounds.
func (a *Assignment) HasReachedMinQuestions(min int) bool {
	return a.QuestionsAnswered() >= min
}

// HasReachedMaxQuestions reports whether the session must terminate
// regardless of precision.
func (a *Assignment) HasReachedMaxQuestions(max int) bool {
	return a.QuestionsAnswered() >= max
}

// HasSufficientPrecision reports whether the running standard error has
// dropped at or below the configured stopping threshold.
func (a *Assignment) HasSufficientPrecision(stoppingSE float64) bool {
	se := a.StandardError()
	return se != nil && *se <= stoppingSE
}
