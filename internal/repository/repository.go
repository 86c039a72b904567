// Package repository implements the Aggregate Repository: the only
// component allowed to load or persist an Assignment together with its
// current Session and that Session's Responses.
// Grounded on the teacher's repository/organization.go conversion style
// and service/txrunner.go's StoreProvider pattern, generalized down to the
// single aggregate this engine owns.
package repository

import (
	"context"
	"errors"

	"github.com/langtest/catengine/internal/domain"
)

// ErrNotFound is returned when the requested assignment or session does
// not exist.
var ErrNotFound = errors.New("repository: not found")

// Repository is the port the use-case orchestrators depend on.
//
// The *ForUpdate variants take a row lock (SELECT ... FOR UPDATE) on the
// assignment and its current session so two concurrent SubmitAnswer calls
// against the same session serialize instead of racing to append a second
// response (this choice, rather than optimistic versioning, is recorded in
// DESIGN.md).
type Repository interface {
	GetByID(ctx context.Context, assignmentID string) (*domain.Assignment, error)
	GetByIDForUpdate(ctx context.Context, assignmentID string) (*domain.Assignment, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Assignment, error)
	GetBySessionIDForUpdate(ctx context.Context, sessionID string) (*domain.Assignment, error)

	// Save persists the full aggregate graph: the assignment row, its
	// current session (if any), and every response on that session.
	Save(ctx context.Context, a *domain.Assignment) error
}
