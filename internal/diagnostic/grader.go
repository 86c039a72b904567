// Package diagnostic implements the opaque third-party grader the
// original's SpeakingScoringPort/WritingScoringPort describe
// (app/domain/ports.py): speaking and writing assessments are never
// adaptive and never touch the IRT kernel — a SPEAKING/WRITING template's
// session is scored wholesale, once, by an external model. The CAT
// orchestrators in internal/service never import this package.
package diagnostic

import (
	"context"

	"github.com/langtest/catengine/internal/model"
)

// Result is a scored diagnostic session.
type Result struct {
	ProficiencyLevel string
	RawScore         float64
}

// Grader scores a completed SPEAKING or WRITING session against a
// template's rubric. Implementations are free to call out to any external
// model; the CAT core only depends on this interface.
type Grader interface {
	Score(ctx context.Context, kind model.AssessmentKind, transcript string, rubric model.Rubric) (Result, error)
}
