package service

import "github.com/langtest/catengine/internal/model"

// Progress is the use-case-level progress snapshot, grounded on the
// original's ProgressDTO (app/application/dto.py). The HTTP layer maps
// this into the wire response shape.
type Progress struct {
	QuestionsAnswered int
	MinQuestions      int
	MaxQuestions      int
	CurrentAbility    float64
	StandardError     *float64
	Complete          bool
}

// StartResult is returned by StartSession.
type StartResult struct {
	SessionID      string
	FirstQuestion  *model.PublicItem
	Progress       Progress
	AssessmentDone bool
}

// SubmitResult is returned by SubmitAnswer.
type SubmitResult struct {
	NextQuestion       *model.PublicItem
	Progress           Progress
	AssessmentComplete bool
}
