// Package dto holds the wire shapes for the placement HTTP API, grounded on
// the original's app/presentation/v1/schemas/assessment.py and the teacher's
// internal/http/dto/user.go request/response + To*Response conversion
// pattern.
package dto

import (
	"github.com/langtest/catengine/internal/model"
	"github.com/langtest/catengine/internal/service"
)

// SubmitAnswerRequest is the body of POST /placement/{session_id}/answer.
type SubmitAnswerRequest struct {
	ResponseData map[string]any `json:"response_data" binding:"required"`
	TimeTaken    *int           `json:"time_taken,omitempty" binding:"omitempty,min=0"`
}

// ItemResponse is the client-facing view of a presented item — never
// carries a correct answer (model.Item.Public already stripped it).
type ItemResponse struct {
	ID                     string   `json:"id"`
	Item                   string   `json:"item"`
	Options                []string `json:"options"`
	Instruction            string   `json:"instruction,omitempty"`
	Kind                   string   `json:"kind"`
	SkillAreas             []string `json:"skill_areas,omitempty"`
	TargetProficiencyLevel string   `json:"target_proficiency_level,omitempty"`
}

// ProgressResponse mirrors service.Progress on the wire.
type ProgressResponse struct {
	QuestionsAnswered int      `json:"questions_answered"`
	MinQuestions      int      `json:"min_questions"`
	MaxQuestions      int      `json:"max_questions"`
	CurrentAbility    float64  `json:"current_ability"`
	StandardError     *float64 `json:"standard_error,omitempty"`
	Complete          bool     `json:"complete"`
}

// StartResponse is the body of POST /placement/{assigned_id}/start.
type StartResponse struct {
	SessionID     string            `json:"session_id"`
	FirstQuestion *ItemResponse     `json:"first_question,omitempty"`
	Progress      ProgressResponse  `json:"progress"`
}

// SubmitAnswerResponse is the body of POST /placement/{session_id}/answer.
type SubmitAnswerResponse struct {
	NextQuestion       *ItemResponse    `json:"next_question,omitempty"`
	Progress           ProgressResponse `json:"progress"`
	AssessmentComplete bool             `json:"assessment_complete"`
}

func toItemResponse(item *model.PublicItem) *ItemResponse {
	if item == nil {
		return nil
	}
	return &ItemResponse{
		ID:                     item.ID,
		Item:                   item.Content.Stem,
		Options:                item.Content.Options,
		Instruction:            item.Content.Instruction,
		Kind:                   string(item.Kind),
		SkillAreas:             item.SkillAreas,
		TargetProficiencyLevel: item.TargetProficiencyLevel,
	}
}

func toProgressResponse(p service.Progress) ProgressResponse {
	return ProgressResponse{
		QuestionsAnswered: p.QuestionsAnswered,
		MinQuestions:      p.MinQuestions,
		MaxQuestions:      p.MaxQuestions,
		CurrentAbility:    p.CurrentAbility,
		StandardError:     p.StandardError,
		Complete:          p.Complete,
	}
}

// ToStartResponse converts a use-case result into its wire shape.
func ToStartResponse(r service.StartResult) StartResponse {
	return StartResponse{
		SessionID:     r.SessionID,
		FirstQuestion: toItemResponse(r.FirstQuestion),
		Progress:      toProgressResponse(r.Progress),
	}
}

// ToSubmitAnswerResponse converts a use-case result into its wire shape.
func ToSubmitAnswerResponse(r service.SubmitResult) SubmitAnswerResponse {
	return SubmitAnswerResponse{
		NextQuestion:       toItemResponse(r.NextQuestion),
		Progress:           toProgressResponse(r.Progress),
		AssessmentComplete: r.AssessmentComplete,
	}
}
