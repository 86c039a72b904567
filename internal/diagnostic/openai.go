package diagnostic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/langtest/catengine/internal/model"
)

// gradeResult is the structured shape the model is constrained to return,
// grounded on the teacher's common/llm/client.go JSON-schema response
// pattern.
type gradeResult struct {
	ProficiencyLevel string  `json:"proficiency_level" jsonschema:"description=One of the rubric's proficiency_levels"`
	RawScore         float64 `json:"raw_score" jsonschema:"description=A 0.0-1.0 holistic score"`
}

// Config configures the OpenAI-backed grader.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

type openaiGrader struct {
	client openai.Client
	model  string
}

// NewOpenAIGrader builds a Grader backed by the OpenAI chat completions API.
func NewOpenAIGrader(cfg Config) (Grader, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("diagnostic: API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &openaiGrader{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (g *openaiGrader) Score(ctx context.Context, kind model.AssessmentKind, transcript string, rubric model.Rubric) (Result, error) {
	schema := generateSchema[gradeResult]()

	systemPrompt := fmt.Sprintf(
		"You are an expert CEFR examiner grading a %s assessment response. "+
			"Score holistically against these proficiency levels: %v. "+
			"Return only the requested JSON.", kind, rubric.ProficiencyLevels)

	params := openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(transcript),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "proficiency_grade",
					Schema: schema,
					Strict: openai.Bool(true),
				},
			},
		},
	}

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("diagnostic: grading request: %w", err)
	}
	slog.DebugContext(ctx, "diagnostic grading completed",
		"model", g.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"kind", kind)

	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("diagnostic: no choices in grading response")
	}

	var out gradeResult
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return Result{}, fmt.Errorf("diagnostic: unmarshal grading response: %w", err)
	}

	return Result{ProficiencyLevel: out.ProficiencyLevel, RawScore: out.RawScore}, nil
}

func generateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}
