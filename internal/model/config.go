package model

// StoppingCriterion defines when a session has reached sufficient precision.
type StoppingCriterion struct {
	StandardError float64 `json:"standard_error"`
}

// Config is an immutable catalog value object holding general and adaptive
// parameters for a Template.
type Config struct {
	ID                string
	TemplateID        string
	TimeLimitMinutes  int
	StartingAbility   float64
	MinQuestions      int
	MaxQuestions      int
	StoppingCriterion StoppingCriterion
	SkillAreas        []string
	ProficiencyRange  map[string][2]float64
	Active            bool
}

// Valid reports whether min_questions <= max_questions and
// standard_error > 0.
func (c Config) Valid() bool {
	return c.MinQuestions <= c.MaxQuestions && c.StoppingCriterion.StandardError > 0
}

// EffectiveSkillAreas returns the configured skill areas. An empty result
// means "no skill filter" per the selector's contract — this accessor does
// not itself perform that substitution, it only exposes the raw configured
// set.
func (c Config) EffectiveSkillAreas() []string {
	return c.SkillAreas
}
