package model

// ItemKind identifies the presentation format of an assessment item.
// The 2PL kernel only ever sees multiple-choice items today; the tag exists
// so the catalog can grow new kinds without touching the psychometric core.
type ItemKind string

const (
	ItemKindMultipleChoice ItemKind = "multiple_choice"
)

// ItemParameters are the 2PL IRT parameters for an item.
// Guessing is reserved for a future 3PL extension and is never read by the
// kernel.
type ItemParameters struct {
	Discrimination float64 `json:"discrimination"`
	Difficulty     float64 `json:"difficulty"`
	Guessing       float64 `json:"guessing"`
}

// MultipleChoiceContent is the only content shape implemented today.
// CorrectAnswer must never be serialized into a client-facing response; see
// Item.Public.
type MultipleChoiceContent struct {
	Stem        string   `json:"item"`
	Options     []string `json:"options"`
	Instruction string   `json:"instruction,omitempty"`
	// CorrectAnswer is the case-insensitive, whitespace-trimmed expected
	// selected_option. Never copied into a PublicItem view.
	CorrectAnswer string `json:"correct_answer"`
}

// Item is an immutable catalog value object.
type Item struct {
	ID                      string
	TemplateID              string
	Content                 MultipleChoiceContent
	Kind                     ItemKind
	SkillAreas              []string
	TargetProficiencyLevel  string
	Parameters              ItemParameters
	Active                  bool
}

// HasSkillOverlap reports whether the item shares at least one skill area
// with the given set. An empty want set is treated by callers (not here) as
// "no filter" — see internal/selector.
func (i Item) HasSkillOverlap(want []string) bool {
	for _, w := range want {
		for _, s := range i.SkillAreas {
			if s == w {
				return true
			}
		}
	}
	return false
}

// PublicItem is the client-facing view of an Item: it never carries the
// correct answer.
type PublicItem struct {
	ID                     string
	Content                PublicContent
	Kind                   ItemKind
	SkillAreas             []string
	TargetProficiencyLevel string
}

// PublicContent strips CorrectAnswer from MultipleChoiceContent.
type PublicContent struct {
	Stem        string
	Options     []string
	Instruction string
}

// Public renders the leak-free client view of an item.
func (i Item) Public() PublicItem {
	return PublicItem{
		ID:   i.ID,
		Kind: i.Kind,
		Content: PublicContent{
			Stem:        i.Content.Stem,
			Options:     i.Content.Options,
			Instruction: i.Content.Instruction,
		},
		SkillAreas:             i.SkillAreas,
		TargetProficiencyLevel: i.TargetProficiencyLevel,
	}
}
