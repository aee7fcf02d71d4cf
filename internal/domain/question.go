package domain

// QuestionType is the input control a question renders as.
type QuestionType string

const (
	QuestionSelect QuestionType = "select"
	QuestionRadio  QuestionType = "radio"
)

// Option is one selectable answer value. Values are strings on the wire;
// boolean and numeric answers use their canonical string forms.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Question is a resolved contextual question ready for rendering.
// The order of questions returned for a product is the display order and is
// stable across calls.
type Question struct {
	Type       QuestionType `json:"type"`
	Label      string       `json:"label"`
	Name       string       `json:"name"`
	Options    []Option     `json:"options"`
	Value      string       `json:"value"`
	HelperText string       `json:"helperText,omitempty"`
}

// QuestionSpec is the declarative schema a product carries. The question
// provider resolves specs against the current answers: conditional specs may
// be hidden, plan-dependent option lists are expanded, and the current value
// is filled from the answers bag or the default.
type QuestionSpec struct {
	Type       QuestionType `json:"type"`
	Label      string       `json:"label"`
	Name       string       `json:"name"`
	Options    []Option     `json:"options,omitempty"`
	Default    string       `json:"default,omitempty"`
	HelperText string       `json:"helperText,omitempty"`

	// Visibility condition: shown only when the DependsOn answer equals
	// VisibleWhen. Empty DependsOn means always visible.
	DependsOn   string `json:"dependsOn,omitempty"`
	VisibleWhen string `json:"visibleWhen,omitempty"`

	// OptionsFromPlan derives the option list from the product's plan
	// matrix using the currently selected plan.
	OptionsFromPlan bool `json:"optionsFromPlan,omitempty"`

	// Cascades maps a selected value onto derived boolean answers: picking
	// value v sets each Cascades[v] flag true and every other listed flag
	// false. Mirrors multi-flag radio groups.
	Cascades map[string]string `json:"cascades,omitempty"`
}

// Boolean radio options reused across the catalog.
var YesNoOptions = []Option{
	{Label: "Yes", Value: "true"},
	{Label: "No", Value: "false"},
}

// HelperSpecialCategories is the shared helper text for special-category
// questions.
const HelperSpecialCategories = "Special categories typically include utilities, insurance, government payments, education, and real estate transactions. Check your card's terms for specific details."
