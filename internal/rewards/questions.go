package rewards

import (
	"fmt"

	"github.com/openrewards/cardperk/internal/domain"
)

// DeriveDefaults returns the answers implied by the transaction itself,
// currently MCC-driven auto-selections. The result is empty (non-nil) when
// nothing is derived.
func DeriveDefaults(p *domain.Product, mcc string) domain.Answers {
	derived := domain.Answers{}
	if mcc == "" {
		return derived
	}
	for _, sel := range p.AutoSelects {
		for _, m := range sel.MCCs {
			if m == mcc {
				derived[sel.Name] = sel.Value
				break
			}
		}
	}
	return derived
}

// MergeDerived overlays derived answers on user answers. Derived values win:
// a recognized MCC overrides whatever the user picked, matching the
// auto-select behavior of the card programs.
func MergeDerived(user, derived domain.Answers) domain.Answers {
	merged := user.Clone()
	for k, v := range derived {
		merged[k] = v
	}
	return merged
}

// QuestionsFor resolves the product's question specs against the current
// answers: hidden specs are dropped, plan-derived option lists expanded, and
// each question's value filled from the answers or its default. The call is
// pure and repeat-safe: feeding the returned values back as answers yields
// the same question list.
func QuestionsFor(p *domain.Product, mcc string, ans domain.Answers) []domain.Question {
	merged := MergeDerived(ans, DeriveDefaults(p, mcc))

	questions := make([]domain.Question, 0, len(p.Questions))
	for i := range p.Questions {
		spec := &p.Questions[i]
		if !specVisible(spec, merged) {
			continue
		}

		opts := spec.Options
		if spec.OptionsFromPlan {
			opts = planOptions(p, merged)
			if len(opts) == 0 {
				continue
			}
		}

		value := spec.Default
		if merged.Has(spec.Name) {
			value = answerString(merged[spec.Name])
		}

		questions = append(questions, domain.Question{
			Type:       spec.Type,
			Label:      spec.Label,
			Name:       spec.Name,
			Options:    opts,
			Value:      value,
			HelperText: spec.HelperText,
		})
	}
	return questions
}

// ExpandAnswers applies cascade rules: for every cascade question that was
// actually answered, the flag mapped to the selected value is set true and
// the other mapped flags false. Unanswered cascade questions leave their
// flags untouched so directly asserted flags still pass through.
func ExpandAnswers(p *domain.Product, ans domain.Answers) domain.Answers {
	expanded := ans.Clone()
	for i := range p.Questions {
		spec := &p.Questions[i]
		if len(spec.Cascades) == 0 || !ans.Has(spec.Name) {
			continue
		}
		selected := answerString(ans[spec.Name])
		for value, flag := range spec.Cascades {
			expanded[flag] = value == selected
		}
	}
	return expanded
}

func specVisible(spec *domain.QuestionSpec, ans domain.Answers) bool {
	if spec.DependsOn == "" {
		return true
	}
	current := ""
	if ans.Has(spec.DependsOn) {
		current = answerString(ans[spec.DependsOn])
	}
	if spec.VisibleWhen == "" {
		return current != ""
	}
	return current == spec.VisibleWhen
}

func planOptions(p *domain.Product, ans domain.Answers) []domain.Option {
	plan := ans.String(domain.AnswerSelectedPlan, "")
	rates, ok := p.PlanRates[plan]
	if !ok {
		return nil
	}
	opts := make([]domain.Option, 0, len(rates))
	for _, pr := range rates {
		opts = append(opts, domain.Option{Label: pr.Category, Value: pr.Category})
	}
	return opts
}

func answerString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
