package compliance

import (
	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/law"
)

// =============================================================================
// RULE - One compliance check
// =============================================================================

// RuleMeta describes a rule: its stable name (used for registration and in
// reports), the violation kind and severity it emits, and an optional legal
// citation carried onto every violation it creates.
type RuleMeta struct {
	Name           string
	Description    string
	Kind           Kind
	Severity       Severity
	LegalReference string
}

// Violation builds a violation carrying this rule's identity. Rules create
// all their violations through this so kind, severity, rule name, locale and
// citation stay consistent.
func (m RuleMeta) Violation(expected, actual, owed decimal.Decimal, description string) Violation {
	return Violation{
		Kind:           m.Kind,
		Severity:       m.Severity,
		Rule:           m.Name,
		Expected:       expected,
		Actual:         actual,
		AmountOwed:     owed,
		Description:    description,
		Locale:         "en",
		LegalReference: m.LegalReference,
	}
}

// Rule is one compliance check: a pure function of (record, minimum) that
// emits zero or more violations. Rules read their inputs and nothing else;
// they must not retain or mutate the record.
//
// Applicable lets a rule opt out when the record carries nothing to check
// (e.g. the employer-pension rule when no employer contribution is shown).
// An Evaluate error that unwraps to ErrInsufficientData becomes a non-fatal
// evaluation note; any other error is treated the same way, because one
// rule's failure must never suppress the others.
type Rule interface {
	Meta() RuleMeta
	Applicable(record WageRecord) bool
	Evaluate(record WageRecord, minimum law.Minimum) ([]Violation, error)
}

// =============================================================================
// REGISTRY - Ordered collection of active rules
// =============================================================================

// Registry holds rules in registration order; that order is the evaluation
// order, which makes violation sequences deterministic across runs.
// A Registry is configured at startup and not synchronized: do not mutate it
// concurrently with evaluation.
type Registry struct {
	rules []Rule
}

// NewRegistry builds a registry with the given rules, in order.
func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{}
	for _, rule := range rules {
		r.Register(rule)
	}
	return r
}

// Register appends a rule. A rule with a name already present replaces the
// existing one in place, keeping its original position.
func (g *Registry) Register(rule Rule) {
	name := rule.Meta().Name
	for i, existing := range g.rules {
		if existing.Meta().Name == name {
			g.rules[i] = rule
			return
		}
	}
	g.rules = append(g.rules, rule)
}

// Unregister removes the rule with the given name, reporting whether it was
// present.
func (g *Registry) Unregister(name string) bool {
	for i, rule := range g.rules {
		if rule.Meta().Name == name {
			g.rules = append(g.rules[:i], g.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes all rules.
func (g *Registry) Clear() { g.rules = nil }

// Len returns the number of registered rules.
func (g *Registry) Len() int { return len(g.rules) }

// Rules returns a copy of the rules in evaluation order.
func (g *Registry) Rules() []Rule {
	out := make([]Rule, len(g.rules))
	copy(out, g.rules)
	return out
}

// ApplyAll runs every applicable rule in registration order and concatenates
// the violations. It never short-circuits: a rule that cannot evaluate is
// recorded as a note and the remaining rules still run.
func (g *Registry) ApplyAll(record WageRecord, minimum law.Minimum) ([]Violation, []EvaluationNote) {
	var violations []Violation
	var notes []EvaluationNote
	for _, rule := range g.rules {
		if !rule.Applicable(record) {
			continue
		}
		found, err := rule.Evaluate(record, minimum)
		if err != nil {
			notes = append(notes, EvaluationNote{
				Rule:   rule.Meta().Name,
				Reason: err.Error(),
			})
			continue
		}
		violations = append(violations, found...)
	}
	return violations, notes
}
