package validity

import (
	"fmt"
	"strings"
)

// ValidityRule is the regulatory validity window for one jurisdiction/utility
// combination. Label is diagnostic only and never drives control flow.
type ValidityRule struct {
	PeriodMonths int    `json:"period_months"`
	Label        string `json:"label"`
}

type stateRules struct {
	utilities map[string]ValidityRule
	fallback  ValidityRule
}

// RuleTable maps state → utility → rule, with a default rule per state and a
// table-wide fallback for unrecognized states. Tables are built once at package
// init and never mutated, so concurrent readers need no synchronization.
type RuleTable struct {
	states   map[string]stateRules
	fallback ValidityRule
}

// Resolve returns the applicable rule for a state/utility pair. A
// utility-specific entry always wins over the state default; matching is exact
// string equality after uppercasing, never partial. Resolve cannot fail: the
// table-wide fallback is always reachable.
func (t *RuleTable) Resolve(state, utility string) ValidityRule {
	sr, ok := t.states[strings.ToUpper(strings.TrimSpace(state))]
	if !ok {
		return t.fallback
	}
	if u := strings.ToUpper(strings.TrimSpace(utility)); u != "" {
		if rule, ok := sr.utilities[u]; ok {
			return rule
		}
	}
	return sr.fallback
}

// Region selects which rule table governs a document. It is a closed set:
// callers route every document to exactly one of the two jurisdiction groups.
type Region int

const (
	GreatLakes Region = iota
	NewEngland
)

func (r Region) String() string {
	switch r {
	case NewEngland:
		return "New England"
	default:
		return "Great Lakes"
	}
}

// Rules returns the immutable rule table for the region.
func (r Region) Rules() *RuleTable {
	if r == NewEngland {
		return &newEnglandRules
	}
	return &greatLakesRules
}

// ParseRegion maps the region spellings seen in upstream case metadata onto
// the two known regions. Matching ignores case, whitespace, and the
// "Region" suffix; "GLR" and "NE" are accepted shorthands.
func ParseRegion(s string) (Region, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	key = strings.TrimSuffix(key, "REGION")
	switch key {
	case "GREATLAKES", "GLR":
		return GreatLakes, nil
	case "NEWENGLAND", "NE":
		return NewEngland, nil
	}
	return GreatLakes, fmt.Errorf("unknown region %q", s)
}

// ResolveRule resolves the validity rule for a (region, state, utility)
// triple. See RuleTable.Resolve for the tie-break semantics.
func ResolveRule(region Region, state, utility string) ValidityRule {
	return region.Rules().Resolve(state, utility)
}

// Great Lakes documents carry state-level rules only; no utility in the group
// shortens or extends its state's window.
var greatLakesRules = RuleTable{
	states: map[string]stateRules{
		"OH": {fallback: ValidityRule{PeriodMonths: 12, Label: "Ohio (1 year)"}},
		"MI": {fallback: ValidityRule{PeriodMonths: 12, Label: "Michigan (1 year)"}},
		"IL": {fallback: ValidityRule{PeriodMonths: 6, Label: "Illinois (6 months)"}},
	},
	fallback: ValidityRule{PeriodMonths: 12, Label: "Great Lakes default (1 year)"},
}

var newEnglandRules = RuleTable{
	states: map[string]stateRules{
		"ME": {
			utilities: map[string]ValidityRule{
				"CMP": {PeriodMonths: 12, Label: "Maine CMP (1 year)"},
			},
			fallback: ValidityRule{PeriodMonths: 12, Label: "Maine (1 year)"},
		},
		"MA": {
			utilities: map[string]ValidityRule{
				"NECO":  {PeriodMonths: 24, Label: "Massachusetts NECO (2 years)"},
				"MECO":  {PeriodMonths: 12, Label: "Massachusetts MECO (1 year)"},
				"WMECO": {PeriodMonths: 12, Label: "Massachusetts WMECO (1 year)"},
				"BECO":  {PeriodMonths: 12, Label: "Massachusetts BECO (1 year)"},
			},
			fallback: ValidityRule{PeriodMonths: 12, Label: "Massachusetts (1 year)"},
		},
		"NH": {
			utilities: map[string]ValidityRule{
				"GSECO": {PeriodMonths: 12, Label: "New Hampshire GSECO (1 year)"},
				"PSNH":  {PeriodMonths: 12, Label: "New Hampshire PSNH (1 year)"},
				"NHEC":  {PeriodMonths: 12, Label: "New Hampshire NHEC (1 year)"},
			},
			fallback: ValidityRule{PeriodMonths: 12, Label: "New Hampshire (1 year)"},
		},
		"RI": {
			utilities: map[string]ValidityRule{
				"NECO": {PeriodMonths: 24, Label: "Rhode Island NECO (2 years)"},
			},
			fallback: ValidityRule{PeriodMonths: 24, Label: "Rhode Island (2 years)"},
		},
		"CT": {fallback: ValidityRule{PeriodMonths: 12, Label: "Connecticut (1 year)"}},
	},
	fallback: ValidityRule{PeriodMonths: 12, Label: "New England default (1 year)"},
}
