package engine

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/oakwood-commons/xmltab/pkg/record"
)

// Match selects how a StatusRule compares a row's code set.
type Match string

const (
	// MatchAny matches when the code set contains at least one rule code.
	MatchAny Match = "any"
	// MatchExactly matches when the code set equals the rule codes.
	MatchExactly Match = "exactly"
)

// Action is the outcome of a matching StatusRule.
type Action string

const (
	Keep Action = "keep"
	Drop Action = "drop"
)

// StatusRule maps a code-set predicate to keep or drop.
type StatusRule struct {
	Match  Match    `yaml:"match" json:"match" toml:"match"`
	Codes  []string `yaml:"codes" json:"codes" toml:"codes"`
	Action Action   `yaml:"action" json:"action" toml:"action"`
}

// StatusPolicy decides which rows are suppressed when resolved rows are
// hidden. Rules are evaluated in order and the first match wins; a row with
// no codes is always kept.
type StatusPolicy struct {
	Rules   []StatusRule `yaml:"rules" json:"rules" toml:"rules"`
	Default Action       `yaml:"default" json:"default" toml:"default"`
}

// DefaultStatusPolicy keeps any row with an error or warning code and drops a
// row whose only code is the resolved code "S".
func DefaultStatusPolicy() StatusPolicy {
	return StatusPolicy{
		Rules: []StatusRule{
			{Match: MatchAny, Codes: []string{"E", "W"}, Action: Keep},
			{Match: MatchExactly, Codes: []string{"S"}, Action: Drop},
		},
		Default: Keep,
	}
}

// Validate reports unknown match kinds or actions.
func (p StatusPolicy) Validate() error {
	for i, r := range p.Rules {
		switch r.Match {
		case MatchAny, MatchExactly:
		default:
			return fmt.Errorf("status rule %d: unknown match %q", i, r.Match)
		}
		switch r.Action {
		case Keep, Drop:
		default:
			return fmt.Errorf("status rule %d: unknown action %q", i, r.Action)
		}
		if len(r.Codes) == 0 {
			return fmt.Errorf("status rule %d: no codes", i)
		}
	}
	switch p.Default {
	case "", Keep, Drop:
	default:
		return fmt.Errorf("status policy: unknown default action %q", p.Default)
	}
	return nil
}

// Keep reports whether a row with codes survives suppression.
func (p StatusPolicy) Keep(codes []string) bool {
	if len(codes) == 0 {
		return true
	}
	for _, r := range p.Rules {
		if r.matches(codes) {
			return r.Action != Drop
		}
	}
	return p.Default != Drop
}

func (r StatusRule) matches(codes []string) bool {
	switch r.Match {
	case MatchAny:
		return lo.Some(codes, r.Codes)
	case MatchExactly:
		want := lo.Uniq(r.Codes)
		return len(codes) == len(want) && lo.Every(want, codes)
	}
	return false
}

// CodeSet returns the distinct, trimmed, non-empty codes of the first
// non-empty key among keys, split on ";".
func CodeSet(row *record.Row, keys []string) []string {
	raw := ""
	for _, k := range keys {
		if v := row.Get(k); v != "" {
			raw = v
			break
		}
	}
	if raw == "" {
		return nil
	}
	parts := lo.Map(strings.Split(raw, ";"), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Uniq(lo.Compact(parts))
}
