package engine

import (
	"cmp"
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparer orders cell values: numerically when both sides are numbers,
// otherwise with a locale-aware collation that compares digit runs by value.
// A Comparer is not safe for concurrent use.
type Comparer struct {
	coll *collate.Collator
}

// NewComparer returns a Comparer using the root locale.
func NewComparer() *Comparer {
	return NewComparerFor(language.Und)
}

// NewComparerFor returns a Comparer collating strings for tag.
func NewComparerFor(tag language.Tag) *Comparer {
	return &Comparer{coll: collate.New(tag, collate.Numeric)}
}

// Compare returns -1, 0 or +1.
func (c *Comparer) Compare(a, b string) int {
	if na, ok := parseNumber(a); ok {
		if nb, ok := parseNumber(b); ok {
			return cmp.Compare(na, nb)
		}
	}
	return c.coll.CompareString(a, b)
}

// Compare orders a and b with a root-locale Comparer.
func Compare(a, b string) int {
	return NewComparer().Compare(a, b)
}

func sortStrings(values []string, c *Comparer) {
	slices.SortStableFunc(values, c.Compare)
}

// parseNumber reads s the way a browser's Number() does: trimmed decimal or
// exponent forms, unsigned 0x/0o/0b integers and a signed "Infinity". Go-only
// spellings such as "inf", hex floats and digit underscores are not numbers.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil || strings.Contains(s, "_") {
				return 0, false
			}
			return float64(n), true
		}
	}
	switch strings.TrimLeft(s, "+-") {
	case "Infinity":
		if s[0] == '-' {
			return math.Inf(-1), true
		}
		if s == "Infinity" || s == "+Infinity" {
			return math.Inf(1), true
		}
		return 0, false
	}
	if strings.ContainsAny(s, "iInN_xXpP") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	// Overflow reads as ±Infinity.
	if err != nil && !(errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0)) {
		return 0, false
	}
	return f, true
}
