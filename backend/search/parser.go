package search

import (
	"strings"
	"unicode"
)

// Operator defines the type of comparison for a filter.
type Operator string

const (
	OpEqual          Operator = "="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpRange          Operator = ".." // date:2026-04..2026-05
)

// Longest prefixes first.
var prefixOperators = []Operator{OpGreaterOrEqual, OpLessOrEqual, OpGreater, OpLess}

// Filter is one key:value criterion of a query.
type Filter struct {
	Key      string   // home, visiting, team, date, notes
	Value    string   // Cubs, 2026-04-01
	MaxValue string   // Used only for OpRange
	Operator Operator
}

// Query represents the parsed search query.
type Query struct {
	Filters  []Filter
	FreeText []string
}

// Empty reports whether the query has no criteria at all.
func (q Query) Empty() bool {
	return len(q.Filters) == 0 && len(q.FreeText) == 0
}

// Parse splits a search string into filters and free text. Quoted values
// may contain spaces. Tokens that do not form a clean key:value pair are
// kept as free text.
func Parse(input string) Query {
	q := Query{
		Filters:  make([]Filter, 0),
		FreeText: make([]string, 0),
	}
	for _, token := range tokenize(input) {
		f, ok := parseFilter(token)
		if !ok {
			q.FreeText = append(q.FreeText, removeQuotes(token))
			continue
		}
		q.Filters = append(q.Filters, f)
	}
	return q
}

func parseFilter(token string) (Filter, bool) {
	key, val, found := strings.Cut(token, ":")
	if !found {
		return Filter{}, false
	}
	key = strings.ToLower(strings.TrimSpace(key))
	val = strings.TrimSpace(val)
	if key == "" || val == "" || strings.HasPrefix(key, "\"") || strings.HasPrefix(key, "'") {
		return Filter{}, false
	}
	quoted := strings.HasPrefix(val, "\"") || strings.HasPrefix(val, "'")
	if strings.Contains(val, ":") && !quoted {
		return Filter{}, false
	}
	if !quoted {
		if lo, hi, ok := strings.Cut(val, ".."); ok {
			return Filter{Key: key, Value: lo, MaxValue: hi, Operator: OpRange}, true
		}
	}
	for _, op := range prefixOperators {
		if rest, ok := strings.CutPrefix(val, string(op)); ok {
			return Filter{Key: key, Value: removeQuotes(rest), Operator: op}, true
		}
	}
	return Filter{Key: key, Value: removeQuotes(val), Operator: OpEqual}, true
}

// Match reports whether value satisfies the filter. Equality is a
// case-insensitive substring match; the ordering operators compare
// strings, which orders ISO dates correctly. An empty range bound is open.
func (f Filter) Match(value string) bool {
	switch f.Operator {
	case OpEqual:
		return ContainsFold(value, f.Value)
	case OpGreater:
		return value != "" && value > f.Value
	case OpGreaterOrEqual:
		return value != "" && value >= f.Value
	case OpLess:
		return value != "" && value < f.Value
	case OpLessOrEqual:
		return value != "" && value <= f.Value
	case OpRange:
		if value == "" {
			return false
		}
		if f.Value != "" && value < f.Value {
			return false
		}
		// A month bound such as 2026-05 includes every day of that month.
		if f.MaxValue != "" && value > f.MaxValue && !strings.HasPrefix(value, f.MaxValue) {
			return false
		}
		return true
	}
	return false
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// tokenize splits the string by spaces, respecting quotes.
func tokenize(input string) []string {
	var tokens []string
	var current strings.Builder
	var quote rune

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range input {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			current.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		case r == '"' || r == '\'':
			quote = r
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func removeQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
