package grammar

import "strings"

// StripParens removes one pair of enclosing parentheses.
func StripParens(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// Compact removes all whitespace, for dotted names written across lines.
func Compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// BaseType drops type arguments from a type name: "Map<K, V>" -> "Map".
func BaseType(s string) string {
	if i := strings.IndexByte(s, '<'); i >= 0 {
		s = s[:i]
	}
	return Compact(s)
}
