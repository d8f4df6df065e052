// Package token holds source location types shared by the event source,
// the builder and every exporter.
package token

import "fmt"

// Position represents a location in the source code.
type Position struct {
	Line   int `json:"line" yaml:"line"`     // 1-based line number
	Column int `json:"column" yaml:"column"` // 1-based column number
	Offset int `json:"offset" yaml:"offset"` // 0-based byte offset
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Before reports whether p lies strictly before q in the same source.
func (p Position) Before(q Position) bool {
	return p.Offset < q.Offset
}

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span represents a range in source code.
type Span struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

// Contains returns true if the span contains the given offset.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}

// IsValid returns true if both start and end positions are valid.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid()
}

// Extend returns s grown so that it also ends no earlier than other.
// An invalid other leaves s unchanged.
func (s Span) Extend(other Span) Span {
	if !other.End.IsValid() {
		return s
	}
	if !s.End.IsValid() || s.End.Before(other.End) {
		s.End = other.End
	}
	if !s.Start.IsValid() {
		s.Start = other.Start
	}
	return s
}

func (s Span) String() string {
	if !s.Start.IsValid() && !s.End.IsValid() {
		return "-"
	}
	return s.Start.String() + "-" + s.End.String()
}
