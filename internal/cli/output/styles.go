package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/gast/pkg/gast"
)

// Styles holds the lipgloss styles used by text output.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusSkipped lipgloss.Style

	Declaration lipgloss.Style
	Control     lipgloss.Style
	Call        lipgloss.Style
	Leaf        lipgloss.Style
	Name        lipgloss.Style
	Detail      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:    r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")),

		StatusSuccess: r.NewStyle().Foreground(lipgloss.Color("10")).SetString("✓"),
		StatusFailed:  r.NewStyle().Foreground(lipgloss.Color("9")).SetString("✗"),
		StatusSkipped: r.NewStyle().Foreground(lipgloss.Color("8")).SetString("-"),

		Declaration: r.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
		Control:     r.NewStyle().Foreground(lipgloss.Color("11")),
		Call:        r.NewStyle().Foreground(lipgloss.Color("14")),
		Leaf:        r.NewStyle().Foreground(lipgloss.Color("10")),
		Name:        r.NewStyle().Bold(true),
		Detail:      r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// KindStyle returns the style for a node kind.
func (s *Styles) KindStyle(k gast.Kind) lipgloss.Style {
	switch k {
	case gast.KindFile, gast.KindClass, gast.KindFunction, gast.KindMethod, gast.KindConstructor, gast.KindAttribute:
		return s.Declaration
	case gast.KindIfStatement, gast.KindElseStatement, gast.KindConditionalStatement,
		gast.KindTryCatchBlock, gast.KindCatchBlock, gast.KindThrowStatement, gast.KindReturnStatement:
		return s.Control
	case gast.KindFunctionCall, gast.KindMethodCall, gast.KindNewExpression:
		return s.Call
	case gast.KindParameter, gast.KindVariable, gast.KindConstant:
		return s.Leaf
	default:
		return s.Muted
	}
}
