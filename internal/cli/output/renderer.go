// Package output renders command results as styled text, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/gast/pkg/format"
	"github.com/leapstack-labs/gast/pkg/gast"
)

// Mode selects how results are rendered.
type Mode string

// Output modes.
const (
	ModeAuto Mode = "auto"
	ModeText Mode = "text"
	ModeJSON Mode = "json"
	ModeYAML Mode = "yaml"
)

// Renderer writes command output. Text is styled only when out is a
// terminal and NO_COLOR is unset.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styled bool
	styles *Styles
	title  cases.Caser
}

// NewRenderer creates a renderer. ModeAuto resolves to text.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == ModeAuto || mode == "" {
		mode = ModeText
	}

	tty := isTerminal(out)
	lr := lipgloss.NewRenderer(out)
	profile := termenv.Ascii
	if tty {
		profile = termenv.NewOutput(out).EnvColorProfile()
	}
	lr.SetColorProfile(profile)

	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		styled: profile != termenv.Ascii,
		styles: newStyles(lr),
		title:  cases.Title(language.English),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Mode returns the resolved output mode.
func (r *Renderer) Mode() Mode { return r.mode }

// Styles returns the text styles.
func (r *Renderer) Styles() *Styles { return r.styles }

// Styled reports whether text output carries colors.
func (r *Renderer) Styled() bool { return r.styled }

// Out returns the output writer.
func (r *Renderer) Out() io.Writer { return r.out }

// Println writes a line to the output.
func (r *Renderer) Println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// Printf writes formatted text to the output.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Header writes a title-cased section header.
func (r *Renderer) Header(level int, title string) {
	style := r.styles.Header2
	if level <= 1 {
		style = r.styles.Header1
	}
	r.Println(style.Render(r.title.String(title)))
}

// Title title-cases s.
func (r *Renderer) Title(s string) string {
	return r.title.String(s)
}

// Success writes a success message.
func (r *Renderer) Success(msg string) {
	r.Println(r.styles.StatusSuccess.String() + " " + r.styles.Success.Render(msg))
}

// Warning writes a warning to the error output.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("! "+msg))
}

// Error writes an error message to the error output.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.StatusFailed.String()+" "+r.styles.Error.Render(msg))
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Encode writes v in the JSON or YAML mode. Text mode is the caller's job.
func (r *Renderer) Encode(v any) error {
	if r.mode == ModeYAML {
		return r.YAML(v)
	}
	return r.JSON(v)
}

// Table renders rows under header.
func (r *Renderer) Table(header []string, rows [][]any, footer ...any) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)
	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}
	if len(footer) > 0 {
		t.AppendFooter(table.Row(footer))
	}
	t.Render()
}

// TreeStyle returns the outline decoration for text trees.
func (r *Renderer) TreeStyle() format.Style {
	if !r.styled {
		return format.Style{}
	}
	return format.Style{
		Kind:   func(k gast.Kind, s string) string { return r.styles.KindStyle(k).Render(s) },
		Name:   func(s string) string { return r.styles.Name.Render(s) },
		Detail: func(s string) string { return r.styles.Detail.Render(s) },
	}
}

// Tree writes root in the renderer's mode.
func (r *Renderer) Tree(root *gast.Node, opts format.Options) error {
	f := format.FormatText
	switch r.mode {
	case ModeJSON:
		f = format.FormatJSON
	case ModeYAML:
		f = format.FormatYAML
	default:
		opts.Style = r.TreeStyle()
	}
	return format.Write(r.out, root, f, opts)
}
